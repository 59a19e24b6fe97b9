package main

import (
	"context"

	"github.com/nerrad567/device-registrar/internal/audit"
	"github.com/nerrad567/device-registrar/internal/infrastructure/config"
	"github.com/nerrad567/device-registrar/internal/infrastructure/influxdb"
	"github.com/nerrad567/device-registrar/internal/infrastructure/mqtt"
	"github.com/nerrad567/device-registrar/internal/registrar"
)

// jsonPublisher is the part of mqtt.Client the event publisher needs.
type jsonPublisher interface {
	PublishJSON(topic string, v any, qos byte, retained bool) error
}

// eventPublisher sends registrar events to MQTT.
type eventPublisher struct {
	client jsonPublisher
	topics mqtt.Topics
	qos    byte
}

func newEventPublisher(client jsonPublisher, cfg config.MQTTConfig) *eventPublisher {
	return &eventPublisher{
		client: client,
		topics: mqtt.NewTopics(cfg.TopicPrefix),
		qos:    byte(cfg.QoS), //nolint:gosec // validated to 0..2 by config
	}
}

// PublishEvent implements registrar.Publisher. Events are never retained.
func (p *eventPublisher) PublishEvent(_ context.Context, evt registrar.Event) error {
	topic := p.topics.Event(evt.Class, evt.Instance, evt.Action.String())
	return p.client.PublishJSON(topic, evt, p.qos, false)
}

// operationWriter is the part of influxdb.Client the recorder needs.
type operationWriter interface {
	WriteOperation(ctx context.Context, op influxdb.Operation) error
}

// operationRecorder writes registrar events to InfluxDB.
type operationRecorder struct {
	client operationWriter
}

func newOperationRecorder(client operationWriter) *operationRecorder {
	return &operationRecorder{client: client}
}

// RecordEvent implements registrar.Recorder.
func (r *operationRecorder) RecordEvent(ctx context.Context, evt registrar.Event) error {
	return r.client.WriteOperation(ctx, influxdb.Operation{
		Action:    evt.Action.String(),
		Class:     evt.Class,
		Instance:  evt.Instance,
		Device:    evt.Device,
		Outcome:   evt.Outcome(),
		Exported:  evt.Exported,
		Error:     evt.Error,
		Timestamp: evt.Timestamp,
	})
}

// auditRecorder writes registrar events to the local audit_logs table.
type auditRecorder struct {
	repo audit.Repository
}

func newAuditRecorder(repo audit.Repository) *auditRecorder {
	return &auditRecorder{repo: repo}
}

// RecordEvent implements registrar.Recorder.
func (r *auditRecorder) RecordEvent(ctx context.Context, evt registrar.Event) error {
	return r.repo.Create(ctx, &audit.Entry{
		ID:        evt.ID,
		Action:    evt.Action.String(),
		Device:    evt.Device,
		Server:    evt.Server,
		Instance:  evt.Instance,
		Outcome:   evt.Outcome(),
		Exported:  evt.Exported,
		Error:     evt.Error,
		CreatedAt: evt.Timestamp,
	})
}
