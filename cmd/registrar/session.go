package main

import (
	"context"
	"errors"
	"fmt"

	_ "github.com/nerrad567/device-registrar/migrations"

	"github.com/nerrad567/device-registrar/internal/audit"
	"github.com/nerrad567/device-registrar/internal/device"
	"github.com/nerrad567/device-registrar/internal/infrastructure/config"
	"github.com/nerrad567/device-registrar/internal/infrastructure/database"
	"github.com/nerrad567/device-registrar/internal/infrastructure/influxdb"
	"github.com/nerrad567/device-registrar/internal/infrastructure/logging"
	"github.com/nerrad567/device-registrar/internal/infrastructure/mqtt"
	"github.com/nerrad567/device-registrar/internal/registrar"
	"github.com/nerrad567/device-registrar/internal/remote"
)

// session owns the connections opened for one invocation.
//
// It is also the registrar's Publisher and Recorder. Side channels are only
// attached once the registry is connected, which happens after the instance
// file has loaded.
type session struct {
	cfg       *config.Config
	log       *logging.Logger
	closers   []func()
	publisher registrar.Publisher
	recorders []registrar.Recorder
}

func newSession(cfg *config.Config, log *logging.Logger) *session {
	return &session{cfg: cfg, log: log}
}

// onClose registers fn to run when the session closes, in reverse order.
func (s *session) onClose(fn func()) {
	s.closers = append(s.closers, fn)
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// connectRegistry opens the configured registry backend. It satisfies registrar.Connector.
func (s *session) connectRegistry(ctx context.Context) (registrar.Client, error) {
	switch s.cfg.Registry.Backend {
	case config.BackendHTTP:
		client, err := remote.New(remote.Config{
			BaseURL:     s.cfg.Registry.URL,
			TokenSecret: s.cfg.Registry.TokenSecret,
			Timeout:     s.cfg.GetRegistryTimeout(),
		})
		if err != nil {
			return nil, err
		}
		s.log.Debug("using http registry", "url", s.cfg.Registry.URL)
		s.connectSideChannels(ctx)
		return client, nil

	case config.BackendDatabase:
		db, err := database.Open(ctx, database.Config{
			Path:        s.cfg.Database.Path,
			WALMode:     s.cfg.Database.WALMode,
			BusyTimeout: s.cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.onClose(func() {
			if closeErr := db.Close(); closeErr != nil {
				s.log.Error("error closing database", "error", closeErr)
			}
		})

		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		s.recorders = append(s.recorders, newAuditRecorder(audit.NewSQLiteRepository(db.DB)))
		s.log.Debug("using database registry", "path", db.Path())
		s.connectSideChannels(ctx)
		return device.NewSQLiteRepository(db.DB), nil

	default:
		return nil, fmt.Errorf("unknown registry backend %q", s.cfg.Registry.Backend)
	}
}

// options routes the registrar's events through the session.
func (s *session) options() registrar.Options {
	return registrar.Options{Logger: s.log, Publisher: s, Recorder: s}
}

// connectSideChannels connects the enabled side channels. A side channel that
// cannot be reached is logged and left out.
func (s *session) connectSideChannels(ctx context.Context) {
	if s.cfg.MQTT.Enabled {
		client, err := mqtt.Connect(s.cfg.MQTT)
		if err != nil {
			s.log.Warn("MQTT unavailable, events will not be published", "error", err)
		} else {
			s.onClose(func() {
				client.Close() //nolint:errcheck // always nil
			})
			s.publisher = newEventPublisher(client, s.cfg.MQTT)
		}
	}

	if s.cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, s.cfg.InfluxDB)
		if err != nil {
			s.log.Warn("InfluxDB unavailable, operations will not be recorded", "error", err)
		} else {
			s.onClose(func() {
				client.Close() //nolint:errcheck // always nil
			})
			s.recorders = append(s.recorders, newOperationRecorder(client))
		}
	}
}

// PublishEvent implements registrar.Publisher. Without a broker it does nothing.
func (s *session) PublishEvent(ctx context.Context, evt registrar.Event) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishEvent(ctx, evt)
}

// RecordEvent implements registrar.Recorder by fanning out to every attached recorder.
func (s *session) RecordEvent(ctx context.Context, evt registrar.Event) error {
	var errs []error
	for _, r := range s.recorders {
		if err := r.RecordEvent(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
