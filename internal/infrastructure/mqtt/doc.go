// Package mqtt publishes registrar lifecycle events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker (plain TCP or TLS)
//   - Message publishing with QoS guarantees
//   - Topic construction for registrar events
//   - Connection health checks
//
// The registrar is a one-shot command, so the client connects once, publishes
// the event of the action it just ran, and disconnects. There is no
// auto-reconnect and no subscription handling.
//
// # Topics
//
//	<prefix>/events/<class>/<instance>/<action>
//
// Events are published with the configured QoS and are never retained.
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) when the broker is not local
//   - Pass credentials through REGISTRAR_MQTT_USERNAME / REGISTRAR_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.NewTopics(cfg.MQTT.TopicPrefix).Event("MotorCtrl", "stage-a", "add")
//	err = client.PublishJSON(topic, evt, byte(cfg.MQTT.QoS), false)
package mqtt
