package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "registrar"

// Topics builds registrar MQTT topics under a prefix.
//
//	topics := mqtt.NewTopics("lab")
//	topics.Event("MotorCtrl", "stage-a", "add")
//	// Returns: "lab/events/MotorCtrl/stage-a/add"
type Topics struct {
	prefix string
}

// NewTopics returns a topic builder. Trailing slashes are dropped.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic prefix.
func (t Topics) Prefix() string {
	return t.prefix
}

// Event returns the topic for one registrar action on one instance.
//
// Example: registrar/events/MotorCtrl/stage-a/add
func (t Topics) Event(class, instance, action string) string {
	return fmt.Sprintf("%s/events/%s/%s/%s", t.prefix, class, instance, action)
}

// AllEvents returns a pattern matching every registrar event.
//
// Pattern: registrar/events/#
func (t Topics) AllEvents() string {
	return t.prefix + "/events/#"
}
