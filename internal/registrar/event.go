package registrar

import (
	"time"

	"github.com/google/uuid"
)

// Outcome values carried by events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event describes one completed action.
type Event struct {
	ID       string `json:"id"`
	Action   Action `json:"action"`
	Instance string `json:"instance"`
	Device   string `json:"device"`
	Class    string `json:"class"`
	Server   string `json:"server"`

	// Exported is the export state observed by status and unexport.
	// It is false for add and remove.
	Exported bool `json:"exported"`

	// Error holds the failure message, empty on success.
	Error string `json:"error,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Outcome returns OutcomeSuccess or OutcomeFailure.
func (e Event) Outcome() string {
	if e.Error != "" {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// newEventID returns a random event identifier.
func newEventID() string {
	return uuid.New().String()
}
