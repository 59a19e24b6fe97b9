package registrar

import "errors"

var (
	// ErrUnknownAction is returned for an action other than add, remove, unexport or status.
	ErrUnknownAction = errors.New("registrar: unknown action")

	// ErrNoClient is returned when a registrar is built without a registry client.
	ErrNoClient = errors.New("registrar: registry client is required")
)
