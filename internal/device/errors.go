package device

import "errors"

// Registry errors shared by every registry client.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device name is not registered.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when registering a device name that is already taken.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrServerNotFound is returned when no device belongs to the given server.
	ErrServerNotFound = errors.New("device: server not found")

	// ErrPermissionDenied is returned when the registry refuses the caller.
	ErrPermissionDenied = errors.New("device: permission denied")

	// ErrInvalidDevice is returned when descriptor validation fails.
	ErrInvalidDevice = errors.New("device: invalid")
)
