package instance

import "errors"

// Instance file errors.
var (
	// ErrFileNotFound is returned when the instance file does not exist or is not a regular file.
	ErrFileNotFound = errors.New("instance: file not found")

	// ErrPermissionDenied is returned when the instance file exists but cannot be read.
	ErrPermissionDenied = errors.New("instance: permission denied")

	// ErrMissingSection is returned when a required section is absent.
	ErrMissingSection = errors.New("instance: missing section")

	// ErrMissingKey is returned when a required key is absent or empty.
	ErrMissingKey = errors.New("instance: missing key")

	// ErrInvalidName is returned for instance names that cannot form a file name.
	ErrInvalidName = errors.New("instance: invalid name")
)
