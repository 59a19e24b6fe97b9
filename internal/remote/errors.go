package remote

import "errors"

var (
	// ErrInvalidURL is returned when the registry base URL cannot be used.
	ErrInvalidURL = errors.New("remote: invalid registry url")

	// ErrRequestFailed is returned for transport failures and unexpected status codes.
	ErrRequestFailed = errors.New("remote: request failed")
)

// apiError is the JSON error body returned by the registry.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
