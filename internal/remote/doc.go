// Package remote is a registry client for device registries reached over
// HTTP.
//
// Routes (relative to the configured base URL):
//
//	PUT    /api/v1/devices/properties?device=<name>   body: properties
//	POST   /api/v1/devices                            body: descriptor
//	DELETE /api/v1/servers?server=<server>
//	POST   /api/v1/servers/unexport?server=<server>
//	GET    /api/v1/devices/import?device=<name>       → device info
//
// When a token secret is configured every request carries a short-lived
// HS256 bearer token. Registry status codes map onto the device package
// errors so callers can use errors.Is regardless of the backend.
package remote
