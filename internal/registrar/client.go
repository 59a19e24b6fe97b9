package registrar

import (
	"context"

	"github.com/nerrad567/device-registrar/internal/device"
)

// Client is the registry API the registrar drives.
//
// Both device.SQLiteRepository and remote.Client implement it.
type Client interface {
	// PutDeviceProperties stores properties for a device name. The device
	// does not have to be registered yet.
	PutDeviceProperties(ctx context.Context, name string, props device.Properties) error

	// AddDevice registers a device under its server.
	AddDevice(ctx context.Context, desc device.Descriptor) error

	// DeleteServer removes a server entry and the devices it owns.
	DeleteServer(ctx context.Context, server string) error

	// UnexportServer marks every device of a server as not exported.
	UnexportServer(ctx context.Context, server string) error

	// ImportDevice returns the registry record for a device name.
	ImportDevice(ctx context.Context, name string) (device.DeviceInfo, error)
}

// Publisher announces lifecycle events, typically over MQTT.
type Publisher interface {
	PublishEvent(ctx context.Context, evt Event) error
}

// Recorder keeps an audit trail of events, typically in InfluxDB.
type Recorder interface {
	RecordEvent(ctx context.Context, evt Event) error
}

// Logger defines the logging interface used by the Registrar.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
