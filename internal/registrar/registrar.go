package registrar

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nerrad567/device-registrar/internal/instance"
)

// Options carries the optional collaborators of a Registrar.
// Nil fields are allowed.
type Options struct {
	Publisher Publisher
	Recorder  Recorder
	Logger    Logger
}

// Registrar performs actions for one device server instance.
type Registrar struct {
	cfg       *instance.Config
	client    Client
	out       io.Writer
	publisher Publisher
	recorder  Recorder
	logger    Logger

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Registrar for a loaded instance file.
//
// Parameters:
//   - cfg: The parsed instance file
//   - client: Registry client the actions are issued against
//   - out: Receives the user-facing status lines
//   - opts: Optional publisher, recorder and logger
func New(cfg *instance.Config, client Client, out io.Writer, opts Options) (*Registrar, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	if out == nil {
		out = io.Discard
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Registrar{
		cfg:       cfg,
		client:    client,
		out:       out,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Execute runs one action and reports it to the publisher and recorder.
// The returned bool is the export state for status and unexport, false otherwise.
func (r *Registrar) Execute(ctx context.Context, action Action) (bool, error) {
	var (
		exported bool
		err      error
	)

	switch action {
	case ActionAdd:
		err = r.Add(ctx)
	case ActionRemove:
		err = r.Remove(ctx)
	case ActionUnexport:
		exported, err = r.unexport(ctx)
	case ActionStatus:
		exported, err = r.IsExported(ctx)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	r.notify(ctx, r.event(action, exported, err))

	return exported, err
}

// Add stores the instance properties and then registers the device.
// A failed registration leaves the stored properties in place.
func (r *Registrar) Add(ctx context.Context) error {
	r.printf("registering device %s\n", r.cfg.Name)

	desc := r.cfg.Descriptor()
	r.logger.Debug("adding device",
		"device", desc.Name,
		"class", desc.Class,
		"server", desc.Server,
		"properties", len(r.cfg.Properties),
	)

	if err := r.client.PutDeviceProperties(ctx, desc.Name, r.cfg.Properties); err != nil {
		return fmt.Errorf("setting properties of %s: %w", desc.Name, err)
	}

	if err := r.client.AddDevice(ctx, desc); err != nil {
		return fmt.Errorf("registering %s: %w", desc.Name, err)
	}

	return nil
}

// Remove deletes the server entry of this instance.
func (r *Registrar) Remove(ctx context.Context) error {
	r.printf("deleting device %s\n", r.cfg.Name)

	server := r.cfg.ServerID()
	if err := r.client.DeleteServer(ctx, server); err != nil {
		return fmt.Errorf("deleting server %s: %w", server, err)
	}

	return nil
}

// Unexport unexports the server if its device is currently exported.
func (r *Registrar) Unexport(ctx context.Context) error {
	_, err := r.unexport(ctx)
	return err
}

func (r *Registrar) unexport(ctx context.Context) (bool, error) {
	exported, err := r.IsExported(ctx)
	if err != nil || !exported {
		return exported, err
	}

	r.printf("unexporting device %s\n", r.cfg.Name)

	server := r.cfg.ServerID()
	if err := r.client.UnexportServer(ctx, server); err != nil {
		return exported, fmt.Errorf("unexporting server %s: %w", server, err)
	}

	return exported, nil
}

// IsExported queries the registry and prints the device's export state.
func (r *Registrar) IsExported(ctx context.Context) (bool, error) {
	info, err := r.client.ImportDevice(ctx, r.cfg.Name)
	if err != nil {
		return false, fmt.Errorf("importing %s: %w", r.cfg.Name, err)
	}

	if info.Exported {
		r.printf("device %s is exported\n", r.cfg.Name)
	} else {
		r.printf("device %s is not exported\n", r.cfg.Name)
	}

	return info.Exported, nil
}

// event builds the Event for a finished action.
func (r *Registrar) event(action Action, exported bool, err error) Event {
	evt := Event{
		ID:        newEventID(),
		Action:    action,
		Instance:  r.cfg.Instance,
		Device:    r.cfg.Name,
		Class:     r.cfg.Class,
		Server:    r.cfg.ServerID(),
		Exported:  exported,
		Timestamp: r.now().UTC(),
	}
	if err != nil {
		evt.Error = err.Error()
	}
	return evt
}

// notify hands the event to the publisher and recorder. Failures are logged only.
func (r *Registrar) notify(ctx context.Context, evt Event) {
	if r.publisher != nil {
		if err := r.publisher.PublishEvent(ctx, evt); err != nil {
			r.logger.Warn("publishing registrar event failed",
				"event_id", evt.ID,
				"action", evt.Action,
				"error", err,
			)
		}
	}

	if r.recorder != nil {
		if err := r.recorder.RecordEvent(ctx, evt); err != nil {
			r.logger.Warn("recording registrar event failed",
				"event_id", evt.ID,
				"action", evt.Action,
				"error", err,
			)
		}
	}
}

func (r *Registrar) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...) //nolint:errcheck // best-effort output
}
