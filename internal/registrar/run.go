package registrar

import (
	"context"
	"fmt"
	"io"

	"github.com/nerrad567/device-registrar/internal/instance"
)

// Request names what one invocation should do.
type Request struct {
	Action   Action
	Instance string

	// Dir overrides the instance directory. Empty means TANGO_CONFIG_DIR or
	// the default directory.
	Dir string
}

// Connector opens the registry client. Run calls it only after the instance
// file has been loaded.
type Connector func(ctx context.Context) (Client, error)

// Using returns a Connector for an already opened client.
func Using(client Client) Connector {
	return func(context.Context) (Client, error) {
		return client, nil
	}
}

// Result is the outcome of a successful Run.
type Result struct {
	Action   Action
	Exported bool
}

// Run resolves and loads the instance file, then executes the requested action.
//
// Instance file problems are returned before connect is called.
func Run(ctx context.Context, connect Connector, req Request, out io.Writer, opts Options) (Result, error) {
	if _, err := ParseAction(string(req.Action)); err != nil {
		return Result{}, err
	}

	cfg, err := instance.Load(instance.ResolveDir(req.Dir), req.Instance, out)
	if err != nil {
		return Result{}, err
	}

	client, err := connect(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("connecting to registry: %w", err)
	}

	r, err := New(cfg, client, out, opts)
	if err != nil {
		return Result{}, err
	}

	exported, err := r.Execute(ctx, req.Action)
	if err != nil {
		return Result{}, err
	}

	return Result{Action: req.Action, Exported: exported}, nil
}
