// registrar registers, removes, unexports and queries one device server
// instance in a device registry.
//
// Usage:
//
//	registrar [--dir|-d DIR] [--config|-c FILE] {add|remove|unexport|status} INSTANCE
//
// The instance file <DIR>/<INSTANCE>.conf names the device and its
// properties. Tool settings (registry backend, MQTT, InfluxDB, logging) come
// from a YAML file, /etc/registrar/registrar.yaml by default.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/device-registrar/internal/infrastructure/config"
	"github.com/nerrad567/device-registrar/internal/infrastructure/logging"
	"github.com/nerrad567/device-registrar/internal/registrar"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// envConfigPath names the settings file when --config is not given.
const envConfigPath = "REGISTRAR_CONFIG"

// rootOptions holds the parsed command-line flags.
type rootOptions struct {
	dir        string
	configPath string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// execute runs the command and returns the process exit code.
// Errors are printed to stdout.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stdout, err) //nolint:errcheck // nothing left to report to
		return 1
	}
	return 0
}

// newRootCmd builds the registrar command.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "registrar [flags] {" + strings.Join(actionNames(), "|") + "} INSTANCE",
		Short: "Register and manage a device server instance in the device registry",
		Long: `registrar reads <dir>/<instance>.conf and registers, removes, unexports
or queries the device it describes.

The instance directory is taken from --dir, then TANGO_CONFIG_DIR, then
/opt/tango/etc.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.MatchAll(cobra.ExactArgs(2), validAction),
		ValidArgs:     actionNames(),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid from here on; failures are not usage errors.
			cmd.SilenceUsage = true
			return run(cmd.Context(), opts, registrar.Action(args[0]), args[1], stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.dir, "dir", "d", "", "instance file directory (overrides TANGO_CONFIG_DIR)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "settings file (default $"+envConfigPath+" or "+config.DefaultPath+")")

	return cmd
}

// validAction rejects an unknown first argument.
func validAction(_ *cobra.Command, args []string) error {
	_, err := registrar.ParseAction(args[0])
	return err
}

func actionNames() []string {
	actions := registrar.Actions()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	return names
}

// run loads settings, wires the registry and side channels, and performs one action.
func run(ctx context.Context, opts *rootOptions, action registrar.Action, instanceName string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(settingsPath(opts.configPath))
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	log := newLogger(cfg.Logging, stdout, stderr)
	log.Debug("settings loaded",
		"backend", cfg.Registry.Backend,
		"mqtt", cfg.MQTT.Enabled,
		"influxdb", cfg.InfluxDB.Enabled,
	)

	sess := newSession(cfg, log)
	defer sess.close()

	_, err = registrar.Run(ctx, sess.connectRegistry, registrar.Request{
		Action:   action,
		Instance: instanceName,
		Dir:      opts.dir,
	}, stdout, sess.options())
	return err
}

// settingsPath picks the settings file: flag, then REGISTRAR_CONFIG, then the default.
func settingsPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if v := os.Getenv(envConfigPath); v != "" {
		return v
	}
	return config.DefaultPath
}

// newLogger writes logs to stderr unless the settings ask for stdout.
func newLogger(cfg config.LoggingConfig, stdout, stderr io.Writer) *logging.Logger {
	out := stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		out = stdout
	}
	return logging.NewWithWriter(cfg, version, out)
}
