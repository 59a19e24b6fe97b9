// Package logging provides structured logging for the registrar.
//
// This package wraps Go's standard log/slog package. Diagnostic logs go to
// stderr by default so that stdout carries only the lines meant for the
// operator ("registering device ...", "device ... is exported").
//
// # Configuration
//
//	logging:
//	  level: "warn"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("registry client ready", "backend", cfg.Registry.Backend)
//
// Never log registry token secrets or broker passwords.
package logging
