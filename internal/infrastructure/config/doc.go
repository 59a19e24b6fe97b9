// Package config handles loading and validating registrar settings.
//
// Settings describe how the registrar reaches the device registry and its
// optional side channels. They are separate from the per-instance device
// files read by package instance.
//
// This package manages:
//   - Loading settings from a YAML file (optional at the default path)
//   - Overriding with environment variables
//   - Validation of backend-specific fields
//
// Security Considerations:
//   - Registry token secrets and broker passwords should come from the environment
//   - The settings file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(config.DefaultPath)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Registry.Backend)
package config
