package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Registry backends understood by the registrar.
const (
	// BackendDatabase talks to the device database directly (SQLite).
	BackendDatabase = "database"

	// BackendHTTP talks to a registry service over its REST API.
	BackendHTTP = "http"
)

// DefaultPath is where the settings file is looked up when no path is given.
const DefaultPath = "/etc/registrar/registrar.yaml"

// Config is the root settings structure for the registrar.
// Settings are loaded from YAML and can be overridden by environment variables.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RegistryConfig selects and configures the device registry client.
type RegistryConfig struct {
	// Backend is "database" or "http".
	Backend string `yaml:"backend"`

	// URL is the base URL of the registry service (http backend only).
	URL string `yaml:"url"`

	// TokenSecret signs the bearer tokens sent to the registry service.
	// Leave empty when the service does not require authentication.
	TokenSecret string `yaml:"token_secret"`

	// Timeout is the per-request timeout in seconds (http backend only).
	Timeout int `yaml:"timeout"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads settings from a YAML file and applies environment variable overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing file at DefaultPath is not an error: the registrar runs on
// defaults. A missing file at any other path is.
//
// Environment variables follow the pattern: REGISTRAR_SECTION_KEY
// For example: REGISTRAR_DATABASE_PATH, REGISTRAR_REGISTRY_URL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing settings file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		// Optional at the default location.
	default:
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Backend: BackendDatabase,
			Timeout: 10,
		},
		Database: DatabaseConfig{
			Path:        "/var/lib/registrar/registry.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "registrar",
			},
			QoS:         1,
			TopicPrefix: "registrar",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the settings.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REGISTRAR_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("REGISTRAR_REGISTRY_URL"); v != "" {
		cfg.Registry.URL = v
	}
	if v := os.Getenv("REGISTRAR_REGISTRY_TOKEN_SECRET"); v != "" {
		cfg.Registry.TokenSecret = v
	}

	if v := os.Getenv("REGISTRAR_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("REGISTRAR_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("REGISTRAR_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("REGISTRAR_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the settings for errors.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	switch c.Registry.Backend {
	case BackendDatabase:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the database backend")
		}
	case BackendHTTP:
		if c.Registry.URL == "" {
			errs = append(errs, "registry.url is required for the http backend")
		}
		if c.Registry.Timeout < 0 {
			errs = append(errs, "registry.timeout must not be negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("registry.backend must be %q or %q", BackendDatabase, BackendHTTP))
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, "mqtt.topic_prefix is required")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("settings errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRegistryTimeout returns the registry request timeout as a Duration.
func (c *Config) GetRegistryTimeout() time.Duration {
	return time.Duration(c.Registry.Timeout) * time.Second
}
