package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/coginfy/relay/internal/crypto"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Auth modes. AuthModeDevBypass skips credential verification and must
// never be active in production; ResolveDefaults enforces that.
const (
	AuthModeStatic    = "static"
	AuthModeDevBypass = "devbypass"
)

// Config holds the configuration for the relay service.
// Environment variables are parsed from the RELAY_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Document Store: postgres or sqlite; "auto" derives from the DSN.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/relay.db"`

	// EncryptionKey is the process-wide AES-256 key, hex encoded
	// (64 characters). Loaded once at startup; never rotated at runtime.
	EncryptionKey string `envconfig:"ENCRYPTION_KEY" default:""`

	// Auth: "static" verifies bearer keys against APIKeys,
	// "devbypass" resolves every request to a fixed test identity.
	AuthMode string `envconfig:"AUTH_MODE" default:"auto"`
	// APIKeys maps bearer credential -> user id, e.g. "key1:alice,key2:bob".
	APIKeys map[string]string `envconfig:"API_KEYS"`

	// Auto-responder
	ResponderEnabled bool          `envconfig:"RESPONDER_ENABLED" default:"true"`
	ResponderDelay   time.Duration `envconfig:"RESPONDER_DELAY" default:"1500ms"`

	// PlainPreviews stores the literal message text in conversation
	// summaries instead of the redacted marker.
	PlainPreviews bool `envconfig:"PLAIN_PREVIEWS" default:"false"`

	// Fetch page size (newest-first, no deep pagination).
	PageSize int `envconfig:"PAGE_SIZE" default:"50"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults derives the DB driver and auth mode when set to "auto"
// and validates the combinations that must never ship.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.AuthMode == "" || c.AuthMode == "auto" {
		if c.IsProduction() {
			c.AuthMode = AuthModeStatic
		} else {
			c.AuthMode = AuthModeDevBypass
		}
	}
	switch c.AuthMode {
	case AuthModeStatic:
	case AuthModeDevBypass:
		if c.IsProduction() {
			return fmt.Errorf("auth bypass is not allowed in production")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE: %s", c.AuthMode)
	}

	if _, err := crypto.ParseKey(c.EncryptionKey); err != nil {
		return fmt.Errorf("invalid RELAY_ENCRYPTION_KEY: %w", err)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	if c.ResponderDelay < 0 {
		return fmt.Errorf("RESPONDER_DELAY must not be negative")
	}
	return nil
}

// New creates a Config by parsing RELAY_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("RELAY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Key returns the parsed 32-byte encryption key. Call after ResolveDefaults.
func (c *Config) Key() ([]byte, error) {
	return crypto.ParseKey(c.EncryptionKey)
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// IsTesting reports whether the environment is testing.
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// GetHTTPAddr returns the HTTP server listen address.
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

// NewForTesting returns a config suitable for unit tests: sqlite store,
// dev auth bypass, responder disabled and a fixed key.
func NewForTesting() *Config {
	cfg := &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DBDriver:                  "sqlite",
		SQLitePath:                "",
		EncryptionKey:             "1fe7f3a7fc258225635b3562884d46473175a913ef02c18a24b825f7e54cfb7d",
		AuthMode:                  AuthModeDevBypass,
		ResponderEnabled:          false,
		ResponderDelay:            0,
		PageSize:                  50,
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
	}
	return cfg
}
