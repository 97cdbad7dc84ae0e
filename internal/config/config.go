// Package config loads server and CLI configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds every PLEDGE_* setting.
type Config struct {
	Addr    string `env:"PLEDGE_ADDR" envDefault:":8080"`
	Storage string `env:"PLEDGE_STORAGE" envDefault:"memory"`
	DBPath  string `env:"PLEDGE_DB_PATH" envDefault:"./data/pledge.db"`

	FingerprintKey string        `env:"PLEDGE_FINGERPRINT_KEY,required,notEmpty"`
	JWTSecret      string        `env:"PLEDGE_JWT_SECRET,required,notEmpty"`
	TokenTTL       time.Duration `env:"PLEDGE_TOKEN_TTL" envDefault:"24h"`

	DefaultStake       int64 `env:"PLEDGE_DEFAULT_STAKE" envDefault:"100"`
	RejectResubmission bool  `env:"PLEDGE_REJECT_RESUBMISSION" envDefault:"false"`

	LogLevel  string `env:"PLEDGE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"PLEDGE_LOG_FORMAT" envDefault:"text"`

	MetricsPath     string        `env:"PLEDGE_METRICS_PATH" envDefault:"/metrics"`
	ShutdownTimeout time.Duration `env:"PLEDGE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the values env tags cannot express.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	default:
		return fmt.Errorf("PLEDGE_STORAGE must be %q or %q, got %q", StorageMemory, StorageSQLite, c.Storage)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("PLEDGE_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("PLEDGE_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.DefaultStake < 0 {
		return fmt.Errorf("PLEDGE_DEFAULT_STAKE must not be negative, got %d", c.DefaultStake)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("PLEDGE_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("PLEDGE_METRICS_PATH must start with /, got %q", c.MetricsPath)
	}
	return nil
}

// Level returns the slog level named by LogLevel. Validate rejects unknown
// names; an unvalidated Config falls back to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
