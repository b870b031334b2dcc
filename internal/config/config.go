// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage and session backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// Config is the server configuration
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR"`

	StorageType  string `env:"STORAGE_TYPE"  envDefault:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE"  envDefault:"true"`
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	RedisURL     string `env:"REDIS_URL"     envDefault:"redis://localhost:6379/0"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`

	BcryptCost          int           `env:"BCRYPT_COST"           envDefault:"10"`
	SessionTTL          time.Duration `env:"SESSION_TTL"           envDefault:"24h"`
	MaxPasswordAttempts int           `env:"MAX_PASSWORD_ATTEMPTS" envDefault:"5"`
	LockoutDuration     time.Duration `env:"LOCKOUT_DURATION"      envDefault:"15m"`
	SecureCookies       bool          `env:"SECURE_COOKIES"        envDefault:"false"`
}

// Load parses the environment into a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combination of settings
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_TYPE=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be %q or %q", c.StorageType, StorageMemory, StoragePostgres)
	}

	switch c.SessionStore {
	case SessionsMemory:
	case SessionsRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", SessionsRedis)
		}
	default:
		return fmt.Errorf("invalid SESSION_STORE %q: must be %q or %q", c.SessionStore, SessionsMemory, SessionsRedis)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}
