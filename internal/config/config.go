// Package config loads otpauthd settings from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// ErrInvalid marks a configuration that parsed but cannot be used.
var ErrInvalid = errors.New("config: invalid")

// Config contains server configuration parameters.
type Config struct {
	Port       string   `env:"PORT" envDefault:"4000"`
	AppEnv     string   `env:"APP_ENV" envDefault:"development"`
	JWTSecret  string   `env:"JWT_SECRET"`
	RedisAddr  string   `env:"REDIS_ADDR"`
	Store      string   `env:"STORE" envDefault:"redis"`
	TrustProxy bool     `env:"TRUST_PROXY" envDefault:"false"`
	LogLevel   string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string   `env:"LOG_FORMAT" envDefault:"text"`
	Database   Database `envPrefix:"DATABASE_"`
	SMTP       SMTP     `envPrefix:"SMTP_"`
}

// Database contains database connection parameters.
type Database struct {
	DSN string `env:"DSN"`
}

// SMTP contains mail relay parameters. An empty Host selects the log
// notifier.
type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USER"`
	Password string `env:"PASS"`
	From     string `env:"FROM"`
}

// Production reports whether cookies must be Secure and cross-site.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrInvalid)
	}
	switch c.Store {
	case StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("%w: STORE must be %q or %q", ErrInvalid, StoreRedis, StorePostgres)
	}
	if c.Store == StorePostgres && c.Database.DSN == "" {
		return fmt.Errorf("%w: DATABASE_DSN is required for the postgres store", ErrInvalid)
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("%w: SMTP_FROM is required when SMTP_HOST is set", ErrInvalid)
	}
	return nil
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
