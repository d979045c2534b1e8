// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL). Either DATABASE_URL or the DB_* parts.
	DatabaseURL string `env:"DATABASE_URL"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBHost      string `env:"DB_HOST"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Base URL the pages link back to
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Page revalidation window for the timed-revalidation pages
	RevalidateInterval time.Duration `env:"REVALIDATE_INTERVAL" envDefault:"60s"`

	// Shared secret for POST /api/revalidate. Empty disables the check.
	RevalidateSecret string `env:"REVALIDATE_SECRET" envDefault:""`

	// Whether to build the static snapshot at startup
	SnapshotOnStart bool `env:"SNAPSHOT_ON_START" envDefault:"true"`
}

// ErrNoDatabase indicates neither DATABASE_URL nor the DB_* parts were set.
var ErrNoDatabase = errors.New("database not configured: set DATABASE_URL or DB_USER/DB_PASSWORD/DB_HOST/DB_NAME")

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PostgresURL returns the connection string for PostgreSQL.
// A combined DATABASE_URL wins; otherwise the URL is assembled from the
// DB_* parts.
func (c *Config) PostgresURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

// Load parses environment variables and returns a Config.
// A .env file in the working directory is loaded first when present.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DatabaseURL == "" && (cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBName == "") {
		return nil, ErrNoDatabase
	}

	return cfg, nil
}
