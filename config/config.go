// Package config loads the server configuration from environment variables.
// Every setting has a default suitable for local development.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application settings.
type Config struct {
	Port               string        `env:"PORT"                 envDefault:"8080"`
	AppName            string        `env:"APP_NAME"             envDefault:"TypeRush"`
	AdminName          string        `env:"ADMIN_NAME"           envDefault:"Admin"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	StaticDir          string        `env:"STATIC_DIR"`
	StatsDBPath        string        `env:"STATS_DB_PATH"        envDefault:"typerush_stats.db"`
	SendQueueSize      int           `env:"SEND_QUEUE_SIZE"      envDefault:"64"`
	DispatchQueueSize  int           `env:"DISPATCH_QUEUE_SIZE"  envDefault:"256"`
	LeaderboardLimit   int           `env:"LEADERBOARD_LIMIT"    envDefault:"10"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT"     envDefault:"30s"`
}

// Load parses the environment into a validated Config.
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

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.SendQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("SEND_QUEUE_SIZE must be positive, got %d", c.SendQueueSize))
	}
	if c.DispatchQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_QUEUE_SIZE must be positive, got %d", c.DispatchQueueSize))
	}
	if c.LeaderboardLimit <= 0 {
		errs = append(errs, fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", c.LeaderboardLimit))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}
