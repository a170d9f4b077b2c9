// Package api provides the HTTP server for pokeguess: the quiz endpoints,
// the derived image assets and the operational endpoints.
package api

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/pokeguess/pokeguess/internal/conf"
	"github.com/pokeguess/pokeguess/internal/logger"
)

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// Default constants for the HTTP server.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "64K"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Server binding
	Host string // empty binds all interfaces
	Port int

	AllowedOrigins []string // CORS allowed origins

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BodyLimit string // e.g. "64K"

	StaticDir      string // root of the realImages and silhouettes directories
	MetricsEnabled bool   // expose /metrics

	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            5000,
		AllowedOrigins:  []string{"*"},
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
		StaticDir:       "static",
		MetricsEnabled:  true,
	}
}

// ConfigFromSettings creates a Config from the application settings.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()

	cfg.Host = settings.Server.Host
	cfg.Port = settings.Server.Port
	if len(settings.Server.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = settings.Server.AllowedOrigins
	}
	if settings.Server.ReadTimeout > 0 {
		cfg.ReadTimeout = settings.Server.ReadTimeout
	}
	if settings.Server.WriteTimeout > 0 {
		cfg.WriteTimeout = settings.Server.WriteTimeout
	}
	if settings.Server.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = settings.Server.ShutdownTimeout
	}
	if settings.Server.BodyLimit != "" {
		cfg.BodyLimit = settings.Server.BodyLimit
	}

	cfg.StaticDir = settings.Images.StaticDir
	cfg.MetricsEnabled = settings.Metrics.Enabled
	cfg.Debug = settings.Debug

	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.StaticDir == "" {
		return fmt.Errorf("static directory is required")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	return nil
}

// Address returns the full address string for the server to listen on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String returns a human-readable representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Server Config: address=%s, static=%s, metrics=%v, debug=%v",
		c.Address(), c.StaticDir, c.MetricsEnabled, c.Debug)
}
