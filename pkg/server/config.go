package server

import (
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/adapters"
)

// Config holds configuration for the web server
type Config struct {
	// Port is the port to listen on (default: 8080)
	Port string `validate:"required,numeric"`

	// Host is the host to bind to (default: "")
	Host string

	// Adapter names the web framework serving requests (default: echo)
	Adapter string `validate:"required,oneof=echo gin fiber"`

	// RoutesFile is an optional YAML file with routes registered before
	// the built-in ones
	RoutesFile string

	// ShutdownTimeout is the timeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// LogLevel is the minimum level logged (default: info)
	LogLevel slog.Level
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Port:            "8080",
		Adapter:         adapters.EchoName,
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        slog.LevelInfo,
	}
}

// ConfigFromEnv returns the defaults overridden by PORT, HOST,
// AXONMVC_ADAPTER, AXONMVC_ROUTES, AXONMVC_SHUTDOWN_TIMEOUT and
// AXONMVC_LOG_LEVEL.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.Adapter = strings.ToLower(getEnvOrDefault("AXONMVC_ADAPTER", cfg.Adapter))
	cfg.RoutesFile = getEnvOrDefault("AXONMVC_ROUTES", cfg.RoutesFile)

	if raw := os.Getenv("AXONMVC_SHUTDOWN_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, axonerrors.WrapConfigurationError("AXONMVC_SHUTDOWN_TIMEOUT", "parse", err)
		}
		cfg.ShutdownTimeout = timeout
	}

	if raw := os.Getenv("AXONMVC_LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, axonerrors.WrapConfigurationError("AXONMVC_LOG_LEVEL", "parse", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return axonerrors.WrapConfigurationError("server", "validate", err)
	}
	return nil
}

// Addr returns the address to listen on
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
