package config

import (
	"os"
	"strconv"
	"time"

	"golact/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	MilkBot  MilkBotConfig
	Database DatabaseConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// MilkBotConfig holds settings for the hosted Bayesian fitting service
type MilkBotConfig struct {
	APIKey    string
	BaseURL   string
	EUBaseURL string
	Timeout   time.Duration
}

// DatabaseConfig holds database connection settings. The database is
// optional; an empty URL disables persistence.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// Load reads configuration from environment variables. Only the MilkBot
// API key is genuinely optional at load time; requests that need it fail
// with a validation error instead.
func Load() (*Config, error) {
	timeout, err := loadTimeout("MILKBOT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load MilkBot configuration")
	}

	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		MilkBot: MilkBotConfig{
			APIKey:    os.Getenv("MILKBOT_API_KEY"),
			BaseURL:   getEnvOrDefault("MILKBOT_BASE_URL", ""),
			EUBaseURL: getEnvOrDefault("MILKBOT_EU_BASE_URL", ""),
			Timeout:   timeout,
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		},
	}

	if err := config.validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release, or test")
	}
	if c.MilkBot.Timeout <= 0 {
		return errors.ConfigInvalid("MILKBOT_TIMEOUT must be positive")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.ConfigInvalid("DB_MAX_OPEN_CONNS must be positive")
	}
	return nil
}

// loadTimeout parses a duration variable strictly: a set but malformed
// value is a configuration error, not a silent fallback.
func loadTimeout(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(value)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
