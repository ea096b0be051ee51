package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string

	// Storage
	StorageType string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string

	// Dashboard
	Timezone       string // IANA zone name or "Local"
	TimelineDays   int
	ThresholdsFile string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	days, err := getEnvInt("TIMELINE_DAYS", 7)
	if err != nil {
		return nil, err
	}

	return &Config{
		GitHubToken:    getEnv("GITHUB_TOKEN", ""),
		StorageType:    getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "./qa-metrics.db"),
		PostgresURL:    getEnv("POSTGRES_URL", ""),
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "localhost"),
		APIEndpoint:    getEnv("API_ENDPOINT", "http://localhost:8080"),
		Timezone:       getEnv("DASHBOARD_TIMEZONE", "Local"),
		TimelineDays:   days,
		ThresholdsFile: getEnv("RATING_THRESHOLDS_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("must be an integer, got %q", value)}
	}
	return n, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.StorageType != "sqlite" && c.StorageType != "postgres" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	if c.TimelineDays <= 0 {
		return &ConfigError{Field: "TIMELINE_DAYS", Message: "must be positive"}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return &ConfigError{Field: "LOG_FORMAT", Message: "must be 'text' or 'json'"}
	}
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "DASHBOARD_TIMEZONE", Message: err.Error()}
	}
	return nil
}

// ValidateForCollect validates the configuration needed to import from GitHub
func (c *Config) ValidateForCollect() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GitHub token is required"}
	}
	return nil
}

// Location resolves the dashboard time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
