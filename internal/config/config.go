// Package config provides configuration loading and validation for the CLI
// and the service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the agent configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Credentials
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Model       string `json:"model,omitempty"`        // Gemini model name
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Calendar backend
	CalendarID      string `json:"calendar_id,omitempty"`      // Target calendar ID (default: primary)
	CredentialsFile string `json:"credentials_file,omitempty"` // Google service account credentials JSON
	Timezone        string `json:"timezone,omitempty"`         // System IANA timezone for relative times
	AttendeeDomain  string `json:"attendee_domain,omitempty"`  // Email domain for bare attendee names

	// Pipeline tuning
	ConfidenceThreshold    float64 `json:"confidence_threshold,omitempty"`     // Gate for validation/classification (0.0-1.0)
	DefaultDurationMinutes int     `json:"default_duration_minutes,omitempty"` // Event length when no end or duration given
	MaxAttempts            int     `json:"max_attempts,omitempty"`             // Attempts per capability call incl. first
	InitialBackoffMillis   int     `json:"initial_backoff_millis,omitempty"`   // First retry delay
	PipelineTimeoutSeconds int     `json:"pipeline_timeout_seconds,omitempty"` // Whole-request deadline

	// Service
	Port    int  `json:"port,omitempty"`    // HTTP listen port
	Workers int  `json:"workers,omitempty"` // Queue worker pool size
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("config error: 'confidence_threshold' must be between 0.0 and 1.0")
	}
	if c.DefaultDurationMinutes < 0 {
		return fmt.Errorf("config error: 'default_duration_minutes' must be non-negative")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("config error: 'max_attempts' must be non-negative")
	}
	if c.PipelineTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'pipeline_timeout_seconds' must be non-negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("config error: invalid 'timezone': %s", c.Timezone)
		}
	}

	if c.CredentialsFile != "" {
		if _, err := os.Stat(c.CredentialsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: credentials file not found: %s", c.CredentialsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.CalendarID == "" {
		result.CalendarID = defaults.CalendarID
	}
	if result.CredentialsFile == "" {
		result.CredentialsFile = defaults.CredentialsFile
	}
	if result.Timezone == "" {
		result.Timezone = defaults.Timezone
	}
	if result.AttendeeDomain == "" {
		result.AttendeeDomain = defaults.AttendeeDomain
	}

	// Int fields: use default if zero
	if result.DefaultDurationMinutes == 0 {
		result.DefaultDurationMinutes = defaults.DefaultDurationMinutes
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.InitialBackoffMillis == 0 {
		result.InitialBackoffMillis = defaults.InitialBackoffMillis
	}
	if result.PipelineTimeoutSeconds == 0 {
		result.PipelineTimeoutSeconds = defaults.PipelineTimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Float fields
	if result.ConfidenceThreshold == 0 {
		if defaults.ConfidenceThreshold > 0 {
			result.ConfidenceThreshold = defaults.ConfidenceThreshold
		} else {
			result.ConfidenceThreshold = 0.7 // Default acceptance gate
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in values applied when neither the config file
// nor a flag sets them. Model stays empty so the provider's per-tier defaults
// apply unless explicitly overridden.
func Defaults() Config {
	return Config{
		CalendarID:             "primary",
		Timezone:               "UTC",
		AttendeeDomain:         "example.com",
		ConfidenceThreshold:    0.7,
		DefaultDurationMinutes: 60,
		MaxAttempts:            3,
		InitialBackoffMillis:   500,
		PipelineTimeoutSeconds: 120,
		Port:                   8080,
		Workers:                4,
	}
}

// DefaultDuration returns the default event duration.
func (c *Config) DefaultDuration() time.Duration {
	return time.Duration(c.DefaultDurationMinutes) * time.Minute
}

// InitialBackoff returns the first retry delay.
func (c *Config) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffMillis) * time.Millisecond
}

// PipelineTimeout returns the whole-request deadline.
func (c *Config) PipelineTimeout() time.Duration {
	return time.Duration(c.PipelineTimeoutSeconds) * time.Second
}
