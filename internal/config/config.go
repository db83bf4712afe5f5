// Package config provides centralized configuration management for the CSV
// tools. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration. Command-line flags override anything loaded here.
package config

import "time"

// Config holds all tool configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Retry   RetryConfig
	Logging LoggingConfig
}

// ServerConfig holds Numetric API connection settings.
type ServerConfig struct {
	// URL is the base URL of the Numetric API server
	URL string `env:"NUMETRIC_SERVER" default:"http://cloud-dev.numetric.com:3002"`

	// APIKey is the Numetric API key, sent as the Authorization header.
	// Usually set via environment or .env rather than the command line.
	APIKey string `env:"NUMETRIC_API_KEY" envAlt:"NUMETRIC_APIKEY"`

	// Timeout is the per-request HTTP timeout (default: 2m)
	Timeout time.Duration `env:"NUMETRIC_HTTP_TIMEOUT" default:"2m"`
}

// UploadConfig holds CSV extraction and batching settings.
type UploadConfig struct {
	// BatchSize is the number of rows sent per upload request (default: 3000)
	BatchSize int `env:"UPLOAD_BATCH_SIZE" default:"3000"`

	// MaxFieldSize is the maximum accepted size of a single CSV cell in
	// bytes (default: 1MB). Bounds memory on pathological files.
	MaxFieldSize int `env:"UPLOAD_MAX_FIELD_SIZE" default:"1048576"`
}

// RetryConfig holds the retry policy for "server busy" responses.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per request (default: 6)
	MaxAttempts int `env:"RETRY_MAX_ATTEMPTS" default:"6"`

	// InitialDelay is the delay before the first retry (default: 5s)
	InitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" default:"5s"`

	// MaxDelay caps the exponential backoff delay (default: 1m)
	MaxDelay time.Duration `env:"RETRY_MAX_DELAY" default:"1m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
