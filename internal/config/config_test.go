package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Server.URL != "http://cloud-dev.numetric.com:3002" {
		t.Errorf("Server.URL = %q, want %q", cfg.Server.URL, "http://cloud-dev.numetric.com:3002")
	}
	if cfg.Upload.BatchSize != 3000 {
		t.Errorf("Upload.BatchSize = %d, want %d", cfg.Upload.BatchSize, 3000)
	}
	if cfg.Upload.MaxFieldSize != 1<<20 {
		t.Errorf("Upload.MaxFieldSize = %d, want %d", cfg.Upload.MaxFieldSize, 1<<20)
	}
	if cfg.Retry.MaxAttempts != 6 {
		t.Errorf("Retry.MaxAttempts = %d, want %d", cfg.Retry.MaxAttempts, 6)
	}
	if cfg.Retry.InitialDelay != 5*time.Second {
		t.Errorf("Retry.InitialDelay = %v, want %v", cfg.Retry.InitialDelay, 5*time.Second)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("NUMETRIC_SERVER", "https://api.example.com")
	t.Setenv("UPLOAD_BATCH_SIZE", "500")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.URL != "https://api.example.com" {
		t.Errorf("Server.URL = %q, want %q", cfg.Server.URL, "https://api.example.com")
	}
	if cfg.Upload.BatchSize != 500 {
		t.Errorf("Upload.BatchSize = %d, want %d", cfg.Upload.BatchSize, 500)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// Test that NUMETRIC_APIKEY works as fallback
	t.Setenv("NUMETRIC_APIKEY", "alt-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.APIKey != "alt-key" {
		t.Errorf("Server.APIKey = %q, want %q", cfg.Server.APIKey, "alt-key")
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("NUMETRIC_HTTP_TIMEOUT", "45s")
	t.Setenv("RETRY_INITIAL_DELAY", "1s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Timeout != 45*time.Second {
		t.Errorf("Server.Timeout = %v, want %v", cfg.Server.Timeout, 45*time.Second)
	}
	if cfg.Retry.InitialDelay != time.Second {
		t.Errorf("Retry.InitialDelay = %v, want %v", cfg.Retry.InitialDelay, time.Second)
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("UPLOAD_BATCH_SIZE", "lots")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for invalid integer")
	}
}

func TestValidate_InvalidBatchSize(t *testing.T) {
	cfg := validConfig()
	cfg.Upload.BatchSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for zero batch size")
	}
	if !strings.Contains(err.Error(), "UPLOAD_BATCH_SIZE") {
		t.Errorf("error should mention UPLOAD_BATCH_SIZE: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error should mention LOG_LEVEL: %v", err)
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Upload.BatchSize = -1
	cfg.Retry.MaxAttempts = 0
	cfg.Logging.Format = "yaml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"UPLOAD_BATCH_SIZE", "RETRY_MAX_ATTEMPTS", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestConfigString_MasksAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Server.APIKey = "super-secret-key"

	str := cfg.String()
	if strings.Contains(str, "super-secret-key") {
		t.Error("String() should mask the API key")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{URL: "http://localhost:3002", Timeout: time.Minute},
		Upload:  UploadConfig{BatchSize: 3000, MaxFieldSize: 1 << 20},
		Retry:   RetryConfig{MaxAttempts: 6, InitialDelay: 5 * time.Second, MaxDelay: time.Minute},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
