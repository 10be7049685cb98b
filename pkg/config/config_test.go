package config

import (
	"os"
	"testing"
)

func TestLoadDefaultsWithNoPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default logging level \"info\", got %q", cfg.Logging.Level)
	}
	if cfg.Redis.Enabled {
		t.Fatal("expected Redis disabled by default")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	os.Setenv("LEXO_LOGGING_LEVEL", "debug")
	defer os.Unsetenv("LEXO_LOGGING_LEVEL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env override to set level to \"debug\", got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
