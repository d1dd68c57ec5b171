package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeConfigFile(t, `
engine:
  limits:
    max_expression_length: 5000
    cache_capacity: 25

logging:
  level: "debug"
  format: "json"

audit:
  enabled: true
  backend: "sqlite"
  path: "./test-audit.db"
  retention_days: 7
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.Limits.MaxExpressionLength != 5000 {
		t.Errorf("expected max expression length 5000, got %d", cfg.Engine.Limits.MaxExpressionLength)
	}
	if cfg.Engine.Limits.CacheCapacity != 25 {
		t.Errorf("expected cache capacity 25, got %d", cfg.Engine.Limits.CacheCapacity)
	}
	// Unset limits fall back to defaults.
	if cfg.Engine.Limits.MaxTokenCount != 1000 {
		t.Errorf("expected default max token count 1000, got %d", cfg.Engine.Limits.MaxTokenCount)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging format %q, got %q", "json", cfg.Logging.Format)
	}

	if !cfg.Audit.Enabled {
		t.Error("expected audit to be enabled")
	}
	if cfg.Audit.Backend != "sqlite" {
		t.Errorf("expected audit backend %q, got %q", "sqlite", cfg.Audit.Backend)
	}
	if cfg.Audit.Path != "./test-audit.db" {
		t.Errorf("expected audit path %q, got %q", "./test-audit.db", cfg.Audit.Path)
	}
	if cfg.Audit.RetentionDays != 7 {
		t.Errorf("expected retention days 7, got %d", cfg.Audit.RetentionDays)
	}
	if cfg.Audit.BufferSize != 1000 {
		t.Errorf("expected default buffer size 1000, got %d", cfg.Audit.BufferSize)
	}
}

func TestLoadConfig_EmptyFileGetsDefaults(t *testing.T) {
	configPath := writeConfigFile(t, "")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Engine.Limits != defaults.Engine.Limits {
		t.Errorf("expected default limits, got %+v", cfg.Engine.Limits)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default logging level info, got %q", cfg.Logging.Level)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("expected default audit backend memory, got %q", cfg.Audit.Backend)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "no such file or directory") {
		t.Errorf("expected file not found error, got: %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfigFile(t, "logging:\n  level: [unclosed")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configPath := writeConfigFile(t, `
engine:
  limits:
    max_recursion_depth: -5

logging:
  level: "loud"
`)

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	configPath := writeConfigFile(t, `
logging:
  level: "info"

engine:
  limits:
    cache_capacity: 10
`)

	t.Setenv("ENCLAVE_LOGGING_LEVEL", "error")
	t.Setenv("ENCLAVE_ENGINE_CACHE_CAPACITY", "42")
	t.Setenv("ENCLAVE_AUDIT_ENABLED", "true")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "error" {
		t.Errorf("expected env-overridden level %q, got %q", "error", cfg.Logging.Level)
	}
	if cfg.Engine.Limits.CacheCapacity != 42 {
		t.Errorf("expected env-overridden cache capacity 42, got %d", cfg.Engine.Limits.CacheCapacity)
	}
	if !cfg.Audit.Enabled {
		t.Error("expected env-overridden audit.enabled true")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	configPath := writeConfigFile(t, "")

	t.Setenv("ENCLAVE_LOGGING_LEVEL", "silent")

	_, err := LoadConfigWithEnvOverrides(configPath)
	if err == nil {
		t.Fatal("expected validation error for invalid env override")
	}
}

func TestLoadConfigWithEnvOverrides_IgnoresMalformedValues(t *testing.T) {
	configPath := writeConfigFile(t, "")

	t.Setenv("ENCLAVE_ENGINE_CACHE_CAPACITY", "lots")
	t.Setenv("ENCLAVE_METRICS_ENABLED", "sure")

	cfg, err := LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.Limits.CacheCapacity != 100 {
		t.Errorf("expected default cache capacity 100, got %d", cfg.Engine.Limits.CacheCapacity)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics.enabled to stay false for unparseable value")
	}
}
