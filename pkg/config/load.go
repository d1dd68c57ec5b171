package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies default values, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// ENCLAVE_SECTION_FIELD (e.g. ENCLAVE_LOGGING_LEVEL) and always take
// precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies ENCLAVE_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("ENCLAVE_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("ENCLAVE_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("ENCLAVE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("ENCLAVE_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("ENCLAVE_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("ENCLAVE_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}

	overrideLimit := func(name string, target *int) {
		if val := os.Getenv(name); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*target = n
			}
		}
	}

	limits := &cfg.Engine.Limits
	overrideLimit("ENCLAVE_ENGINE_MAX_EXPRESSION_LENGTH", &limits.MaxExpressionLength)
	overrideLimit("ENCLAVE_ENGINE_MAX_TOKEN_COUNT", &limits.MaxTokenCount)
	overrideLimit("ENCLAVE_ENGINE_MAX_RECURSION_DEPTH", &limits.MaxRecursionDepth)
	overrideLimit("ENCLAVE_ENGINE_CACHE_CAPACITY", &limits.CacheCapacity)
	overrideLimit("ENCLAVE_ENGINE_MAX_EVALUATIONS_PER_WINDOW", &limits.MaxEvaluationsPerWindow)
	overrideLimit("ENCLAVE_ENGINE_RATE_LIMIT_WINDOW_MILLIS", &limits.RateLimitWindowMillis)
	overrideLimit("ENCLAVE_ENGINE_MAX_TEMPLATE_LENGTH", &limits.MaxTemplateLength)
	overrideLimit("ENCLAVE_ENGINE_MAX_PLACEHOLDERS", &limits.MaxPlaceholders)
}
