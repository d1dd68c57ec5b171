package config

import "hexbind/enclave/pkg/expr"

// DefaultConfig returns a configuration with every field set to its
// default.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any unset field. Explicitly
// configured values are left untouched.
func ApplyDefaults(cfg *Config) {
	zero := expr.Limits{}
	if cfg.Engine.Limits == zero {
		cfg.Engine.Limits = expr.DefaultLimits()
	} else {
		applyLimitDefaults(&cfg.Engine.Limits)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "memory"
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/audit.db"
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = 1000
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = 30
	}
	if cfg.Audit.MaxRecords == 0 {
		cfg.Audit.MaxRecords = 100000
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = "0 3 * * *"
	}
}

// applyLimitDefaults fills in defaults for individual unset ceilings, so a
// config file can override a subset of limits without restating the rest.
func applyLimitDefaults(l *expr.Limits) {
	defaults := expr.DefaultLimits()

	if l.MaxExpressionLength == 0 {
		l.MaxExpressionLength = defaults.MaxExpressionLength
	}
	if l.MaxTokenCount == 0 {
		l.MaxTokenCount = defaults.MaxTokenCount
	}
	if l.MaxRecursionDepth == 0 {
		l.MaxRecursionDepth = defaults.MaxRecursionDepth
	}
	if l.CacheCapacity == 0 {
		l.CacheCapacity = defaults.CacheCapacity
	}
	if l.MaxEvaluationsPerWindow == 0 {
		l.MaxEvaluationsPerWindow = defaults.MaxEvaluationsPerWindow
	}
	if l.RateLimitWindowMillis == 0 {
		l.RateLimitWindowMillis = defaults.RateLimitWindowMillis
	}
	if l.MaxTemplateLength == 0 {
		l.MaxTemplateLength = defaults.MaxTemplateLength
	}
	if l.MaxPlaceholders == 0 {
		l.MaxPlaceholders = defaults.MaxPlaceholders
	}
	if l.MaxSanitizeDepth == 0 {
		l.MaxSanitizeDepth = defaults.MaxSanitizeDepth
	}
	if l.MaxSanitizeKeys == 0 {
		l.MaxSanitizeKeys = defaults.MaxSanitizeKeys
	}
	if l.MaxArrayIndex == 0 {
		l.MaxArrayIndex = defaults.MaxArrayIndex
	}
	if l.MaxPropertyNameLength == 0 {
		l.MaxPropertyNameLength = defaults.MaxPropertyNameLength
	}
}
