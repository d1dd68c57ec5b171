package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "engine.limits.cache_capacity").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateEngine validates engine configuration.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	limits := []struct {
		field string
		value int
	}{
		{"max_expression_length", cfg.Limits.MaxExpressionLength},
		{"max_token_count", cfg.Limits.MaxTokenCount},
		{"max_recursion_depth", cfg.Limits.MaxRecursionDepth},
		{"cache_capacity", cfg.Limits.CacheCapacity},
		{"max_evaluations_per_window", cfg.Limits.MaxEvaluationsPerWindow},
		{"rate_limit_window_millis", cfg.Limits.RateLimitWindowMillis},
		{"max_template_length", cfg.Limits.MaxTemplateLength},
		{"max_placeholders", cfg.Limits.MaxPlaceholders},
		{"max_sanitize_depth", cfg.Limits.MaxSanitizeDepth},
		{"max_sanitize_keys", cfg.Limits.MaxSanitizeKeys},
		{"max_array_index", cfg.Limits.MaxArrayIndex},
		{"max_property_name_length", cfg.Limits.MaxPropertyNameLength},
	}
	for _, l := range limits {
		if l.value <= 0 {
			errs = append(errs, FieldError{
				Field:   "engine.limits." + l.field,
				Message: "must be positive",
			})
		}
	}

	// Guard against ceilings large enough to defeat their purpose.
	if cfg.Limits.MaxExpressionLength > 1_000_000 {
		errs = append(errs, FieldError{
			Field:   "engine.limits.max_expression_length",
			Message: "exceeds reasonable limit (1000000)",
		})
	}
	if cfg.Limits.MaxRecursionDepth > 10_000 {
		errs = append(errs, FieldError{
			Field:   "engine.limits.max_recursion_depth",
			Message: "exceeds reasonable limit (10000)",
		})
	}

	return errs
}

// validateLogging validates logging configuration.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q (must be one of: debug, info, warn, error)", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q (must be one of: json, text)", cfg.Format),
		})
	}

	return errs
}

// validateAudit validates audit trail configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend %q (must be one of: memory, sqlite)", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.path",
			Message: "database path is required for the sqlite backend",
		})
	}

	if cfg.BufferSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "audit.buffer_size",
			Message: "buffer size must be positive",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.max_records",
			Message: "max records must be non-negative",
		})
	}

	return errs
}
