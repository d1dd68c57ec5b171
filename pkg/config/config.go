package config

import "hexbind/enclave/pkg/expr"

// Config is the root configuration structure for the Enclave expression
// engine. It covers the engine's resource ceilings, logging, metrics, and
// the optional evaluation audit trail.
type Config struct {
	// Engine contains the expression engine resource ceilings.
	Engine EngineConfig `yaml:"engine"`

	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Audit contains configuration for the evaluation audit trail.
	Audit AuditConfig `yaml:"audit"`
}

// EngineConfig contains the expression engine resource ceilings.
type EngineConfig struct {
	// Limits are the structural ceilings enforced on every evaluation:
	// expression length, token count, recursion depth, cache capacity,
	// rate limit, template length, placeholder count, sanitization bounds,
	// array index range, and property-name length.
	Limits expr.Limits `yaml:"limits"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line information in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether engine metrics are registered with the
	// default Prometheus registry.
	// Default: false
	Enabled bool `yaml:"enabled"`
}

// AuditConfig contains configuration for the evaluation audit trail.
type AuditConfig struct {
	// Enabled controls whether evaluations are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path when Backend is "sqlite".
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BufferSize is the async record channel buffer size.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// RetentionDays is how long audit records are kept before the
	// scheduled pruner removes them. Zero disables age-based pruning.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the total number of stored records; the pruner
	// removes the oldest records past the cap. Zero disables the cap.
	// Default: 100000
	MaxRecords int `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning.
	// Empty disables the scheduler.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}
