// Package config provides configuration management for the expression engine.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ENCLAVE_SECTION_FIELD.
// For example:
//
//   - ENCLAVE_LOGGING_LEVEL overrides logging.level
//   - ENCLAVE_AUDIT_BACKEND overrides audit.backend
//   - ENCLAVE_ENGINE_CACHE_CAPACITY overrides engine.limits.cache_capacity
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// A Watcher can monitor the configuration file and invoke a callback when the
// file changes on disk. Rapid successive filesystem events are debounced so a
// single editor save triggers a single reload:
//
//	w, err := config.NewWatcher("config.yaml", logger, func(cfg *config.Config) {
//	    engine.ApplyLimits(cfg.Engine.Limits)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
// # Validation
//
// All configuration is validated automatically during loading. Every resource
// ceiling must be positive, the logging level and format must name supported
// values, and the audit section must describe a usable backend when enabled.
package config
