package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"hexbind/enclave/pkg/audit"
	auditstorage "hexbind/enclave/pkg/audit/storage"
	"hexbind/enclave/pkg/cli"
	"hexbind/enclave/pkg/config"
	"hexbind/enclave/pkg/expr/engine"
	"hexbind/enclave/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "enclave",
	Short: "Enclave - sandboxed expression engine",
	Long: `Enclave is a sandboxed expression engine for untrusted template expressions.

It evaluates arithmetic, logical, and member-access expressions against a
caller-supplied context, with a hard sandbox boundary:
  - No host globals, no function calls, no prototype access
  - Bounded expression length, token count, and recursion depth
  - Rate-limited evaluation with an LRU compile cache
  - Soft failure: missing context values degrade instead of raising`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file named by --config. A missing file
// is only an error when the flag was set explicitly; otherwise defaults
// apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if cmd.Flags().Changed("config") || cmd.InheritedFlags().Changed("config") {
			return nil, cli.NewConfigError("config", fmt.Sprintf("file %q not found", cfgFile))
		}
		return config.DefaultConfig(), nil
	}

	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// setupLogger builds the process logger. Verbose mode forces debug level.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg, os.Stderr)
}

// buildEngine constructs the expression engine from configuration. Metrics
// registration is only wired when enabled.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	engCfg := &engine.Config{
		Limits: cfg.Engine.Limits,
	}
	if cfg.Metrics.Enabled {
		engCfg.Registerer = prometheus.DefaultRegisterer
	}

	return engine.New(engCfg, logging.ForComponent(logger, "expr.engine"))
}

// openAuditStorage opens the configured audit backend.
func openAuditStorage(cfg *config.Config, logger *slog.Logger) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.Audit.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create audit directory: %w", err)
			}
		}
		sqliteCfg := auditstorage.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Audit.Path
		return auditstorage.NewSQLiteStorage(sqliteCfg, logger)
	default:
		return auditstorage.NewMemoryStorage(), nil
	}
}

// parseContext decodes the evaluation context from the --context and
// --context-file flags. The flags merge, with --context taking precedence
// on key collisions.
func parseContext(contextJSON, contextFile string) (map[string]any, error) {
	merged := map[string]any{}

	if contextFile != "" {
		data, err := os.ReadFile(contextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		if err := json.Unmarshal(data, &merged); err != nil {
			return nil, fmt.Errorf("invalid JSON in context file: %w", err)
		}
	}

	if contextJSON != "" {
		inline := map[string]any{}
		if err := json.Unmarshal([]byte(contextJSON), &inline); err != nil {
			return nil, fmt.Errorf("invalid context JSON: %w", err)
		}
		for k, v := range inline {
			merged[k] = v
		}
	}

	return merged, nil
}
