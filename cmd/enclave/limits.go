package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hexbind/enclave/pkg/cli"
)

var limitsFlags struct {
	format string
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show the effective resource ceilings",
	Long: `Show the resource ceilings the engine would run with, after applying
defaults, the configuration file, and ENCLAVE_* environment overrides.`,
	RunE: runLimits,
}

func init() {
	rootCmd.AddCommand(limitsCmd)

	limitsCmd.Flags().StringVar(&limitsFlags.format, "format", "text", "output format: text, json")
}

func runLimits(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limits := cfg.Engine.Limits

	if limitsFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, limits)
	}

	rows := []struct {
		name  string
		value int
	}{
		{"max_expression_length", limits.MaxExpressionLength},
		{"max_token_count", limits.MaxTokenCount},
		{"max_recursion_depth", limits.MaxRecursionDepth},
		{"cache_capacity", limits.CacheCapacity},
		{"max_evaluations_per_window", limits.MaxEvaluationsPerWindow},
		{"rate_limit_window_millis", limits.RateLimitWindowMillis},
		{"max_template_length", limits.MaxTemplateLength},
		{"max_placeholders", limits.MaxPlaceholders},
		{"max_sanitize_depth", limits.MaxSanitizeDepth},
		{"max_sanitize_keys", limits.MaxSanitizeKeys},
		{"max_array_index", limits.MaxArrayIndex},
		{"max_property_name_length", limits.MaxPropertyNameLength},
	}
	for _, row := range rows {
		fmt.Printf("%-28s %d\n", row.name, row.value)
	}
	return nil
}
