// Package logging builds structured loggers for the expression engine.
//
// Loggers are standard log/slog loggers configured from the logging section
// of the application configuration. Components receive child loggers tagged
// with a "component" attribute so log streams from the engine, the audit
// recorder, and the configuration watcher can be told apart.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"hexbind/enclave/pkg/config"
)

// Format is the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON, one record per line.
	FormatJSON Format = "json"
	// FormatText outputs logs as key=value text.
	FormatText Format = "text"
)

// New creates a structured logger from the logging configuration, writing
// to w. A nil writer defaults to os.Stderr.
func New(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), nil
}

// ForComponent returns a child logger tagged with the component name.
// A nil parent falls back to slog.Default.
func ForComponent(parent *slog.Logger, component string) *slog.Logger {
	if parent == nil {
		parent = slog.Default()
	}
	return parent.With("component", component)
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into Format.
func parseFormat(formatStr string) (Format, error) {
	switch formatStr {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}
