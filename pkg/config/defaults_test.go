package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine.Limits.MaxExpressionLength != 10000 {
		t.Errorf("expected max expression length 10000, got %d", cfg.Engine.Limits.MaxExpressionLength)
	}
	if cfg.Engine.Limits.CacheCapacity != 100 {
		t.Errorf("expected cache capacity 100, got %d", cfg.Engine.Limits.CacheCapacity)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected level info, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected format text, got %q", cfg.Logging.Format)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled by default")
	}
	if cfg.Audit.Enabled {
		t.Error("expected audit disabled by default")
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("expected audit backend memory, got %q", cfg.Audit.Backend)
	}
	if cfg.Audit.PruneSchedule != "0 3 * * *" {
		t.Errorf("expected default prune schedule, got %q", cfg.Audit.PruneSchedule)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "error"
	cfg.Audit.BufferSize = 16
	cfg.Engine.Limits.MaxTokenCount = 200

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "error" {
		t.Errorf("expected explicit level preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Audit.BufferSize != 16 {
		t.Errorf("expected explicit buffer size preserved, got %d", cfg.Audit.BufferSize)
	}
	if cfg.Engine.Limits.MaxTokenCount != 200 {
		t.Errorf("expected explicit token count preserved, got %d", cfg.Engine.Limits.MaxTokenCount)
	}
	// The remaining ceilings are filled in around the explicit one.
	if cfg.Engine.Limits.MaxRecursionDepth != 100 {
		t.Errorf("expected default recursion depth 100, got %d", cfg.Engine.Limits.MaxRecursionDepth)
	}
}
