//go:build integration

package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hexbind/enclave/pkg/audit"
	auditrecorder "hexbind/enclave/pkg/audit/recorder"
	auditstorage "hexbind/enclave/pkg/audit/storage"
	"hexbind/enclave/pkg/audit/retention"
	"hexbind/enclave/pkg/config"
	"hexbind/enclave/pkg/expr/engine"
	exprErrors "hexbind/enclave/pkg/expr/errors"
	"hexbind/enclave/pkg/expr/interp"
	"hexbind/enclave/pkg/telemetry/logging"
)

// TestFullStack exercises the whole pipeline in-process: configuration,
// logging, engine, interpolation, and a SQLite-backed audit trail with
// retention pruning.
func TestFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := config.DefaultConfig()
	logger, err := logging.New(cfg.Logging, nil)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	eng, err := engine.New(&engine.Config{Limits: cfg.Engine.Limits}, logger)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	sqliteCfg := auditstorage.DefaultSQLiteConfig()
	sqliteCfg.Path = filepath.Join(t.TempDir(), "audit.db")
	store, err := auditstorage.NewSQLiteStorage(sqliteCfg, logger)
	if err != nil {
		t.Fatalf("failed to create audit storage: %v", err)
	}
	defer store.Close()

	recorder := auditrecorder.New(store, nil, logger)

	evalCtx := map[string]any{
		"user": map[string]any{"name": "Ada", "score": 42.0},
	}

	evaluations := []string{
		"user.score > 40 ? 'high' : 'low'",
		"user.name || 'anonymous'",
		"window.location",
		"5 / 0",
	}
	for _, source := range evaluations {
		start := time.Now()
		_, evalErr := eng.Evaluate(source, evalCtx)
		outcome := audit.OutcomeOK
		if evalErr != nil {
			outcome = string(exprErrors.TypeOf(evalErr))
		}
		recorder.Observe(source, outcome, evalErr, time.Since(start), false)
	}

	interpolator := interp.New(eng, logger)
	rendered := interpolator.Interpolate("{{ user.name }}: {{ user.score }}", evalCtx)
	if rendered != "Ada: 42" {
		t.Errorf("unexpected render: %q", rendered)
	}

	// Drain the async recorder before reading the trail.
	if err := recorder.Close(); err != nil {
		t.Fatalf("failed to close recorder: %v", err)
	}

	ctx := context.Background()
	total, err := store.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != int64(len(evaluations)) {
		t.Fatalf("expected %d audit records, got %d", len(evaluations), total)
	}

	securityCount, err := store.Count(ctx, &audit.Query{Outcome: audit.OutcomeSecurity})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if securityCount != 1 {
		t.Errorf("expected 1 security record, got %d", securityCount)
	}

	pruner := retention.NewPruner(store, &retention.Config{MaxRecords: 2}, logger)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 pruned, got %d", deleted)
	}
}
