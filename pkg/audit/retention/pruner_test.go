package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hexbind/enclave/pkg/audit"
	"hexbind/enclave/pkg/audit/storage"
)

func seedRecords(t *testing.T, s audit.Storage, base time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		record := &audit.Record{
			ID:             fmt.Sprintf("r%d", i),
			RecordedAt:     base.Add(time.Duration(i) * time.Hour),
			Expression:     "x",
			ExpressionHash: "h",
			Outcome:        audit.OutcomeOK,
		}
		if err := s.Store(context.Background(), record); err != nil {
			t.Fatalf("store failed: %v", err)
		}
	}
}

func TestPruner_ByAge(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	// 5 records, one per day ending yesterday.
	for i := 0; i < 5; i++ {
		record := &audit.Record{
			ID:         fmt.Sprintf("r%d", i),
			RecordedAt: now.AddDate(0, 0, -(i + 1)),
			Outcome:    audit.OutcomeOK,
		}
		if err := s.Store(context.Background(), record); err != nil {
			t.Fatalf("store failed: %v", err)
		}
	}

	p := NewPruner(s, &Config{RetentionDays: 3}, nil)
	p.now = func() time.Time { return now }

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, _ := s.Count(context.Background(), &audit.Query{})
	if count != 3 {
		t.Errorf("expected 3 remaining, got %d", count)
	}
}

func TestPruner_ByCount(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedRecords(t, s, base, 10)

	p := NewPruner(s, &Config{MaxRecords: 6}, nil)

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 4 {
		t.Errorf("expected 4 deleted, got %d", deleted)
	}

	// The newest records survive.
	records, _ := s.Query(context.Background(), &audit.Query{})
	if len(records) != 6 {
		t.Fatalf("expected 6 remaining, got %d", len(records))
	}
	if records[0].ID != "r9" {
		t.Errorf("expected newest record kept, got %s", records[0].ID)
	}
	if records[len(records)-1].ID != "r4" {
		t.Errorf("expected oldest survivor r4, got %s", records[len(records)-1].ID)
	}
}

func TestPruner_UnderLimitsIsNoop(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	seedRecords(t, s, time.Now().Add(-time.Hour), 3)

	p := NewPruner(s, &Config{RetentionDays: 30, MaxRecords: 100}, nil)

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing deleted, got %d", deleted)
	}
}

func TestPruner_ZeroConfigDisablesPruning(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRecords(t, s, base, 5)

	p := NewPruner(s, &Config{}, nil)

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected zero config to disable pruning, got %d deleted", deleted)
	}
}

func TestPruner_SQLiteBackend(t *testing.T) {
	cfg := storage.DefaultSQLiteConfig()
	cfg.Path = t.TempDir() + "/audit.db"
	s, err := storage.NewSQLiteStorage(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create sqlite storage: %v", err)
	}
	defer s.Close()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedRecords(t, s, base, 8)

	p := NewPruner(s, &Config{MaxRecords: 5}, nil)

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	count, _ := s.Count(context.Background(), &audit.Query{})
	if count != 5 {
		t.Errorf("expected 5 remaining, got %d", count)
	}
}
