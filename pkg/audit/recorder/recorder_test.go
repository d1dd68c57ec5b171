package recorder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"hexbind/enclave/pkg/audit"
	"hexbind/enclave/pkg/audit/storage"
)

func waitForCount(t *testing.T, store audit.Storage, want int64) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, err := store.Count(context.Background(), &audit.Query{})
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d stored records", want)
}

func TestRecorder_ObserveStoresRecord(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, nil, nil)
	defer rec.Close()

	rec.Observe("count + 1", audit.OutcomeOK, nil, 42*time.Microsecond, true)
	waitForCount(t, store, 1)

	records, err := store.Query(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	record := records[0]

	if record.ID == "" {
		t.Error("expected a generated record ID")
	}
	if record.Expression != "count + 1" {
		t.Errorf("unexpected expression: %q", record.Expression)
	}
	if record.ExpressionHash != HashString("count + 1") {
		t.Errorf("unexpected hash: %q", record.ExpressionHash)
	}
	if record.Outcome != audit.OutcomeOK {
		t.Errorf("unexpected outcome: %q", record.Outcome)
	}
	if record.Error != "" {
		t.Errorf("expected empty error, got %q", record.Error)
	}
	if record.Duration != 42*time.Microsecond {
		t.Errorf("unexpected duration: %v", record.Duration)
	}
	if !record.CacheHit {
		t.Error("expected cache hit recorded")
	}
}

func TestRecorder_RedactsStringLiterals(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, nil, nil)
	defer rec.Close()

	rec.Observe("name == 'alice'", audit.OutcomeOK, nil, time.Microsecond, false)
	waitForCount(t, store, 1)

	records, _ := store.Query(context.Background(), &audit.Query{})
	if strings.Contains(records[0].Expression, "alice") {
		t.Errorf("expected literal masked, got %q", records[0].Expression)
	}
	// The hash still covers the unredacted source.
	if records[0].ExpressionHash != HashString("name == 'alice'") {
		t.Error("expected hash of unredacted source")
	}
}

func TestRecorder_RecordsError(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, nil, nil)
	defer rec.Close()

	rec.Observe("5 / 0", audit.OutcomeDivisionByZero, errors.New("division by zero"), time.Microsecond, false)
	waitForCount(t, store, 1)

	records, _ := store.Query(context.Background(), &audit.Query{})
	if records[0].Error != "division by zero" {
		t.Errorf("unexpected error message: %q", records[0].Error)
	}
}

func TestRecorder_DisabledDiscards(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, &Config{Enabled: false, BufferSize: 10, WriteTimeout: time.Second}, nil)

	rec.Observe("1 + 1", audit.OutcomeOK, nil, time.Microsecond, false)
	rec.Close()

	count, err := store.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no records from disabled recorder, got %d", count)
	}
}

func TestRecorder_CloseDrainsChannel(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, nil, nil)

	for i := 0; i < 20; i++ {
		rec.Observe("1 + 1", audit.OutcomeOK, nil, time.Microsecond, i > 0)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	count, err := store.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 20 {
		t.Errorf("expected all 20 records stored after close, got %d", count)
	}
}

func TestHashString(t *testing.T) {
	if HashString("") != "" {
		t.Error("expected empty hash for empty input")
	}
	if HashString("a + b") == "" {
		t.Error("expected non-empty hash")
	}
	if HashString("a + b") != HashString("a + b") {
		t.Error("expected stable hash")
	}
	if HashString("a + b") == HashString("a + c") {
		t.Error("expected distinct hashes for distinct inputs")
	}
	if len(HashString("x")) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(HashString("x")))
	}
}

type failingStorage struct{}

func (f *failingStorage) Store(ctx context.Context, record *audit.Record) error {
	return errors.New("disk full")
}

func (f *failingStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	return nil, nil
}

func (f *failingStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	return 0, nil
}

func (f *failingStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	return 0, nil
}

func (f *failingStorage) Close() error { return nil }

func TestRecorder_StorageFailureLogsRecordID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rec := New(&failingStorage{}, nil, logger)
	rec.Observe("1 + 1", audit.OutcomeOK, nil, time.Microsecond, false)
	rec.Close()

	out := buf.String()
	if !strings.Contains(out, "failed to store audit record") {
		t.Fatalf("expected write failure logged, got %q", out)
	}
	if !strings.Contains(out, "recorder error [record_id=") {
		t.Errorf("expected recorder error carrying the record id, got %q", out)
	}
}
