package retention

import (
	"context"
	"testing"
	"time"

	"hexbind/enclave/pkg/audit/storage"
)

func TestScheduler_EmptyScheduleIsNoop(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	p := NewPruner(s, &Config{RetentionDays: 30, PruneSchedule: ""}, nil)
	sched := NewScheduler(p, nil)

	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if sched.IsRunning() {
		t.Error("expected scheduler not running with empty schedule")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	p := NewPruner(s, &Config{PruneSchedule: "not a cron expression"}, nil)
	sched := NewScheduler(p, nil)

	if err := sched.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestScheduler_StartAndStop(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	p := NewPruner(s, &Config{RetentionDays: 30, PruneSchedule: "0 3 * * *"}, nil)
	sched := NewScheduler(p, nil)

	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Error("expected scheduler running")
	}

	next := sched.NextRun()
	if next == nil {
		t.Fatal("expected a scheduled next run")
	}
	if !next.After(time.Now()) {
		t.Errorf("expected next run in the future, got %v", next)
	}

	sched.Stop()
	if sched.IsRunning() {
		t.Error("expected scheduler stopped")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	p := NewPruner(s, &Config{RetentionDays: 30, PruneSchedule: "0 3 * * *"}, nil)
	sched := NewScheduler(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !sched.IsRunning() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected scheduler to stop after context cancel")
}
