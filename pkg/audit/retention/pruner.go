// Package retention enforces retention policy on the audit trail: records
// past a configured age are deleted, and the total record count is capped.
// A cron-driven scheduler runs pruning in the background.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hexbind/enclave/pkg/audit"
	"hexbind/enclave/pkg/telemetry/logging"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain records.
	// 0 disables age-based pruning.
	RetentionDays int

	// MaxRecords is the maximum number of records to keep.
	// 0 disables the cap.
	MaxRecords int64

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the scheduler.
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		MaxRecords:    100000,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention policy on audit records.
type Pruner struct {
	storage audit.Storage
	config  *Config
	logger  *slog.Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewPruner creates a retention pruner.
func NewPruner(storage audit.Storage, config *Config, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	return &Pruner{
		storage: storage,
		config:  config,
		logger:  logging.ForComponent(logger, "audit.retention"),
		now:     time.Now,
	}
}

// Prune deletes records older than the retention period, then records past
// the count cap, oldest first. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted > 0 {
		p.logger.Info("audit pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.Delete(ctx, &audit.Query{Until: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted > 0 {
		p.logger.Debug("pruned records by age",
			"deleted_count", deleted,
			"cutoff_time", cutoff,
		)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest records if the total exceeds MaxRecords.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &audit.Query{})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}

	if count <= p.config.MaxRecords {
		return 0, nil
	}

	// Find the newest record that must go; everything at or before its
	// timestamp is deleted. Ties on the cutoff timestamp may remove a few
	// extra records, which retention tolerates.
	excess := int(count - p.config.MaxRecords)
	victims, err := p.storage.Query(ctx, &audit.Query{
		Offset: int(p.config.MaxRecords),
		Limit:  excess,
	})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}
	if len(victims) == 0 {
		return 0, nil
	}

	cutoff := victims[0].RecordedAt
	deleted, err := p.storage.Delete(ctx, &audit.Query{Until: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted > 0 {
		p.logger.Debug("pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}
	return deleted, nil
}
