// Package recorder builds audit records from evaluation results and writes
// them to storage asynchronously, so recording never blocks an evaluation.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hexbind/enclave/pkg/audit"
	"hexbind/enclave/pkg/telemetry/logging"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording. A disabled recorder accepts
	// observations and discards them.
	Enabled bool

	// BufferSize is the size of the async write channel buffer.
	// Default: 1000
	BufferSize int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder records expression evaluations to an audit trail. Records are
// enqueued on a buffered channel and written by a background worker; a full
// channel drops the record rather than stalling the caller.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	recordChan chan *audit.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// New creates an audit recorder with the provided storage backend.
func New(storage audit.Storage, config *Config, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *audit.Record, config.BufferSize),
		done:       make(chan struct{}),
		logger:     logging.ForComponent(logger, "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"enabled", config.Enabled,
		"buffer_size", config.BufferSize,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Observe records one finished evaluation. The expression source is hashed
// in full and stored redacted; err may be nil. Observe returns immediately
// and never blocks on storage.
func (r *Recorder) Observe(expression, outcome string, err error, duration time.Duration, cacheHit bool) {
	if !r.config.Enabled {
		return
	}

	record := &audit.Record{
		ID:             uuid.NewString(),
		RecordedAt:     time.Now(),
		Expression:     logging.RedactExpression(expression),
		ExpressionHash: HashString(expression),
		Outcome:        outcome,
		Duration:       duration,
		CacheHit:       cacheHit,
	}
	if err != nil {
		record.Error = err.Error()
	}

	select {
	case r.recordChan <- record:
	default:
		r.logger.Warn("audit channel full, dropping record",
			"record_id", record.ID,
			"channel_capacity", r.config.BufferSize,
		)
	}
}

// Close shuts down the recorder, draining the channel and waiting for
// pending writes to complete.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()

	r.logger.Info("audit recorder shut down")
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"error", audit.NewRecorderError(record.ID, err),
		)
		return
	}

	r.logger.Debug("audit record stored",
		"record_id", record.ID,
		"outcome", record.Outcome,
	)
}
