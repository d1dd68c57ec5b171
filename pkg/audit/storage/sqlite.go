package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"hexbind/enclave/pkg/audit"
	"hexbind/enclave/pkg/telemetry/logging"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// schema creates the audit table and its indexes.
const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,
    expression TEXT NOT NULL,
    expression_hash TEXT NOT NULL,
    outcome TEXT NOT NULL,
    error TEXT,
    duration_micros INTEGER NOT NULL,
    cache_hit BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit_records(outcome);
CREATE INDEX IF NOT EXISTS idx_audit_expression_hash ON audit_records(expression_hash);
`

// NewSQLiteStorage creates a SQLite storage backend, initializing the schema
// and enabling WAL mode.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logging.ForComponent(logger, "audit.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize enables WAL mode, sets the busy timeout, and creates the schema.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return audit.NewStorageError("sqlite", "enable_wal", err)
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	return nil
}

// Store persists a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	const insert = `
INSERT INTO audit_records (id, recorded_at, expression, expression_hash, outcome, error, duration_micros, cache_hit)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, insert,
		record.ID,
		record.RecordedAt.UTC(),
		record.Expression,
		record.ExpressionHash,
		record.Outcome,
		record.Error,
		record.Duration.Microseconds(),
		record.CacheHit,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves records matching the filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	where, args := buildWhere(query)

	q := "SELECT id, recorded_at, expression, expression_hash, outcome, error, duration_micros, cache_hit FROM audit_records" +
		where + " ORDER BY recorded_at DESC"
	if query != nil && query.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, query.Limit, query.Offset)
	} else if query != nil && query.Offset > 0 {
		q += " LIMIT -1 OFFSET ?"
		args = append(args, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var results []*audit.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return results, nil
}

// Count returns the number of records matching the filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	where, args := buildWhere(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records"+where, args...).Scan(&count)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes records matching the filters.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	where, args := buildWhere(query)

	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_records"+where, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	return deleted, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhere translates query filters into a WHERE clause and arguments.
func buildWhere(query *audit.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var conds []string
	var args []any

	if query.Since != nil {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, query.Since.UTC())
	}
	if query.Until != nil {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, query.Until.UTC())
	}
	if query.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, query.Outcome)
	}
	if query.ExpressionHash != "" {
		conds = append(conds, "expression_hash = ?")
		args = append(args, query.ExpressionHash)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanRecord reads one row into a Record.
func scanRecord(rows *sql.Rows) (*audit.Record, error) {
	var record audit.Record
	var durationMicros int64

	err := rows.Scan(
		&record.ID,
		&record.RecordedAt,
		&record.Expression,
		&record.ExpressionHash,
		&record.Outcome,
		&record.Error,
		&durationMicros,
		&record.CacheHit,
	)
	if err != nil {
		return nil, err
	}

	record.Duration = time.Duration(durationMicros) * time.Microsecond
	return &record, nil
}
