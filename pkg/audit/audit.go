// Package audit defines the record type and storage contract for the
// evaluation audit trail.
//
// Every expression evaluation can be recorded: what ran (as a redacted
// source and a content hash, never the raw context), how it ended, and how
// long it took. Records are written asynchronously by the recorder
// subpackage and stored by a pluggable backend from the storage subpackage.
// The retention subpackage prunes old records on a schedule.
package audit

import (
	"context"
	"time"
)

// Evaluation outcomes recorded in the audit trail.
const (
	OutcomeOK             = "ok"
	OutcomeSyntax         = "syntax"
	OutcomeSecurity       = "security"
	OutcomeResourceLimit  = "resource_limit"
	OutcomeDivisionByZero = "division_by_zero"
	OutcomeRateLimited    = "rate_limited"
)

// Record is one audited expression evaluation.
type Record struct {
	// ID is a UUID v4 assigned by the recorder.
	ID string `json:"id"`

	// RecordedAt is when the evaluation finished.
	RecordedAt time.Time `json:"recorded_at"`

	// Expression is the expression source with string literal contents
	// masked. Context values never reach the audit trail.
	Expression string `json:"expression"`

	// ExpressionHash is the hex-encoded SHA-256 of the full, unredacted
	// source. Identical expressions hash identically, which makes hot
	// expressions and repeated probe attempts easy to group.
	ExpressionHash string `json:"expression_hash"`

	// Outcome is one of the Outcome* constants.
	Outcome string `json:"outcome"`

	// Error is the evaluation error message, empty on success.
	Error string `json:"error,omitempty"`

	// Duration is how long the evaluation took.
	Duration time.Duration `json:"duration"`

	// CacheHit reports whether the compiled expression came from the cache.
	CacheHit bool `json:"cache_hit"`
}

// Query defines filter parameters for reading the audit trail.
type Query struct {
	// Since and Until bound RecordedAt inclusively. Nil means unbounded.
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	// Outcome filters by outcome. Empty matches all outcomes.
	Outcome string `json:"outcome,omitempty"`

	// ExpressionHash filters by expression hash.
	ExpressionHash string `json:"expression_hash,omitempty"`

	// Limit and Offset paginate results ordered by RecordedAt descending.
	// A zero Limit returns everything.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage is the contract for audit trail backends. Implementations must be
// safe for concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how many
	// were removed. Retention pruning is built on this.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}
