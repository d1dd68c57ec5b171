// Package storage provides audit trail storage backends: an in-memory store
// for tests and embedders that do not need persistence, and a SQLite store
// for durable audit trails.
package storage

import (
	"context"
	"sort"
	"sync"

	"hexbind/enclave/pkg/audit"
)

// MemoryStorage implements audit.Storage using an in-memory slice. Records
// survive only for the lifetime of the process.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*audit.Record
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists a record in memory.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records = append(s.records, &recordCopy)
	return nil
}

// Query retrieves records matching the filters, newest first. A nil query
// matches everything.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	if query == nil {
		query = &audit.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RecordedAt.After(results[j].RecordedAt)
	})

	start := query.Offset
	if start > len(results) {
		return []*audit.Record{}, nil
	}
	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end], nil
}

// Count returns the number of records matching the filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes records matching the filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*audit.Record
	var deleted int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept

	return deleted, nil
}

// Close releases resources. It is a no-op for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// matchesQuery reports whether a record passes every filter in the query.
func matchesQuery(record *audit.Record, query *audit.Query) bool {
	if query == nil {
		return true
	}
	if query.Since != nil && record.RecordedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && record.RecordedAt.After(*query.Until) {
		return false
	}
	if query.Outcome != "" && record.Outcome != query.Outcome {
		return false
	}
	if query.ExpressionHash != "" && record.ExpressionHash != query.ExpressionHash {
		return false
	}
	return true
}
