// Package storage provides usage storage backends: an in-memory map for
// tests and development, and SQLite for persistence.
package storage

import (
	"context"
	"sort"
	"sync"

	"mercator-hq/ganymede/pkg/usage"
)

// MemoryStorage implements usage.Storage using an in-memory map. Intended
// for tests and development; records do not survive a restart.
type MemoryStorage struct {
	records map[string]*usage.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*usage.Record),
	}
}

// Store persists a usage record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *usage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to keep later caller mutations out of the store
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves usage records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *usage.Query) ([]*usage.Record, error) {
	s.mu.RLock()
	results := s.collect(query)
	s.mu.RUnlock()

	sortRecords(results, query)

	start := query.Offset
	if start > len(results) {
		return []*usage.Record{}, nil
	}
	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end], nil
}

// QueryStream returns matching records over a channel. The memory backend
// materializes the result set first; streaming exists to satisfy the
// Storage interface with the same semantics as SQLite.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *usage.Query) (<-chan *usage.Record, <-chan error, error) {
	recordsCh := make(chan *usage.Record, 100)
	errCh := make(chan error, 1)

	results, err := s.Query(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, record := range results {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *usage.Query) (int64, error) {
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

// Delete removes records matching the query filters and returns how many
// were removed.
func (s *MemoryStorage) Delete(ctx context.Context, query *usage.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases resources. A no-op for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// collect returns copies of all matching records. Caller holds the lock.
func (s *MemoryStorage) collect(query *usage.Query) []*usage.Record {
	var results []*usage.Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	return results
}

func matchesQuery(record *usage.Record, query *usage.Query) bool {
	if query == nil {
		return true
	}
	if query.StartTime != nil && record.Time.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Time.After(*query.EndTime) {
		return false
	}
	if query.Provider != "" && record.Provider != query.Provider {
		return false
	}
	if query.Model != "" && record.Model != query.Model {
		return false
	}
	if query.Status != "" && record.Status != query.Status {
		return false
	}
	if query.Scope != "" && record.Scope != query.Scope {
		return false
	}
	if query.Cached != nil && record.Cached != *query.Cached {
		return false
	}
	if query.MinTokens != nil && record.TokensUsed < *query.MinTokens {
		return false
	}
	if query.MaxTokens != nil && record.TokensUsed > *query.MaxTokens {
		return false
	}
	return true
}

func sortRecords(records []*usage.Record, query *usage.Query) {
	asc := query.SortOrder == "asc"

	var less func(a, b *usage.Record) bool
	switch query.SortBy {
	case "tokens":
		less = func(a, b *usage.Record) bool { return a.TokensUsed < b.TokensUsed }
	case "response_time":
		less = func(a, b *usage.Record) bool { return a.ResponseTime < b.ResponseTime }
	default:
		less = func(a, b *usage.Record) bool { return a.Time.Before(b.Time) }
	}

	sort.Slice(records, func(i, j int) bool {
		if asc {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}
