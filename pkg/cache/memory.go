package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-process Store with TTL and LRU eviction.
// Entries expire lazily: an expired entry is evicted when accessed. An
// optional background sweeper bounds how long expired entries linger when
// nothing reads them.
type MemoryStore struct {
	// entries maps fingerprints to stored entries
	entries map[string]*memoryEntry

	// maxEntries is the maximum number of entries (0 = unlimited)
	maxEntries int

	// mu protects concurrent access to the store
	mu sync.RWMutex

	// stopCh signals the sweeper goroutine to stop
	stopCh chan struct{}

	sweeping  bool
	closeOnce sync.Once
}

// memoryEntry wraps an Entry with access bookkeeping for LRU eviction.
type memoryEntry struct {
	entry          *Entry
	lastAccessedAt time.Time
}

// NewMemoryStore creates an in-process store.
// If maxEntries is 0, the store has unlimited size.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}
}

// StartSweeper starts a background goroutine that periodically removes
// expired entries. It runs until the store is closed or ctx is cancelled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	s.mu.Lock()
	s.sweeping = true
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.removeExpired()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Get returns the unexpired entry for key. Expired entries are evicted on
// access and reported as absent.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	s.mu.RLock()
	me, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if me.entry.Expired(time.Now()) {
		// Lazy eviction on access
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && current == me {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	s.mu.Lock()
	// Re-check: the entry may have been cleared between locks
	if current, ok := s.entries[key]; ok && current == me {
		me.lastAccessedAt = time.Now()
	}
	s.mu.Unlock()

	return me.entry, true, nil
}

// Set stores an entry, evicting the least recently used entry when the
// store is full. The ttl argument is carried in the entry itself; the
// store only enforces it on access and sweep.
func (s *MemoryStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		if _, exists := s.entries[key]; !exists {
			s.evictLRU()
		}
	}

	s.entries[key] = &memoryEntry{
		entry:          entry,
		lastAccessedAt: time.Now(),
	}
	return nil
}

// Delete removes an entry.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Clear removes all entries.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*memoryEntry)
	return nil
}

// ClearScope removes all entries tagged with scope.
func (s *MemoryStore) ClearScope(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, me := range s.entries {
		if me.entry.Scope == scope {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len returns the current number of entries, including expired entries not
// yet swept.
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries), nil
}

// Close stops the sweeper goroutine. After Close the store should not be
// used.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})
	return nil
}

// evictLRU evicts the least recently accessed entry.
// Must be called with write lock held.
func (s *MemoryStore) evictLRU() {
	if len(s.entries) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time

	for key, me := range s.entries {
		if oldestKey == "" || me.lastAccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = me.lastAccessedAt
		}
	}

	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// removeExpired removes all expired entries.
func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, me := range s.entries {
		if me.entry.Expired(now) {
			delete(s.entries, key)
		}
	}
}
