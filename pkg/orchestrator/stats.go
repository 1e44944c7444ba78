package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"
)

// AtomicStats implements thread-safe orchestration statistics using atomic
// operations. All counters are updated atomically for lock-free updates on
// the request path.
type AtomicStats struct {
	// totalRequests is the total number of generate calls processed
	totalRequests atomic.Int64

	// cacheHits is the number of requests served from cache
	cacheHits atomic.Int64

	// cacheMisses is the number of requests that missed the cache
	cacheMisses atomic.Int64

	// fallbacks is the number of times a request moved past its first
	// candidate provider
	fallbacks atomic.Int64

	// failures is the number of generate calls that returned a failure
	failures atomic.Int64

	// requestsPerProvider tracks attempts routed to each provider
	// Uses sync.Map for thread-safe concurrent access
	requestsPerProvider sync.Map // map[string]*atomic.Int64

	// lastResetTime is when statistics were last reset
	lastResetTime time.Time

	// mu protects lastResetTime
	mu sync.RWMutex
}

// Stats is a point-in-time snapshot of orchestration statistics, safe to
// read without locks.
type Stats struct {
	// TotalRequests is the total number of generate calls processed.
	TotalRequests int64 `json:"total_requests"`

	// CacheHits is the number of requests served from cache.
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of requests that missed the cache.
	CacheMisses int64 `json:"cache_misses"`

	// Fallbacks is the number of times a request moved past its first
	// candidate provider.
	Fallbacks int64 `json:"fallbacks"`

	// Failures is the number of generate calls that returned a failure.
	Failures int64 `json:"failures"`

	// RequestsPerProvider tracks attempts routed to each provider.
	RequestsPerProvider map[string]int64 `json:"requests_per_provider"`

	// LastResetTime is when statistics were last reset.
	LastResetTime time.Time `json:"last_reset_time"`
}

// NewAtomicStats creates a new statistics tracker.
func NewAtomicStats() *AtomicStats {
	return &AtomicStats{
		lastResetTime: time.Now(),
	}
}

// IncrementTotal increments the total request counter.
func (s *AtomicStats) IncrementTotal() {
	s.totalRequests.Add(1)
}

// IncrementCacheHits increments the cache hit counter.
func (s *AtomicStats) IncrementCacheHits() {
	s.cacheHits.Add(1)
}

// IncrementCacheMisses increments the cache miss counter.
func (s *AtomicStats) IncrementCacheMisses() {
	s.cacheMisses.Add(1)
}

// IncrementFallbacks increments the fallback counter.
func (s *AtomicStats) IncrementFallbacks() {
	s.fallbacks.Add(1)
}

// IncrementFailures increments the failed-request counter.
func (s *AtomicStats) IncrementFailures() {
	s.failures.Add(1)
}

// IncrementProvider increments the attempt counter for a specific provider.
func (s *AtomicStats) IncrementProvider(providerID string) {
	val, _ := s.requestsPerProvider.LoadOrStore(providerID, &atomic.Int64{})
	counter := val.(*atomic.Int64)
	counter.Add(1)
}

// Snapshot returns a point-in-time snapshot of the statistics.
func (s *AtomicStats) Snapshot() *Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	providerRequests := make(map[string]int64)
	s.requestsPerProvider.Range(func(key, value interface{}) bool {
		providerRequests[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return &Stats{
		TotalRequests:       s.totalRequests.Load(),
		CacheHits:           s.cacheHits.Load(),
		CacheMisses:         s.cacheMisses.Load(),
		Fallbacks:           s.fallbacks.Load(),
		Failures:            s.failures.Load(),
		RequestsPerProvider: providerRequests,
		LastResetTime:       s.lastResetTime,
	}
}

// Reset resets all statistics to zero.
func (s *AtomicStats) Reset() {
	s.totalRequests.Store(0)
	s.cacheHits.Store(0)
	s.cacheMisses.Store(0)
	s.fallbacks.Store(0)
	s.failures.Store(0)

	s.requestsPerProvider.Range(func(key, value interface{}) bool {
		s.requestsPerProvider.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastResetTime = time.Now()
	s.mu.Unlock()
}
