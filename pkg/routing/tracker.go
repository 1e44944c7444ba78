// Package routing tracks per-provider health statistics and builds the
// candidate order used for provider selection and fallback.
//
// The package operates on provider identifiers only. Adapter instances are
// owned by the orchestrator; routing decisions never touch the network.
package routing

import (
	"math"
	"sort"
	"sync"
	"time"
)

// HealthRecord is a point-in-time snapshot of one provider's statistics.
type HealthRecord struct {
	// ProviderID identifies the provider.
	ProviderID string `json:"provider_id"`

	// TotalRequests is the number of recorded invocation attempts.
	TotalRequests int64 `json:"total_requests"`

	// TotalSuccesses is the number of successful attempts.
	TotalSuccesses int64 `json:"total_successes"`

	// TotalFailures is the number of failed attempts.
	TotalFailures int64 `json:"total_failures"`

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int `json:"consecutive_failures"`

	// AverageResponseTime is the mean latency over successful attempts only.
	AverageResponseTime time.Duration `json:"average_response_time"`

	// SuccessRate is TotalSuccesses / TotalRequests, or 1.0 when the
	// provider has never been called.
	SuccessRate float64 `json:"success_rate"`

	// LastUsedAt is when the provider was last attempted.
	LastUsedAt time.Time `json:"last_used_at"`
}

// healthRecord is the mutable per-provider state behind the tracker's lock.
type healthRecord struct {
	totalRequests       int64
	totalSuccesses      int64
	totalFailures       int64
	consecutiveFailures int

	// successDuration accumulates latency of successful attempts so the
	// average is exact rather than a decaying approximation
	successDuration time.Duration

	lastUsedAt time.Time
	regIndex   int
}

func (r *healthRecord) successRate() float64 {
	if r.totalRequests == 0 {
		return 1.0
	}
	return float64(r.totalSuccesses) / float64(r.totalRequests)
}

func (r *healthRecord) averageResponseTime() time.Duration {
	if r.totalSuccesses == 0 {
		return 0
	}
	return r.successDuration / time.Duration(r.totalSuccesses)
}

// HealthTracker maintains rolling statistics per provider and ranks
// providers for selection. All methods are safe for concurrent use.
//
// Statistics live in memory only and reset on process restart.
type HealthTracker struct {
	mu      sync.RWMutex
	records map[string]*healthRecord
	order   []string
}

// NewHealthTracker creates an empty tracker.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		records: make(map[string]*healthRecord),
	}
}

// Register adds a provider to the tracker. Registration order is the
// final ranking tie-break, so providers should be registered in the order
// they were configured. Registering an existing provider is a no-op.
func (t *HealthTracker) Register(providerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.registerLocked(providerID)
}

func (t *HealthTracker) registerLocked(providerID string) *healthRecord {
	if r, ok := t.records[providerID]; ok {
		return r
	}
	r := &healthRecord{regIndex: len(t.order)}
	t.records[providerID] = r
	t.order = append(t.order, providerID)
	return r
}

// Registered returns the provider IDs in registration order.
func (t *HealthTracker) Registered() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Record updates a provider's statistics after one invocation attempt.
// A success resets the consecutive-failure count and contributes elapsed
// to the average response time; a failure increments it. Unregistered
// providers are registered on first record.
func (t *HealthTracker) Record(providerID string, success bool, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.registerLocked(providerID)
	r.totalRequests++
	r.lastUsedAt = time.Now()

	if success {
		r.totalSuccesses++
		r.consecutiveFailures = 0
		r.successDuration += elapsed
	} else {
		r.totalFailures++
		r.consecutiveFailures++
	}
}

// SuccessRate returns the provider's success fraction. Providers with no
// recorded requests return 1.0 so that unvisited providers are not
// penalized in ranking.
func (t *HealthTracker) SuccessRate(providerID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.records[providerID]
	if !ok {
		return 1.0
	}
	return r.successRate()
}

// IsHealthy reports whether the provider is below the consecutive-failure
// threshold. Unknown providers are healthy. A non-positive threshold
// disables the check.
func (t *HealthTracker) IsHealthy(providerID string, threshold int) bool {
	if threshold <= 0 {
		return true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.records[providerID]
	if !ok {
		return true
	}
	return r.consecutiveFailures < threshold
}

// Rank orders candidates by descending success rate, then by lower average
// response time, then by registration order. The order is deterministic:
// two never-called providers rank in registration order.
//
// Rank does not filter by health; callers decide how to treat unhealthy
// providers.
func (t *HealthTracker) Rank(candidates []string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	type rankedProvider struct {
		id       string
		rate     float64
		avg      time.Duration
		regIndex int
	}

	ranked := make([]rankedProvider, 0, len(candidates))
	for _, id := range candidates {
		rp := rankedProvider{id: id, rate: 1.0, regIndex: math.MaxInt}
		if r, ok := t.records[id]; ok {
			rp.rate = r.successRate()
			rp.avg = r.averageResponseTime()
			rp.regIndex = r.regIndex
		}
		ranked = append(ranked, rp)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].rate != ranked[j].rate {
			return ranked[i].rate > ranked[j].rate
		}
		if ranked[i].avg != ranked[j].avg {
			return ranked[i].avg < ranked[j].avg
		}
		return ranked[i].regIndex < ranked[j].regIndex
	})

	out := make([]string, len(ranked))
	for i, rp := range ranked {
		out[i] = rp.id
	}
	return out
}

// Get returns a snapshot of one provider's record.
func (t *HealthTracker) Get(providerID string) (HealthRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.records[providerID]
	if !ok {
		return HealthRecord{}, false
	}
	return t.snapshotLocked(providerID, r), true
}

// Snapshot returns all provider records in registration order.
func (t *HealthTracker) Snapshot() []HealthRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]HealthRecord, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.snapshotLocked(id, t.records[id]))
	}
	return out
}

func (t *HealthTracker) snapshotLocked(providerID string, r *healthRecord) HealthRecord {
	return HealthRecord{
		ProviderID:          providerID,
		TotalRequests:       r.totalRequests,
		TotalSuccesses:      r.totalSuccesses,
		TotalFailures:       r.totalFailures,
		ConsecutiveFailures: r.consecutiveFailures,
		AverageResponseTime: r.averageResponseTime(),
		SuccessRate:         r.successRate(),
		LastUsedAt:          r.lastUsedAt,
	}
}

// Reset zeroes all statistics while preserving registration order.
func (t *HealthTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, id := range t.order {
		t.records[id] = &healthRecord{regIndex: i}
	}
}
