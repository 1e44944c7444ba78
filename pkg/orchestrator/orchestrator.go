package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/cache"
	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/retry"
	"mercator-hq/ganymede/pkg/routing"
)

const (
	// DefaultCacheTTL is the response cache TTL when none is configured.
	DefaultCacheTTL = time.Hour

	// DefaultCacheMaxEntries bounds the in-process cache when no store is
	// supplied.
	DefaultCacheMaxEntries = 10000
)

// Observer receives orchestration events. Implementations must be safe for
// concurrent use and must not block: observers run on the request path.
type Observer interface {
	// RecordAttempt is called once per candidate provider, after its retry
	// cycle completes, with the time the whole cycle took.
	RecordAttempt(providerID string, resp *providers.Response, elapsed time.Duration)

	// RecordOutcome is called exactly once per generate call with the final
	// response, the total elapsed time, and whether the response came from
	// cache.
	RecordOutcome(resp *providers.Response, elapsed time.Duration, cacheHit bool)
}

// FallbackObserver is an optional extension of Observer for observers
// that also want fallback transitions (e.g., a fallback counter).
type FallbackObserver interface {
	// RecordFallback is called when selection moves past the first
	// candidate, with the provider being fallen back to.
	RecordFallback(providerID string)
}

// RequestObserver is an optional extension of Observer for observers that
// need the full per-request outcome, such as a usage log. It is called
// exactly once per generate call, after RecordOutcome.
type RequestObserver interface {
	RecordRequest(info RequestInfo)
}

// RequestInfo describes one completed generate call.
type RequestInfo struct {
	// Fingerprint is the canonical request fingerprint. Empty when the
	// request failed validation before one could be computed.
	Fingerprint string

	// Scope is the cache scope the request ran under.
	Scope string

	// Provider and Model identify the adapter that produced (or last
	// attempted to produce) the result.
	Provider string
	Model    string

	// Status classifies the outcome.
	Status providers.Status

	// TokensUsed is the total token count reported by the provider.
	TokensUsed int

	// Elapsed is the total wall time for the call, cache lookups and
	// fallbacks included.
	Elapsed time.Duration

	// Cached reports whether the response was served from cache.
	Cached bool

	// Attempts is the number of candidate providers tried. Zero for cache
	// hits and requests rejected before selection.
	Attempts int

	// ErrorMessage is the final failure description, empty on success.
	ErrorMessage string
}

// Config configures an Orchestrator.
type Config struct {
	// DefaultProvider is tried first when the caller does not request a
	// specific provider. Must name a registered adapter when set.
	DefaultProvider string

	// Temperature is applied to requests that leave it unset.
	Temperature float64

	// MaxTokens is applied to requests that leave it unset.
	MaxTokens int

	// FallbackEnabled allows trying further candidates after a failure.
	// When false only the first candidate is attempted.
	FallbackEnabled bool

	// UnhealthyThreshold is the consecutive-failure count at which a
	// provider is skipped during selection.
	// Default: routing.DefaultUnhealthyThreshold.
	UnhealthyThreshold int

	// CacheEnabled turns on response caching.
	CacheEnabled bool

	// CacheTTL is how long cached responses stay valid.
	// Default: DefaultCacheTTL.
	CacheTTL time.Duration

	// CacheMaxEntries bounds the default in-process cache store.
	// Default: DefaultCacheMaxEntries. Ignored when CacheStore is set.
	CacheMaxEntries int

	// CacheStore overrides the cache backend, for example a shared Redis
	// store. The orchestrator takes ownership and closes it.
	CacheStore cache.Store

	// Retry is applied around every adapter call. Used as given: a zero
	// value means a single attempt per provider.
	Retry retry.Policy

	// ScopeFunc derives the cache scope tag for a request, enabling scoped
	// cache clearing. Optional.
	ScopeFunc func(*providers.Request) string

	// Observers receive attempt and outcome events.
	Observers []Observer
}

// Orchestrator coordinates provider adapters behind a single generate
// operation: cache lookup, provider selection, retries, health recording,
// and fallback. Safe for concurrent use.
type Orchestrator struct {
	config    Config
	adapters  map[string]providers.Adapter
	order     []string
	tracker   *routing.HealthTracker
	selector  *routing.Selector
	cache     *cache.Cache
	stats     *AtomicStats
	observers []Observer

	// wantInfo is set when any observer is a RequestObserver, so the
	// fingerprint is only computed when someone will consume it.
	wantInfo bool
}

// New creates an Orchestrator over the given adapters. At least one adapter
// is required; adapter names must be unique and non-empty.
func New(cfg Config, adapters []providers.Adapter) (*Orchestrator, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("orchestrator requires at least one provider adapter")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("default temperature %.2f out of range [0.0, 2.0]", cfg.Temperature)
	}
	if cfg.MaxTokens < 0 {
		return nil, fmt.Errorf("default max tokens must not be negative")
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("cache TTL must not be negative")
	}

	registry := make(map[string]providers.Adapter, len(adapters))
	order := make([]string, 0, len(adapters))
	tracker := routing.NewHealthTracker()

	for _, adapter := range adapters {
		if adapter == nil {
			return nil, fmt.Errorf("nil provider adapter")
		}
		name := adapter.GetName()
		if name == "" {
			return nil, fmt.Errorf("provider adapter with empty name")
		}
		if _, dup := registry[name]; dup {
			return nil, fmt.Errorf("duplicate provider %q", name)
		}
		registry[name] = adapter
		order = append(order, name)
		tracker.Register(name)
	}

	if cfg.DefaultProvider != "" {
		if _, ok := registry[cfg.DefaultProvider]; !ok {
			return nil, fmt.Errorf("default provider %q is not registered", cfg.DefaultProvider)
		}
	}

	o := &Orchestrator{
		config:    cfg,
		adapters:  registry,
		order:     order,
		tracker:   tracker,
		selector:  routing.NewSelector(tracker, cfg.UnhealthyThreshold),
		stats:     NewAtomicStats(),
		observers: cfg.Observers,
	}
	for _, ob := range cfg.Observers {
		if _, ok := ob.(RequestObserver); ok {
			o.wantInfo = true
			break
		}
	}

	if cfg.CacheEnabled {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = DefaultCacheTTL
		}
		store := cfg.CacheStore
		if store == nil {
			maxEntries := cfg.CacheMaxEntries
			if maxEntries <= 0 {
				maxEntries = DefaultCacheMaxEntries
			}
			memStore := cache.NewMemoryStore(maxEntries)
			memStore.StartSweeper(context.Background(), sweepInterval(ttl))
			store = memStore
		}
		o.cache = cache.New(store, ttl)
	}

	slog.Info("orchestrator initialized",
		"providers", order,
		"default_provider", cfg.DefaultProvider,
		"fallback", cfg.FallbackEnabled,
		"caching", cfg.CacheEnabled,
		"max_retries", cfg.Retry.MaxRetries,
	)

	return o, nil
}

// sweepInterval picks how often the in-process cache sweeps expired
// entries: half the TTL, at least every 10 seconds.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}
	return interval
}

// Generate handles one request end to end: cache lookup, provider
// selection, retry-wrapped adapter calls, health recording, fallback, and
// cache store. It always returns a well-formed response, never an error;
// operational failures are reported through the response status.
func (o *Orchestrator) Generate(ctx context.Context, req *providers.Request) *providers.Response {
	return o.generate(ctx, req, "")
}

// GenerateWithProvider is Generate with an explicit provider choice. The
// named provider is tried first even when unhealthy; with fallback enabled
// the remaining providers follow in health order. An unknown provider
// yields an invalid-request response.
func (o *Orchestrator) GenerateWithProvider(ctx context.Context, req *providers.Request, providerID string) *providers.Response {
	return o.generate(ctx, req, providerID)
}

func (o *Orchestrator) generate(ctx context.Context, req *providers.Request, explicit string) *providers.Response {
	start := time.Now()
	o.stats.IncrementTotal()

	resp, meta := o.run(ctx, req, explicit)

	if !resp.Succeeded() {
		o.stats.IncrementFailures()
	}
	elapsed := time.Since(start)
	for _, ob := range o.observers {
		ob.RecordOutcome(resp, elapsed, meta.cacheHit)
		if ro, ok := ob.(RequestObserver); ok {
			ro.RecordRequest(RequestInfo{
				Fingerprint:  meta.fingerprint,
				Scope:        meta.scope,
				Provider:     resp.ProviderID,
				Model:        resp.Model,
				Status:       resp.Status,
				TokensUsed:   resp.TokensUsed,
				Elapsed:      elapsed,
				Cached:       meta.cacheHit,
				Attempts:     meta.attempts,
				ErrorMessage: resp.ErrorMessage,
			})
		}
	}
	return resp
}

// runMeta carries per-request details from run back to the observer
// dispatch in generate.
type runMeta struct {
	cacheHit    bool
	attempts    int
	fingerprint string
	scope       string
}

// run executes one request cycle and reports per-request details along
// with the response.
func (o *Orchestrator) run(ctx context.Context, req *providers.Request, explicit string) (*providers.Response, runMeta) {
	var meta runMeta

	if req == nil {
		return providers.NewFailure(explicit, "", providers.StatusInvalidRequest, "request is required"), meta
	}

	prepared := o.prepareRequest(req)
	if err := prepared.Validate(); err != nil {
		return providers.FailureFromError(explicit, "", err), meta
	}

	if o.config.ScopeFunc != nil {
		meta.scope = o.config.ScopeFunc(prepared)
	}
	if o.wantInfo {
		if fp, err := cache.Fingerprint(prepared); err == nil {
			meta.fingerprint = fp
		}
	}

	if o.cache != nil {
		if cached, ok := o.cache.Get(ctx, prepared); ok {
			o.stats.IncrementCacheHits()
			slog.Debug("serving response from cache",
				"provider", cached.ProviderID,
				"model", cached.Model,
			)
			meta.cacheHit = true
			return cached, meta
		}
		o.stats.IncrementCacheMisses()
	}

	candidates, err := o.selector.Candidates(explicit, o.config.DefaultProvider)
	if err != nil {
		return providers.NewFailure(explicit, "", providers.StatusInvalidRequest, err.Error()), meta
	}
	if !o.config.FallbackEnabled {
		candidates = candidates[:1]
	}

	var last *providers.Response
	for i, id := range candidates {
		adapter := o.adapters[id]

		if i > 0 {
			o.stats.IncrementFallbacks()
			for _, ob := range o.observers {
				if fo, ok := ob.(FallbackObserver); ok {
					fo.RecordFallback(id)
				}
			}
			slog.Info("falling back to next provider",
				"provider", id,
				"candidate", i+1,
				"candidates", len(candidates),
			)
		}
		o.stats.IncrementProvider(id)
		meta.attempts++

		attemptStart := time.Now()
		resp := retry.Execute(ctx, o.config.Retry, func(ctx context.Context) *providers.Response {
			return adapter.Generate(ctx, prepared)
		})
		attemptElapsed := time.Since(attemptStart)

		// The backend call happens outside every lock; recording takes the
		// tracker lock only briefly afterwards.
		o.tracker.Record(id, resp.Succeeded(), attemptElapsed)
		for _, ob := range o.observers {
			ob.RecordAttempt(id, resp, attemptElapsed)
		}

		if resp.Succeeded() {
			o.storeInCache(ctx, prepared, resp, meta.scope)
			return resp, meta
		}

		slog.Warn("provider attempt failed",
			"provider", id,
			"status", resp.Status,
			"error", resp.ErrorMessage,
		)
		last = resp
	}

	// Exhausted: surface the last failure unchanged
	return last, meta
}

// prepareRequest copies the request and fills configured defaults. The
// caller's request is never mutated.
func (o *Orchestrator) prepareRequest(req *providers.Request) *providers.Request {
	prepared := req.Clone()
	if prepared.Temperature == 0 && o.config.Temperature != 0 {
		prepared.Temperature = o.config.Temperature
	}
	if prepared.MaxTokens == 0 && o.config.MaxTokens != 0 {
		prepared.MaxTokens = o.config.MaxTokens
	}
	return prepared
}

func (o *Orchestrator) storeInCache(ctx context.Context, req *providers.Request, resp *providers.Response, scope string) {
	if o.cache == nil {
		return
	}
	o.cache.Put(ctx, req, scope, resp)
}

// Providers returns the registered provider IDs in registration order.
func (o *Orchestrator) Providers() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Describe returns the capability metadata of one provider.
func (o *Orchestrator) Describe(providerID string) (providers.ProviderInfo, error) {
	adapter, ok := o.adapters[providerID]
	if !ok {
		return providers.ProviderInfo{}, &routing.ProviderNotFoundError{
			ProviderID:         providerID,
			AvailableProviders: o.Providers(),
		}
	}
	return adapter.Describe(), nil
}

// DescribeAll returns capability metadata for every provider in
// registration order.
func (o *Orchestrator) DescribeAll() []providers.ProviderInfo {
	out := make([]providers.ProviderInfo, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.adapters[id].Describe())
	}
	return out
}

// Health returns a snapshot of every provider's health record in
// registration order.
func (o *Orchestrator) Health() []routing.HealthRecord {
	return o.tracker.Snapshot()
}

// Stats returns a snapshot of orchestration statistics.
func (o *Orchestrator) Stats() *Stats {
	return o.stats.Snapshot()
}

// ValidateConnections checks connectivity of every provider and returns
// the result per provider ID. Runs the checks sequentially; callers that
// need a bounded check should cap ctx.
func (o *Orchestrator) ValidateConnections(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(o.order))
	for _, id := range o.order {
		results[id] = o.adapters[id].ValidateConnection(ctx)
	}
	return results
}

// ClearCache removes all cached responses. A no-op when caching is off.
func (o *Orchestrator) ClearCache(ctx context.Context) error {
	if o.cache == nil {
		return nil
	}
	return o.cache.Clear(ctx)
}

// ClearCacheScope removes cached responses tagged with scope. A no-op when
// caching is off.
func (o *Orchestrator) ClearCacheScope(ctx context.Context, scope string) error {
	if o.cache == nil {
		return nil
	}
	return o.cache.ClearScope(ctx, scope)
}

// CacheSize returns the number of cached entries, 0 when caching is off.
func (o *Orchestrator) CacheSize(ctx context.Context) int {
	if o.cache == nil {
		return 0
	}
	return o.cache.Size(ctx)
}

// Close releases the cache and every adapter. The first error encountered
// is returned; all components are closed regardless.
func (o *Orchestrator) Close() error {
	var firstErr error
	for _, id := range o.order {
		if err := o.adapters[id].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing provider %q: %w", id, err)
		}
	}
	if o.cache != nil {
		if err := o.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
