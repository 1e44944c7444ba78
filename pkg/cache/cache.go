package cache

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// Entry is one cached generation result. Entries are owned exclusively by
// the cache: callers receive copies, never references into the store.
type Entry struct {
	// Fingerprint is the request fingerprint keying this entry.
	Fingerprint string `json:"fingerprint"`

	// Scope optionally tags the entry for scoped clearing (for example by
	// industry or tenant).
	Scope string `json:"scope,omitempty"`

	// Response is the cached successful response.
	Response providers.Response `json:"response"`

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time `json:"created_at"`

	// TTL is the entry's time-to-live. Zero means no expiry.
	TTL time.Duration `json:"ttl"`
}

// Expired reports whether the entry's TTL has lapsed at the given time.
func (e *Entry) Expired(now time.Time) bool {
	return e.TTL > 0 && now.After(e.CreatedAt.Add(e.TTL))
}

// Store is the persistence backend for cache entries. Implementations must
// be safe for concurrent use and must treat expired entries as absent,
// evicting them on access rather than on a timer.
type Store interface {
	// Get returns the unexpired entry for key, or found=false.
	Get(ctx context.Context, key string) (entry *Entry, found bool, err error)

	// Set stores an entry under key with the given TTL.
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	// Delete removes an entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// ClearScope removes all entries stored with the given scope tag.
	ClearScope(ctx context.Context, scope string) error

	// Len returns the number of stored entries, including any not yet
	// evicted expired ones.
	Len(ctx context.Context) (int, error)

	// Close releases the store's resources.
	Close() error
}

// Cache is the response cache for successful generations. It computes
// fingerprints, applies the configured TTL, and guarantees that only
// successful responses are ever stored.
type Cache struct {
	store Store
	ttl   time.Duration
}

// New creates a cache over the given store. defaultTTL applies to every
// entry; zero means entries never expire.
func New(store Store, defaultTTL time.Duration) *Cache {
	return &Cache{
		store: store,
		ttl:   defaultTTL,
	}
}

// TTL returns the cache's configured default TTL.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns a copy of the cached response for the request, if present
// and unexpired. Failures to compute the fingerprint or reach the store
// degrade to a miss; the cache never fails a request.
func (c *Cache) Get(ctx context.Context, req *providers.Request) (*providers.Response, bool) {
	key, err := Fingerprint(req)
	if err != nil {
		slog.Debug("request not cacheable", "error", err)
		return nil, false
	}

	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache lookup failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	// Copy out: cached entries must not be mutable through returned values
	resp := entry.Response
	return &resp, true
}

// Put stores a successful response under the request's fingerprint with
// the cache's default TTL. Non-success responses are ignored: a failure
// must never satisfy a later request. Storage errors are logged and
// swallowed; caching is best-effort.
func (c *Cache) Put(ctx context.Context, req *providers.Request, scope string, resp *providers.Response) {
	if resp == nil || resp.Status != providers.StatusSuccess {
		return
	}

	key, err := Fingerprint(req)
	if err != nil {
		slog.Debug("request not cacheable", "error", err)
		return
	}

	entry := &Entry{
		Fingerprint: key,
		Scope:       scope,
		Response:    *resp,
		CreatedAt:   time.Now(),
		TTL:         c.ttl,
	}

	if err := c.store.Set(ctx, key, entry, c.ttl); err != nil {
		slog.Warn("cache store failed", "error", err)
	}
}

// Clear removes all cached entries.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// ClearScope removes all entries tagged with scope.
func (c *Cache) ClearScope(ctx context.Context, scope string) error {
	return c.store.ClearScope(ctx, scope)
}

// Size returns the number of stored entries. Returns 0 on store errors.
func (c *Cache) Size(ctx context.Context) int {
	n, err := c.store.Len(ctx)
	if err != nil {
		slog.Warn("cache size lookup failed", "error", err)
		return 0
	}
	return n
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
