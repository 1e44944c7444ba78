// Package cache provides response caching keyed by request fingerprint.
//
// A fingerprint is the SHA-256 hash of the canonical JSON encoding of a
// request's semantic fields: prompt, context, system message, temperature,
// and max tokens. Two requests that would produce equivalent provider calls
// share a fingerprint; request metadata never participates.
//
// Only successful responses are cached. Failures always propagate to the
// caller and are never served from cache.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore(10_000)
//	store.StartSweeper(ctx, time.Minute)
//	c := cache.New(store, 5*time.Minute)
//	defer c.Close()
//
//	if resp, ok := c.Get(ctx, req); ok {
//	    return resp
//	}
//	resp := adapter.Generate(ctx, req)
//	c.Put(ctx, req, "tenant-42", resp)
//
// # Stores
//
// Two Store implementations are provided. MemoryStore keeps entries in a
// mutex-guarded map with LRU eviction and lazy expiry, suitable for a single
// process. RedisStore shares entries across processes and delegates expiry
// to Redis TTLs.
//
// Store failures are deliberately soft: a read error is a cache miss and a
// write error is logged and dropped. The cache must never turn a working
// provider call into a failure.
package cache
