package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	want := testEntry("abc123", "retail", time.Minute)
	if err := store.Set(ctx, "abc123", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, err := store.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected entry to be found")
	}
	if got.Response.Content != want.Response.Content {
		t.Errorf("expected content %q, got %q", want.Response.Content, got.Response.Content)
	}
	if got.Response.ProviderID != "mock" {
		t.Errorf("expected provider mock, got %q", got.Response.ProviderID)
	}
	if got.Scope != "retail" {
		t.Errorf("expected scope retail, got %q", got.Scope)
	}
}

func TestRedisStore_MissingKey(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, found, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss for absent key")
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	store.Set(ctx, "short", testEntry("short", "", time.Minute), time.Minute)

	mr.FastForward(2 * time.Minute)

	if _, found, _ := store.Get(ctx, "short"); found {
		t.Error("expected miss after TTL elapsed")
	}
}

func TestRedisStore_StaleEntryDropped(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	// Entry whose own expiry has passed even though the redis TTL has not
	stale := testEntry("stale", "", 10*time.Millisecond)
	stale.CreatedAt = time.Now().Add(-time.Minute)
	store.Set(ctx, "stale", stale, time.Hour)

	if _, found, _ := store.Get(ctx, "stale"); found {
		t.Error("expected stale entry to be treated as a miss")
	}
	if mr.Exists("ganymede:cache:stale") {
		t.Error("expected stale entry to be deleted on access")
	}
}

func TestRedisStore_ClearScope(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	store.Set(ctx, "r1", testEntry("r1", "retail", time.Minute), time.Minute)
	store.Set(ctx, "r2", testEntry("r2", "retail", time.Minute), time.Minute)
	store.Set(ctx, "f1", testEntry("f1", "finance", time.Minute), time.Minute)

	if err := store.ClearScope(ctx, "retail"); err != nil {
		t.Fatalf("ClearScope failed: %v", err)
	}

	if _, found, _ := store.Get(ctx, "r1"); found {
		t.Error("retail entry survived scoped clear")
	}
	if _, found, _ := store.Get(ctx, "r2"); found {
		t.Error("retail entry survived scoped clear")
	}
	if _, found, _ := store.Get(ctx, "f1"); !found {
		t.Error("finance entry was removed by a retail-scoped clear")
	}
}

func TestRedisStore_Clear(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	store.Set(ctx, "a", testEntry("a", "s1", time.Minute), time.Minute)
	store.Set(ctx, "b", testEntry("b", "s2", time.Minute), time.Minute)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store after Clear, got %d", n)
	}
}

func TestRedisStore_LenExcludesScopeIndexes(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	store.Set(ctx, "a", testEntry("a", "retail", time.Minute), time.Minute)
	store.Set(ctx, "b", testEntry("b", "finance", time.Minute), time.Minute)

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
}

func TestRedisStore_CorruptEntryDropped(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	mr.Set("ganymede:cache:broken", "not json at all")

	_, found, err := store.Get(ctx, "broken")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected corrupt entry to be a miss")
	}
	if mr.Exists("ganymede:cache:broken") {
		t.Error("expected corrupt entry to be deleted")
	}
}

func TestNewRedisStore_ConnectError(t *testing.T) {
	if _, err := NewRedisStore(RedisOptions{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("expected connection error for unreachable redis")
	}
}
