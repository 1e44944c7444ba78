package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	// Addr is the redis host:port. Default: localhost:6379.
	Addr string `yaml:"addr" json:"addr"`

	// Password authenticates the connection. Optional.
	Password string `yaml:"password" json:"-"`

	// DB selects the redis database. Default: 0.
	DB int `yaml:"db" json:"db"`

	// Prefix namespaces all keys. Default: "ganymede:cache".
	Prefix string `yaml:"prefix" json:"prefix"`
}

// RedisStore is a Store backed by Redis, for sharing the response cache
// across processes. Entry expiry rides on Redis TTLs; scope tags are
// tracked in per-scope index sets for scoped clearing.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = "ganymede:cache"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	slog.Info("redis cache store connected", "addr", opts.Addr, "prefix", opts.Prefix)

	return &RedisStore{
		client: client,
		prefix: opts.Prefix,
	}, nil
}

func (s *RedisStore) entryKey(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) scopeKey(scope string) string {
	return s.prefix + ":scope:" + scope
}

// Get returns the unexpired entry for key. Redis expires keys by TTL; the
// entry's own expiry is re-checked to stay correct across clock drift.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry is useless; drop it and report a miss
		_ = s.client.Del(ctx, s.entryKey(key)).Err()
		return nil, false, nil
	}

	if entry.Expired(time.Now()) {
		_ = s.client.Del(ctx, s.entryKey(key)).Err()
		return nil, false, nil
	}

	return &entry, true, nil
}

// Set stores an entry with the given TTL and indexes its scope.
func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis set: marshal entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.entryKey(key), data, ttl)
		if entry.Scope != "" {
			pipe.SAdd(ctx, s.scopeKey(entry.Scope), key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes an entry. Scope index membership is left behind; deleting
// an already-absent key during ClearScope is harmless.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.entryKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Clear removes all entries and scope indexes under the store's prefix.
// Scoped to the prefix so other tenants of the same Redis are untouched.
func (s *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis clear: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// ClearScope removes all entries indexed under scope, then the index set.
func (s *RedisStore) ClearScope(ctx context.Context, scope string) error {
	members, err := s.client.SMembers(ctx, s.scopeKey(scope)).Result()
	if err != nil {
		return fmt.Errorf("redis clear scope: %w", err)
	}

	if len(members) > 0 {
		keys := make([]string, len(members))
		for i, m := range members {
			keys[i] = s.entryKey(m)
		}
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis clear scope: %w", err)
		}
	}

	if err := s.client.Del(ctx, s.scopeKey(scope)).Err(); err != nil {
		return fmt.Errorf("redis clear scope: %w", err)
	}
	return nil
}

// Len counts stored entries, excluding scope index sets.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	scopePrefix := s.prefix + ":scope:"

	count := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redis len: %w", err)
		}
		for _, k := range keys {
			if !strings.HasPrefix(k, scopePrefix) {
				count++
			}
		}
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
