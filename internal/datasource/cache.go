package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// BytesCache stores encoded responses by key. A miss is reported with
// ok == false and a nil error.
type BytesCache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- In-memory cache ---

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// minSweep is the entry count at which Set first drops expired entries.
const minSweep = 64

// Cache is a thread-safe in-memory cache with TTL. Expired entries are
// swept from Set whenever the map has doubled since the last sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	sweepAt int
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		sweepAt: minSweep,
	}
}

// Get returns the value for key unless it is missing or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key. A non-positive ttl uses the cache default.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: now.Add(ttl)}
	if len(c.entries) >= c.sweepAt {
		for k, v := range c.entries {
			if now.After(v.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.sweepAt = max(2*len(c.entries), minSweep)
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// --- Redis cache ---

// RedisCache is a BytesCache backed by Redis. Keys are namespaced with a
// prefix so several tools can share one database.
type RedisCache struct {
	rdb    redis.Cmdable
	closer func() error
	prefix string
}

// RedisOptions configures NewRedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return newRedisCache(client, client.Close, opts.Prefix), nil
}

func newRedisCache(rdb redis.Cmdable, closer func() error, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "stockcast"
	}
	return &RedisCache{rdb: rdb, closer: closer, prefix: prefix}
}

// Get implements BytesCache. redis.Nil is reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, c.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements BytesCache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.wrapKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *RedisCache) wrapKey(key string) string {
	return c.prefix + ":" + key
}

// --- Tiered cache ---

// Tiered reads through a list of caches in order and writes to all of them.
// A hit in a later tier is copied into the earlier ones. Errors from a tier
// are treated as misses on read so a broken remote cache never blocks a fetch.
type Tiered []BytesCache

// Get implements BytesCache.
func (t Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, c := range t {
		v, ok, err := c.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		for _, upper := range t[:i] {
			_ = upper.Set(ctx, key, v, 0)
		}
		return v, true, nil
	}
	return nil, false, nil
}

// Set implements BytesCache. The first error is returned after every tier
// has been attempted.
func (t Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var first error
	for _, c := range t {
		if err := c.Set(ctx, key, value, ttl); err != nil && first == nil {
			first = err
		}
	}
	return first
}
