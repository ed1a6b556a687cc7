package snapshot

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a byte-blob get/set with a per-entry TTL, the same shape as
// the teacher's data/cache.Cache.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte, ttl time.Duration)
}

type memoryCache struct {
	mu sync.Mutex
	m  map[string]memoryEntry
}

type memoryEntry struct {
	val []byte
	exp time.Time
}

// NewMemoryCache builds an in-process Cache with no external dependency.
func NewMemoryCache() Cache {
	return &memoryCache{m: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		return nil, false
	}
	return e.val, true
}

func (c *memoryCache) Set(key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	c.m[key] = e
}

type redisCache struct {
	client *redis.Client
}

// NewAutoCache returns a Redis-backed Cache when REDIS_ADDR is set,
// otherwise an in-memory Cache — the same fallback the teacher's
// data/cache.NewAuto performs.
func NewAutoCache() Cache {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return &redisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
	}
	return NewMemoryCache()
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	v, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (r *redisCache) Set(key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = r.client.Set(ctx, key, val, ttl).Err()
}
