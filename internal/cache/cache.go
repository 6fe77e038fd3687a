// Package cache stores finished analyses for a short TTL, in Redis when configured and in memory otherwise.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "chaincheck:analysis:"

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Key namespaces an analysis cache entry by token address.
func Key(address string) string {
	return keyPrefix + address
}

type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// New connects to Redis when redisURL is set and reachable, falling back to an in-memory cache.
func New(redisURL string) Cache {
	if redisURL == "" {
		return NewMemoryCache()
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, using in-memory cache")
		return NewMemoryCache()
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, using in-memory cache")
		_ = client.Close()
		return NewMemoryCache()
	}
	log.Info().Str("addr", opt.Addr).Msg("analysis cache backed by redis")
	return NewRedisCache(client)
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return nil, false
	}
	return b, true
}

func (r *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, val, ttl).Err()
}

type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

type memItem struct {
	val []byte
	exp time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memItem), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !it.exp.IsZero() && m.now().After(it.exp) {
		delete(m.items, key)
		return nil, false
	}
	return it.val, true
}

func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.items[key] = memItem{val: val, exp: exp}
	return nil
}
