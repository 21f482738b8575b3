package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
)

const redisKeyPrefix = "sentio:sentiment:"

// RedisCache shares the sentiment cache across processes. Keys are hashed so
// arbitrary article text never becomes a raw redis key.
type RedisCache struct {
	rdb   *goredis.Client
	ttl   time.Duration
	clock clockwork.Clock
}

// NewRedisClient parses redisURL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// NewRedisCache wraps rdb. A zero ttl uses models.DefaultCacheTTL.
func NewRedisCache(rdb *goredis.Client, ttl time.Duration, clock clockwork.Clock) *RedisCache {
	if ttl <= 0 {
		ttl = models.DefaultCacheTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, clock: clock}
}

func redisKey(key string) string {
	return models.StorageKey(redisKeyPrefix, key)
}

// Get returns a fresh entry or interfaces.ErrCacheMiss. Redis expiry is the
// primary TTL; created_at is rechecked against the injected clock.
func (c *RedisCache) Get(ctx context.Context, key string) (models.CacheEntry, error) {
	raw, err := c.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return models.CacheEntry{}, interfaces.ErrCacheMiss
	}
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("redis get failed: %w", err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return models.CacheEntry{}, fmt.Errorf("corrupt cache entry: %w", err)
	}
	if !entry.Fresh(c.clock.Now(), c.ttl) {
		return models.CacheEntry{}, interfaces.ErrCacheMiss
	}
	return entry, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, score float64) error {
	data, err := json.Marshal(models.CacheEntry{FinalScore: score, CreatedAt: c.clock.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.rdb.Set(ctx, redisKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Evict(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
