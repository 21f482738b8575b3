// Package cache provides the sentiment cache backends.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
)

// MemoryCache is a process-local TTL cache keyed by normalized text.
// Expiry is checked lazily on read; StartSweeper reclaims memory in the background.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
	logger  arbor.ILogger
}

// NewMemoryCache creates an empty cache. A zero ttl uses models.DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration, clock clockwork.Clock, logger arbor.ILogger) *MemoryCache {
	if ttl <= 0 {
		ttl = models.DefaultCacheTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryCache{
		entries: make(map[string]models.CacheEntry),
		ttl:     ttl,
		clock:   clock,
		logger:  logger,
	}
}

// Get returns a fresh entry or interfaces.ErrCacheMiss
func (c *MemoryCache) Get(ctx context.Context, key string) (models.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !entry.Fresh(c.clock.Now(), c.ttl) {
		return models.CacheEntry{}, interfaces.ErrCacheMiss
	}
	return entry, nil
}

// Put stores score stamped with the current clock time
func (c *MemoryCache) Put(ctx context.Context, key string, score float64) error {
	c.mu.Lock()
	c.entries[key] = models.CacheEntry{FinalScore: score, CreatedAt: c.clock.Now()}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Evict(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// EvictExpired removes every expired entry and returns how many were removed.
func (c *MemoryCache) EvictExpired() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if !entry.Fresh(now, c.ttl) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper evicts expired entries every interval until the returned stop
// function is called.
func (c *MemoryCache) StartSweeper(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.EvictExpired(); evicted > 0 {
					c.logger.Debug().
						Int("evicted", evicted).
						Int("remaining", c.Len()).
						Msg("Swept expired sentiment cache entries")
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

func (c *MemoryCache) Close() error {
	return nil
}
