package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
)

const scoreCachePrefix = "sentiment_cache:"

// ScoreCache is a persistent interfaces.SentimentCache on the raw Badger
// handle. Entries carry a Badger TTL; created_at is rechecked against the
// injected clock.
type ScoreCache struct {
	db    *badger.DB
	ttl   time.Duration
	clock clockwork.Clock
}

// NewScoreCache creates a cache sharing the badgerhold store's database
func NewScoreCache(db *BadgerDB, ttl time.Duration, clock clockwork.Clock) *ScoreCache {
	if ttl <= 0 {
		ttl = models.DefaultCacheTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ScoreCache{db: db.Store().Badger(), ttl: ttl, clock: clock}
}

// scoreCacheKey hashes the text key; Badger rejects keys over 65000 bytes
func scoreCacheKey(key string) []byte {
	return []byte(models.StorageKey(scoreCachePrefix, key))
}

func (c *ScoreCache) Get(ctx context.Context, key string) (models.CacheEntry, error) {
	var entry models.CacheEntry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(scoreCacheKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.CacheEntry{}, interfaces.ErrCacheMiss
	}
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if !entry.Fresh(c.clock.Now(), c.ttl) {
		return models.CacheEntry{}, interfaces.ErrCacheMiss
	}
	return entry, nil
}

func (c *ScoreCache) Put(ctx context.Context, key string, score float64) error {
	data, err := json.Marshal(models.CacheEntry{FinalScore: score, CreatedAt: c.clock.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(scoreCacheKey(key), data).WithTTL(c.ttl))
	})
}

func (c *ScoreCache) Evict(ctx context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(scoreCacheKey(key))
	})
}

// Close is a no-op; the database is owned by BadgerDB
func (c *ScoreCache) Close() error {
	return nil
}
