// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/sentio/internal/models"
)

// ErrCacheMiss is returned by SentimentCache.Get when the key is absent or expired
var ErrCacheMiss = errors.New("sentiment cache miss")

// SentimentCache stores fused final scores keyed by normalized text.
// Implementations expire entries after their TTL; expired entries behave as misses.
type SentimentCache interface {
	// Get returns the entry for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (models.CacheEntry, error)

	// Put stores score for key stamped with the cache clock. Last write wins.
	Put(ctx context.Context, key string, score float64) error

	// Evict removes key. Evicting an absent key is not an error.
	Evict(ctx context.Context, key string) error

	Close() error
}
