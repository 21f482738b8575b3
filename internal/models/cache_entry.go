package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultCacheTTL is how long a cached final score stays valid
const DefaultCacheTTL = 6 * time.Hour

// CacheEntry is the cached replay value for one normalized text key.
type CacheEntry struct {
	FinalScore float64   `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) < ttl
}

// StorageKey maps a normalized text key to a fixed-length backend key: prefix
// plus the hex sha256 of key. Backend key limits never depend on article length.
func StorageKey(prefix, key string) string {
	sum := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(sum[:])
}
