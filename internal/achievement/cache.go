package achievement

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ruckwell/achievement-service/internal/domain"
)

// CacheSchemaVersion is the current version of the earned-set cache schema
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

// cachedEarnedEntry wraps a user's earned set with version metadata
type cachedEarnedEntry struct {
	Version  string                   `json:"version"`
	Earned   []domain.UserAchievement `json:"earned"`
	CachedAt time.Time                `json:"cached_at"`
}

// earnedSetCache is an in-memory LRU cache for per-user earned-achievement
// lookups, with time-based expiration. The TTL is short: the earned set
// changes on every unlock and correctness relies on invalidation after
// writes, not on freshness of this cache.
type earnedSetCache struct {
	lru *expirable.LRU[string, *cachedEarnedEntry]
}

// newEarnedSetCache creates an earned-set cache with the given size and TTL.
func newEarnedSetCache(size int, ttl time.Duration) *earnedSetCache {
	return &earnedSetCache{
		lru: expirable.NewLRU[string, *cachedEarnedEntry](size, nil, ttl),
	}
}

// Get retrieves a user's earned set from the cache.
// Returns (nil, false) if not cached, expired, or the schema version moved.
func (c *earnedSetCache) Get(userID string) ([]domain.UserAchievement, bool) {
	entry, found := c.lru.Get(userID)
	if !found {
		return nil, false
	}

	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(userID)
		return nil, false
	}

	return entry.Earned, true
}

// Set stores a user's earned set with the current schema version.
func (c *earnedSetCache) Set(userID string, earned []domain.UserAchievement) {
	c.lru.Add(userID, &cachedEarnedEntry{
		Version:  CacheSchemaVersion,
		Earned:   earned,
		CachedAt: time.Now(),
	})
}

// Invalidate removes a user's earned set. Called after every unlock write so
// the next resolution re-reads the store.
func (c *earnedSetCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}

// Clear removes all entries from the cache.
func (c *earnedSetCache) Clear() {
	c.lru.Purge()
}
