// Package cache provides a small in-memory TTL cache for memoizing
// backing-store lookups. Expiry is checked lazily on read; there is no
// background sweeper. The cache is a performance optimization only and is
// never a source of truth.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock returns the current time. Injectable so tests can control expiry
// deterministically.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a mutex-guarded key/value store with per-entry expiry.
// A Get never returns a value whose deadline has passed; the expired entry
// is reclaimed by the read that observes it. Safe for concurrent use.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	clock   Clock
	group   singleflight.Group
}

// New creates a TTLCache using the wall clock.
func New[V any]() *TTLCache[V] {
	return NewWithClock[V](time.Now)
}

// NewWithClock creates a TTLCache with a custom clock. Used by tests.
func NewWithClock[V any](clock Clock) *TTLCache[V] {
	return &TTLCache[V]{
		entries: make(map[string]entry[V]),
		clock:   clock,
	}
}

// Get returns the cached value for key, or the zero value and false when
// the key is absent or its entry has expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set inserts or overwrites the value for key with the given TTL.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.clock().Add(ttl),
	}
}

// Delete removes the entry for key, if present.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge removes all entries.
func (c *TTLCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len returns the number of stored entries, including any not yet reclaimed
// expired ones.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrFetch returns the cached value for key, fetching and caching it on a
// miss. Concurrent misses on the same key share a single fetch via
// singleflight instead of each hitting the backing store. Fetch errors are
// returned to every waiter and never cached. The lock is never held across
// the fetch.
func (c *TTLCache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under singleflight: a previous flight may have
		// populated the entry while this caller was waiting.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, fetched, ttl)
		return fetched, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
