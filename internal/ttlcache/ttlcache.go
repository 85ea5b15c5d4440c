// Package ttlcache provides a bounded in-memory cache with time-based expiry.
//
// Entries are immutable once stored and replaced wholesale on Set. A read
// never returns an entry older than the configured TTL; expired entries are
// removed lazily once the cache grows past its size bound, so the map stays
// small without a background sweeper.
package ttlcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Cache is a mutex-guarded TTL map keyed by string. The zero value is not
// usable; construct with [New]. Safe for concurrent use.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int

	// now is swappable for tests.
	now func() time.Time
}

// New creates a cache whose entries expire ttl after insertion. Once the map
// holds more than maxEntries items, the next Set prunes everything expired.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		entries:    make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value stored under key and true when the entry exists and
// is younger than the TTL. Expired entries are treated as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.createdAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the current timestamp, replacing any
// previous entry. When the cache exceeds its size bound it opportunistically
// drops all expired entries.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, createdAt: c.now()}

	if len(c.entries) > c.maxEntries {
		now := c.now()
		for k, e := range c.entries {
			if now.Sub(e.createdAt) >= c.ttl {
				delete(c.entries, k)
			}
		}
	}
}

// Len returns the number of entries currently held, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
