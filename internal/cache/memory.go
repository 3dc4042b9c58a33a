// Package cache provides the in-process TTL cache backing the seat-map
// read path.  The cache is deliberately process-local: the seat map is a
// rendering optimization whose staleness is bounded by the TTL, and every
// write path (reserve, confirm, expire) invalidates the affected key
// unconditionally.  The reservation path never consults it.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a minimal expiring key-value store safe for concurrent use.
// Expired entries are dropped lazily on read and on write.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New returns an empty TTLCache.
func New() *TTLCache {
	return &TTLCache{entries: make(map[string]entry), now: time.Now}
}

// Get returns the live value for key, or false when absent or expired.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL, replacing any previous
// entry.  A non-positive TTL stores nothing.
func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key.  Removing an absent key is a no-op, which makes
// invalidations unconditional for callers.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
