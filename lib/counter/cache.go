package counter

import (
	"github.com/puzpuzpuz/xsync/v3"
	"time"
)

// Clock returns the current time. Tests replace it to control expiry.
type Clock func() time.Time

// CacheEntry is a base count as observed on the owning node
type CacheEntry struct {
	Count      int64
	ObservedAt time.Time
}

// ReadCache holds recently fetched base counts for a fixed ttl.
// An entry is fresh while now - ObservedAt < ttl.
type ReadCache struct {
	entries *xsync.MapOf[string, CacheEntry]
	ttl     time.Duration
	clock   Clock
}

// NewReadCache creates a cache with the given ttl. A ttl <= 0 disables caching.
// If clock is nil time.Now is used.
func NewReadCache(ttl time.Duration, clock Clock) *ReadCache {
	if clock == nil {
		clock = time.Now
	}
	return &ReadCache{
		entries: xsync.NewMapOf[string, CacheEntry](),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the entry of key if it exists and is fresh
func (c *ReadCache) Get(key string) (CacheEntry, bool) {
	e, ok := c.entries.Load(key)
	if !ok || !c.fresh(e, c.clock(), c.ttl) {
		return CacheEntry{}, false
	}
	return e, true
}

// Put stores count as the base of key observed at observedAt
func (c *ReadCache) Put(key string, count int64, observedAt time.Time) {
	if c.ttl <= 0 {
		return
	}
	c.entries.Store(key, CacheEntry{Count: count, ObservedAt: observedAt})
}

// Invalidate removes the entry of key
func (c *ReadCache) Invalidate(key string) {
	c.entries.Delete(key)
}

// EvictExpired removes every entry that is stale at now for the given ttl and
// returns the removed keys. Entries refreshed concurrently are kept.
func (c *ReadCache) EvictExpired(now time.Time, ttl time.Duration) []string {
	var candidates []string
	c.entries.Range(func(key string, e CacheEntry) bool {
		if !c.fresh(e, now, ttl) {
			candidates = append(candidates, key)
		}
		return true
	})

	evicted := make([]string, 0, len(candidates))
	for _, key := range candidates {
		removed := false
		c.entries.Compute(key, func(e CacheEntry, loaded bool) (CacheEntry, bool) {
			if loaded && !c.fresh(e, now, ttl) {
				removed = true
				return e, true
			}
			return e, !loaded
		})
		if removed {
			evicted = append(evicted, key)
		}
	}
	return evicted
}

// TTL returns the configured ttl
func (c *ReadCache) TTL() time.Duration {
	return c.ttl
}

// Len returns the number of entries (fresh or not yet evicted)
func (c *ReadCache) Len() int {
	return c.entries.Size()
}

func (c *ReadCache) fresh(e CacheEntry, now time.Time, ttl time.Duration) bool {
	return now.Sub(e.ObservedAt) < ttl
}
