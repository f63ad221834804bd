package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the process-local layer. It counts hits and misses so a
// batch run can report how many extraction calls it saved.
type MemoryCache struct {
	items  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a memory cache. A non-positive defaultTTL means
// thirty minutes.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	data, _, ok := c.Lookup(key)
	return data, ok
}

// Lookup returns the value and its expiry. Entries without an expiry
// report the zero time.
func (c *MemoryCache) Lookup(key string) ([]byte, time.Time, bool) {
	val, expires, found := c.items.GetWithExpiration(key)
	data, ok := val.([]byte)
	if !found || !ok {
		c.misses.Add(1)
		return nil, time.Time{}, false
	}
	c.hits.Add(1)
	return data, expires, true
}

// Set stores value; a zero ttl uses the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len reports the number of stored entries, including expired ones not
// yet collected.
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}

// HitRate returns hits, misses since creation.
func (c *MemoryCache) HitRate() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
