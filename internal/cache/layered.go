package cache

import (
	"errors"
	"time"
)

// expiring is implemented by layers that can report when an entry lapses.
type expiring interface {
	Lookup(key string) ([]byte, time.Time, bool)
}

// LayeredCache fronts a persistent layer with a memory layer.
type LayeredCache struct {
	memory Cache
	disk   Cache
	now    func() time.Time
}

func NewLayeredCache(memory, disk Cache) *LayeredCache {
	return &LayeredCache{memory: memory, disk: disk, now: time.Now}
}

// Get checks memory, then disk. A disk hit is copied into memory for no
// longer than it has left on disk, so promotion never extends a
// result's life.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if d, ok := c.disk.(expiring); ok {
		val, expires, found := d.Lookup(key)
		if !found {
			return nil, false
		}
		if !expires.IsZero() {
			remaining := expires.Sub(c.now())
			if remaining <= 0 {
				return nil, false
			}
			_ = c.memory.Set(key, val, remaining)
		} else {
			_ = c.memory.Set(key, val, 0)
		}
		return val, true
	}

	val, found := c.disk.Get(key)
	if found {
		_ = c.memory.Set(key, val, 0)
	}
	return val, found
}

// Set writes through to both layers. The memory layer is written even if
// the disk write fails.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	return errors.Join(c.memory.Set(key, value, ttl), c.disk.Set(key, value, ttl))
}

func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}

// Disk returns the disk layer when it is a *DiskCache.
func (c *LayeredCache) Disk() (*DiskCache, bool) {
	d, ok := c.disk.(*DiskCache)
	return d, ok
}
