// Package cache stores model-extracted claim facts so that re-running the
// same document does not pay for a second extraction call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a key from a namespace (model name, prompt version) and
// the cached input text.
func CacheKey(namespace, text string) string {
	hash := sha256.Sum256([]byte(namespace + "\x00" + text))
	return "claimassist:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by config. A disabled cache is a no-op.
func New(config model.CacheConfig) Cache {
	if !config.Enabled {
		return Nop{}
	}
	memoryTTL := time.Duration(config.MemoryTTLMinutes) * time.Minute
	if config.Dir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	}
	diskTTL := time.Duration(config.DiskTTLHours) * time.Hour
	return NewLayeredCache(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(config.Dir, diskTTL))
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)                { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                      { return nil }
func (Nop) Clear() error                             { return nil }
