package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching derived data (rendered markdown,
// measured image dimensions). Painting and fact records are never cached.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for value within a namespace
func Key(namespace, value string) string {
	hash := sha256.Sum256([]byte(value))
	return "artexplorer:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// Noop is a Cache that stores nothing, used when caching is disabled
type Noop struct{}

// Get always misses
func (Noop) Get(string) ([]byte, bool) { return nil, false }

// Set discards the value
func (Noop) Set(string, []byte, time.Duration) error { return nil }

// Delete does nothing
func (Noop) Delete(string) error { return nil }

// Clear does nothing
func (Noop) Clear() error { return nil }

// New returns a memory cache, or Noop when disabled
func New(enabled bool, ttl, cleanupInterval time.Duration) Cache {
	if !enabled {
		return Noop{}
	}
	return NewMemoryCache(ttl, cleanupInterval)
}
