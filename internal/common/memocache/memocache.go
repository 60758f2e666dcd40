// Package memocache provides a short-lived, key-tagged memoization cache.
// A cached value is reused until its validity window elapses or the entry is
// explicitly invalidated; after that the next lookup re-runs the resolver.
//
// The mutex guards only the map itself. Resolvers run outside the lock, so
// concurrent lookups that race past a stale entry may each resolve once; the
// entry ends up holding whichever resolution settled last. Resolutions are
// expected to be idempotent, which makes this duplicate work, not a hazard.
package memocache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache memoizes resolved values per key for a bounded validity window.
// The zero value is not usable; create instances with New.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
}

// New creates an empty cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
	}
}

// GetOrResolve returns the cached value for key if it is still within its
// validity window, otherwise runs resolve and caches the result for ttl.
// A resolver error is returned as-is and nothing is cached.
func (c *Cache[T]) GetOrResolve(key string, ttl time.Duration, resolve func() (T, error)) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	value, err := resolve()
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()

	return value, nil
}

// Invalidate removes the entry for key. The next GetOrResolve for the key
// always runs its resolver.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Peek returns the cached value for key without resolving, along with a flag
// reporting whether a live entry was present.
func (c *Cache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && time.Now().Before(e.expiresAt) {
		return e.value, true
	}
	var zero T
	return zero, false
}
