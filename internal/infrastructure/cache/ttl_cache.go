package cache

import (
	"sync"
	"time"
)

// entry holds a cached value with its absolute expiry
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is an in-memory cache where every entry expires a fixed TTL after it was set.
// Expired entries are purged lazily when their key is read; there is no background sweeper,
// so entries for keys that are never read again stay in memory.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// TTLCacheOption configures a TTLCache
type TTLCacheOption[V any] func(*TTLCache[V])

// WithClock replaces the time source, for tests
func WithClock[V any](now func() time.Time) TTLCacheOption[V] {
	return func(c *TTLCache[V]) {
		c.now = now
	}
}

// NewTTLCache creates a cache whose entries live for ttl
func NewTTLCache[V any](ttl time.Duration, opts ...TTLCacheOption[V]) *TTLCache[V] {
	c := &TTLCache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key, expiring at now + TTL
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key, expiring at now + min(ttl, TTL).
// A copy of a value cached elsewhere never outlives its source this way.
func (c *TTLCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Get returns the value if present and not expired. An expired entry is evicted.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Has reports whether a live entry exists for key
func (c *TTLCache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && c.now().Before(e.expiresAt)
}

// Delete removes key
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included (for testing/monitoring)
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
