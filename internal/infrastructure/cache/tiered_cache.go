package cache

import (
	"context"
	"sync/atomic"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"go.uber.org/zap"
)

// TieredCache implements a two-tier caching strategy
// L1: Local TTL cache (fast, but local to instance)
// L2: Redis cache (optional, shared across instances)
// Reads go L1 then L2, promoting L2 hits into L1 for no longer than they have left in L2.
// Writes go to both tiers.
type TieredCache struct {
	name   string
	l1     *TTLCache[string]
	l2     *RedisCache
	logger *zap.Logger

	// Stats for monitoring
	l1Hits   int64
	l1Misses int64
	l2Hits   int64
	l2Misses int64
}

// TieredCacheOption is a functional option for configuring the cache
type TieredCacheOption func(*TieredCache)

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredCacheOption {
	return func(c *TieredCache) {
		c.logger = logger
	}
}

// WithL2 adds a shared Redis tier
func WithL2(l2 *RedisCache) TieredCacheOption {
	return func(c *TieredCache) {
		c.l2 = l2
	}
}

// NewTieredCache creates a tiered cache over l1. Without WithL2 it behaves as l1 alone.
func NewTieredCache(name string, l1 *TTLCache[string], opts ...TieredCacheOption) *TieredCache {
	c := &TieredCache{
		name:   name,
		l1:     l1,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value (L1 -> L2)
func (c *TieredCache) Get(ctx context.Context, key string) (string, bool) {
	if v, ok := c.l1.Get(key); ok {
		atomic.AddInt64(&c.l1Hits, 1)
		return v, true
	}
	atomic.AddInt64(&c.l1Misses, 1)

	if c.l2 == nil {
		return "", false
	}

	v, remaining, ok, err := c.l2.Get(ctx, key)
	if err != nil {
		c.logger.Warn("L2 cache error",
			zap.String("cache", c.name),
			zap.String("key", key),
			zap.Error(err),
		)
		atomic.AddInt64(&c.l2Misses, 1)
		return "", false
	}
	if !ok {
		atomic.AddInt64(&c.l2Misses, 1)
		return "", false
	}

	atomic.AddInt64(&c.l2Hits, 1)
	c.l1.SetWithTTL(key, v, remaining)
	return v, true
}

// Set stores value in both tiers. L2 failures are logged and otherwise ignored.
func (c *TieredCache) Set(ctx context.Context, key, value string) {
	c.l1.Set(key, value)

	if c.l2 == nil {
		return
	}
	if err := c.l2.Set(ctx, key, value); err != nil {
		c.logger.Warn("Failed to write L2 cache",
			zap.String("cache", c.name),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Has reports whether a live value exists in either tier
func (c *TieredCache) Has(ctx context.Context, key string) bool {
	if c.l1.Has(key) {
		return true
	}
	if c.l2 == nil {
		return false
	}
	ok, err := c.l2.Exists(ctx, key)
	if err != nil {
		c.logger.Warn("L2 cache error",
			zap.String("cache", c.name),
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// CacheStats holds hit/miss counters of a tiered cache
type CacheStats struct {
	L1Hits   int64
	L1Misses int64
	L2Hits   int64
	L2Misses int64
}

// Stats returns a snapshot of the hit/miss counters
func (c *TieredCache) Stats() CacheStats {
	return CacheStats{
		L1Hits:   atomic.LoadInt64(&c.l1Hits),
		L1Misses: atomic.LoadInt64(&c.l1Misses),
		L2Hits:   atomic.LoadInt64(&c.l2Hits),
		L2Misses: atomic.LoadInt64(&c.l2Misses),
	}
}

// Ensure TieredCache implements marketplace.ValueCache
var _ marketplace.ValueCache = (*TieredCache)(nil)
