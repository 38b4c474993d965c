package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a shared string cache backed by Redis. Keys are namespaced with a prefix
// and every value carries its own TTL.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisCache creates a cache on an existing client
func NewRedisCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "shipdesk:cache:"
	}
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached value together with the time it has left to live.
// A missing key returns ("", 0, false, nil). A key without expiry reports the cache TTL.
func (c *RedisCache) Get(ctx context.Context, key string) (string, time.Duration, bool, error) {
	pipe := c.client.Pipeline()
	getCmd := pipe.Get(ctx, c.keyPrefix+key)
	ttlCmd := pipe.PTTL(ctx, c.keyPrefix+key)
	_, err := pipe.Exec(ctx)
	if errors.Is(getCmd.Err(), redis.Nil) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}

	remaining := ttlCmd.Val()
	if remaining <= 0 {
		remaining = c.ttl
	}
	return getCmd.Val(), remaining, true, nil
}

// Set stores value with the cache TTL
func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the key is present
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache key %s: %w", key, err)
	}
	return n > 0, nil
}
