package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shipdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory builds the process-wide caches from configuration
type Factory struct {
	redisConfig config.RedisConfig
	useRedis    bool
	logger      *zap.Logger

	client *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithRedis enables the shared L2 tier
func WithRedis(enabled bool) FactoryOption {
	return func(f *Factory) {
		f.useRedis = enabled
	}
}

// NewFactory creates a new factory. When Redis is enabled but unreachable, caches fall
// back to the local tier only.
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.useRedis {
		client, err := NewRedisClient(RedisConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			f.logger.Warn("Redis unavailable, caches fall back to in-memory only. "+
				"Tokens and images will not be shared across instances.",
				zap.Error(err),
			)
		} else {
			f.client = client
			f.logger.Info("Using Redis as L2 cache tier")
		}
	}

	return f
}

// Create builds a named tiered cache whose entries live for ttl
func (f *Factory) Create(name string, ttl time.Duration) *TieredCache {
	opts := []TieredCacheOption{WithTieredLogger(f.logger)}
	if f.client != nil {
		opts = append(opts, WithL2(NewRedisCache(f.client, "shipdesk:"+name+":", ttl)))
	}
	return NewTieredCache(name, NewTTLCache[string](ttl), opts...)
}

// Client returns the shared Redis client, or nil when caches are local only
func (f *Factory) Client() *redis.Client {
	return f.client
}

// Close releases the Redis connection if one was opened
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
