package queue

import (
	"time"

	"github.com/hibiken/asynq"
)

// Config holds the asynq connection and server settings
type Config struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	QueueName     string
	TaskTimeout   time.Duration
	MaxRetry      int
}

const (
	defaultQueueName   = "marketplace"
	defaultConcurrency = 2
	defaultTaskTimeout = 5 * time.Minute
	defaultMaxRetry    = 5
)

func (c Config) withDefaults() Config {
	if c.RedisAddr == "" {
		c.RedisAddr = "127.0.0.1:6379"
	}
	if c.QueueName == "" {
		c.QueueName = defaultQueueName
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = defaultTaskTimeout
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = defaultMaxRetry
	}
	return c
}

func (c Config) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// BuildServerConfig returns the redis options and server config for the worker
func BuildServerConfig(cfg Config) (asynq.RedisClientOpt, asynq.Config) {
	cfg = cfg.withDefaults()
	return cfg.redisOpt(), asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.QueueName: 1},
	}
}
