package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// enqueuer is the subset of *asynq.Client the Client uses
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueues marketplace tasks. A disabled client rejects every task with
// ErrQueueDisabled so callers can fall back to running the work inline.
type Client struct {
	client  enqueuer
	config  Config
	logger  *zap.Logger
	enabled bool
}

// NewClient creates a queue client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if !cfg.Enabled {
		return &Client{config: cfg, logger: logger}
	}
	return &Client{
		client:  asynq.NewClient(cfg.redisOpt()),
		config:  cfg,
		logger:  logger,
		enabled: true,
	}
}

// Enabled reports whether tasks are enqueued
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close closes the redis connection
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueReconcileOrders enqueues a targeted reconciliation and returns the task id
func (c *Client) EnqueueReconcileOrders(ctx context.Context, payload ReconcileOrdersPayload, opts ...asynq.Option) (string, error) {
	if !c.Enabled() {
		return "", ErrQueueDisabled
	}
	task, err := NewReconcileOrdersTask(payload)
	if err != nil {
		return "", err
	}

	options := append([]asynq.Option{
		asynq.Queue(c.config.QueueName),
		asynq.MaxRetry(c.config.MaxRetry),
		asynq.Timeout(c.config.TaskTimeout),
	}, opts...)
	info, err := c.client.EnqueueContext(ctx, task, options...)
	if err != nil {
		c.logger.Warn("Failed to enqueue reconcile task",
			zap.String("account", payload.Account),
			zap.Int("orders", len(payload.OrderIDs)),
			zap.Error(err),
		)
		return "", err
	}

	c.logger.Info("Reconcile task enqueued",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
		zap.String("account", payload.Account),
		zap.Int("orders", len(payload.OrderIDs)),
	)
	return info.ID, nil
}
