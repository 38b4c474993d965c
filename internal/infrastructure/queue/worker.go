package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/telemetry"
)

// OrderReconciler reconciles shipments for specific orders of one account
type OrderReconciler interface {
	ReconcileOrders(ctx context.Context, orderIDs []string, account marketplace.Account) (*marketplace.AccountReconcileResult, error)
}

// Worker consumes marketplace tasks
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	reconciler OrderReconciler
	logger     *zap.Logger
}

// NewWorker creates an asynq server with the marketplace handlers registered
func NewWorker(cfg Config, reconciler OrderReconciler, logger *zap.Logger) (*Worker, error) {
	if !cfg.Enabled {
		return nil, ErrQueueDisabled
	}
	if reconciler == nil {
		return nil, errors.New("reconciler is nil")
	}

	w := &Worker{
		reconciler: reconciler,
		logger:     logger,
		mux:        asynq.NewServeMux(),
	}
	opt, serverCfg := BuildServerConfig(cfg)
	serverCfg.Logger = logger.Sugar()
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(w.handleError)
	w.server = asynq.NewServer(opt, serverCfg)
	w.Register(w.mux)
	return w, nil
}

// Register adds the task handlers to mux
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskReconcileOrders, w.HandleReconcileOrders)
}

// Start runs the server in the background
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start task worker: %w", err)
	}
	w.logger.Info("Task worker started")
	return nil
}

// Stop waits for in-flight tasks and shuts the server down
func (w *Worker) Stop() {
	w.server.Shutdown()
	w.logger.Info("Task worker stopped")
}

// HandleReconcileOrders processes a TaskReconcileOrders task. Bad payloads and invalid
// arguments are not retried; an unsuccessful reconciliation is.
func (w *Worker) HandleReconcileOrders(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcileOrdersPayload(task)
	if err != nil {
		w.logger.Warn("Dropping reconcile task with invalid payload", zap.Error(err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	ctx, span := telemetry.StartSpan(ctx, "task."+TaskReconcileOrders,
		telemetry.WithSpanKind(trace.SpanKindConsumer),
		telemetry.WithAttribute(telemetry.SpanAttrTaskType, TaskReconcileOrders),
		telemetry.WithAttribute(telemetry.SpanAttrAccount, payload.Account),
		telemetry.WithAttribute(telemetry.SpanAttrOrderIDs, payload.OrderIDs),
	)
	defer span.End()

	result, err := w.reconciler.ReconcileOrders(ctx, payload.OrderIDs, marketplace.Account(payload.Account))
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, marketplace.ErrInvalidArgument) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	if !result.Success {
		err := fmt.Errorf("reconcile of account %s failed: %s", payload.Account, result.Message)
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetOK(span)
	w.logger.Info("Reconcile task finished",
		zap.String("account", payload.Account),
		zap.Int("orders", result.OrdersConsidered),
		zap.Int("matched", result.Matched),
		zap.Int("updated", result.Updated),
	)
	return nil
}

func (w *Worker) handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	w.logger.Warn("Task failed",
		zap.String("type", task.Type()),
		zap.Int("retried", retried),
		zap.Int("max_retry", maxRetry),
		zap.Error(err),
	)
}
