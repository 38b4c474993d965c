package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

// Job names
const (
	JobReconcileShipments = "reconcile-shipments"
	JobResyncOrders       = "resync-orders"
)

// ShipmentReconciler runs reconciliation passes over all configured accounts or one account
type ShipmentReconciler interface {
	ReconcileAll(ctx context.Context) *marketplace.ReconcileSummary
	ReconcileAccount(ctx context.Context, account marketplace.Account) marketplace.AccountReconcileResult
}

// OrderResyncer re-syncs the orders of all configured accounts
type OrderResyncer interface {
	ResyncAll(ctx context.Context) []*marketplace.SyncResult
}

// ReconcileJob adapts a ShipmentReconciler to a Job. A run fails when any account failed.
// The first attempt covers every account; retries cover only the accounts that failed.
type ReconcileJob struct {
	reconciler ShipmentReconciler
	logger     *zap.Logger

	mu     sync.Mutex
	failed []marketplace.Account
}

// NewReconcileJob creates the reconcile-shipments job
func NewReconcileJob(reconciler ShipmentReconciler, logger *zap.Logger) *ReconcileJob {
	return &ReconcileJob{reconciler: reconciler, logger: logger}
}

func (j *ReconcileJob) Name() string { return JobReconcileShipments }

func (j *ReconcileJob) Run(ctx context.Context) error {
	attempt := Attempt(ctx)

	j.mu.Lock()
	retry := j.failed
	j.mu.Unlock()

	var summary *marketplace.ReconcileSummary
	if attempt > 1 && len(retry) > 0 {
		summary = j.reconcileAccounts(ctx, retry)
	} else {
		summary = j.reconciler.ReconcileAll(ctx)
	}

	var failed []marketplace.Account
	for _, r := range summary.Accounts {
		if !r.Success {
			failed = append(failed, r.Account)
		}
	}
	j.mu.Lock()
	j.failed = failed
	j.mu.Unlock()

	j.logger.Info("Scheduled reconciliation finished",
		zap.Int("attempt", attempt),
		zap.Bool("success", summary.Success),
		zap.Int("accounts", len(summary.Accounts)),
		zap.Int("matched", summary.Matched),
		zap.Int("updated", summary.Updated),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	if !summary.Success {
		return fmt.Errorf("%w: %s, failed account(s) %v", ErrJobFailed, summary.Message, failed)
	}
	return nil
}

func (j *ReconcileJob) reconcileAccounts(ctx context.Context, accounts []marketplace.Account) *marketplace.ReconcileSummary {
	startedAt := time.Now()
	results := make([]marketplace.AccountReconcileResult, 0, len(accounts))
	for _, account := range accounts {
		results = append(results, j.reconciler.ReconcileAccount(ctx, account))
	}
	return marketplace.NewReconcileSummary(results, startedAt, time.Now())
}

// ResyncJob adapts an OrderResyncer to a Job. Only accounts that failed outright fail the
// run; partial results are reported but not retried.
type ResyncJob struct {
	resyncer OrderResyncer
	logger   *zap.Logger
}

// NewResyncJob creates the resync-orders job
func NewResyncJob(resyncer OrderResyncer, logger *zap.Logger) *ResyncJob {
	return &ResyncJob{resyncer: resyncer, logger: logger}
}

func (j *ResyncJob) Name() string { return JobResyncOrders }

func (j *ResyncJob) Run(ctx context.Context) error {
	var failed []string
	for _, r := range j.resyncer.ResyncAll(ctx) {
		j.logger.Info("Scheduled re-sync finished",
			zap.String("account", r.Account.String()),
			zap.String("status", string(r.Status)),
			zap.Int("created", r.CreatedCount),
			zap.Int("updated", r.UpdatedCount),
			zap.Int("failed", r.FailedCount),
		)
		if r.Status == marketplace.SyncStatusFailed {
			failed = append(failed, r.Account.String())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: re-sync failed for account(s) %v", ErrJobFailed, failed)
	}
	return nil
}
