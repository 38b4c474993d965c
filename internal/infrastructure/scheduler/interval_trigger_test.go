package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

func TestIntervalTrigger_SubmitsOnEveryTick(t *testing.T) {
	job := &funcJob{name: "tick", run: func(context.Context, int32) error { return nil }}
	s := startScheduler(t, testSchedulerConfig(), job)

	trigger := NewIntervalTrigger(s, zap.NewNop(), IntervalSchedule{JobName: "tick", Interval: 10 * time.Millisecond})
	require.NoError(t, trigger.Start(context.Background()))
	defer func() { _ = trigger.Stop(context.Background()) }()

	require.Eventually(t, func() bool { return job.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestIntervalTrigger_RunOnStart(t *testing.T) {
	job := &funcJob{name: "boot", run: func(context.Context, int32) error { return nil }}
	s := startScheduler(t, testSchedulerConfig(), job)

	trigger := NewIntervalTrigger(s, zap.NewNop(), IntervalSchedule{JobName: "boot", Interval: time.Hour, RunOnStart: true})
	require.NoError(t, trigger.Start(context.Background()))
	defer func() { _ = trigger.Stop(context.Background()) }()

	require.Eventually(t, func() bool { return job.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestIntervalTrigger_InvalidSchedule(t *testing.T) {
	s, err := NewScheduler(testSchedulerConfig(), zap.NewNop())
	require.NoError(t, err)

	trigger := NewIntervalTrigger(s, zap.NewNop(), IntervalSchedule{JobName: "x", Interval: 0})
	assert.ErrorIs(t, trigger.Start(context.Background()), ErrInvalidConfig)
	assert.NoError(t, trigger.Stop(context.Background()))
}

type stubReconciler struct {
	summary *marketplace.ReconcileSummary
}

func (s stubReconciler) ReconcileAll(context.Context) *marketplace.ReconcileSummary {
	return s.summary
}

func (s stubReconciler) ReconcileAccount(_ context.Context, account marketplace.Account) marketplace.AccountReconcileResult {
	return marketplace.AccountReconcileResult{Account: account, Success: true}
}

// flakyReconciler fails shop-b on the full pass and counts every per-account retry
type flakyReconciler struct {
	mu         sync.Mutex
	fullRuns   int
	accountRun map[marketplace.Account]int
}

func (f *flakyReconciler) ReconcileAll(context.Context) *marketplace.ReconcileSummary {
	f.mu.Lock()
	f.fullRuns++
	f.mu.Unlock()
	now := time.Now()
	return marketplace.NewReconcileSummary([]marketplace.AccountReconcileResult{
		{Account: "shop-a", Success: true, Updated: 3},
		{Account: "shop-b", Success: false, Message: "authentication failed"},
		{Account: "shop-c", Success: true, NothingToDo: true},
	}, now, now)
}

func (f *flakyReconciler) ReconcileAccount(_ context.Context, account marketplace.Account) marketplace.AccountReconcileResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountRun[account]++
	return marketplace.AccountReconcileResult{Account: account, Success: true, Updated: 1}
}

type stubResyncer struct {
	results []*marketplace.SyncResult
}

func (s stubResyncer) ResyncAll(context.Context) []*marketplace.SyncResult {
	return s.results
}

func TestReconcileJob_Run(t *testing.T) {
	now := time.Now()
	ok := marketplace.NewReconcileSummary([]marketplace.AccountReconcileResult{
		{Account: "shop-a", Success: true, Updated: 2},
	}, now, now)
	failed := marketplace.NewReconcileSummary([]marketplace.AccountReconcileResult{
		{Account: "shop-a", Success: true},
		{Account: "shop-b", Success: false, Message: "authentication failed"},
	}, now, now)

	job := NewReconcileJob(stubReconciler{summary: ok}, zap.NewNop())
	assert.Equal(t, JobReconcileShipments, job.Name())
	assert.NoError(t, job.Run(context.Background()))

	job = NewReconcileJob(stubReconciler{summary: failed}, zap.NewNop())
	err := job.Run(context.Background())
	assert.ErrorIs(t, err, ErrJobFailed)
	assert.Contains(t, err.Error(), "1 failed")
	assert.Contains(t, err.Error(), "shop-b")
}

func TestReconcileJob_RetryCoversOnlyFailedAccounts(t *testing.T) {
	reconciler := &flakyReconciler{accountRun: map[marketplace.Account]int{}}
	job := NewReconcileJob(reconciler, zap.NewNop())
	s := startScheduler(t, testSchedulerConfig(), job)

	_, err := s.Submit(JobReconcileShipments)
	require.NoError(t, err)

	run := waitLastRun(t, s, JobReconcileShipments)
	assert.Equal(t, JobStatusSuccess, run.Status)
	assert.Equal(t, 1, run.RetryCount)

	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	assert.Equal(t, 1, reconciler.fullRuns)
	assert.Equal(t, map[marketplace.Account]int{"shop-b": 1}, reconciler.accountRun)
}

func TestReconcileJob_FirstAttemptAlwaysCoversAllAccounts(t *testing.T) {
	reconciler := &flakyReconciler{accountRun: map[marketplace.Account]int{}}
	job := NewReconcileJob(reconciler, zap.NewNop())

	require.Error(t, job.Run(context.Background()))
	// a fresh trigger starts over even though shop-b is still remembered as failed
	require.Error(t, job.Run(context.Background()))

	assert.Equal(t, 2, reconciler.fullRuns)
	assert.Empty(t, reconciler.accountRun)
}

func TestResyncJob_Run(t *testing.T) {
	tests := []struct {
		name    string
		results []*marketplace.SyncResult
		wantErr bool
	}{
		{
			name:    "all succeeded",
			results: []*marketplace.SyncResult{{Account: "shop-a", Status: marketplace.SyncStatusSuccess}},
		},
		{
			name:    "partial is not retried",
			results: []*marketplace.SyncResult{{Account: "shop-a", Status: marketplace.SyncStatusPartial, FailedCount: 1}},
		},
		{
			name: "failed account fails the run",
			results: []*marketplace.SyncResult{
				{Account: "shop-a", Status: marketplace.SyncStatusSuccess},
				{Account: "shop-b", Status: marketplace.SyncStatusFailed},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewResyncJob(stubResyncer{results: tt.results}, zap.NewNop())
			assert.Equal(t, JobResyncOrders, job.Name())
			err := job.Run(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrJobFailed)
				assert.Contains(t, err.Error(), "shop-b")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
