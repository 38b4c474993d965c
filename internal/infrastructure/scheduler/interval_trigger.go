package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IntervalSchedule submits a job every Interval
type IntervalSchedule struct {
	JobName    string
	Interval   time.Duration
	RunOnStart bool
}

// IntervalTrigger submits jobs to the scheduler on fixed intervals. A tick that finds the
// previous run of the job still pending or running is skipped.
type IntervalTrigger struct {
	schedules []IntervalSchedule
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a new interval trigger
func NewIntervalTrigger(scheduler *Scheduler, logger *zap.Logger, schedules ...IntervalSchedule) *IntervalTrigger {
	return &IntervalTrigger{
		schedules: schedules,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts one ticker loop per schedule
func (t *IntervalTrigger) Start(ctx context.Context) error {
	for _, sch := range t.schedules {
		if sch.Interval <= 0 || sch.JobName == "" {
			return ErrInvalidConfig
		}
	}

	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	for _, sch := range t.schedules {
		t.wg.Add(1)
		go t.runLoop(ctx, sch)
		t.logger.Info("Interval trigger started",
			zap.String("job", sch.JobName),
			zap.Duration("interval", sch.Interval),
			zap.Bool("run_on_start", sch.RunOnStart),
		)
	}
	return nil
}

// Stop stops all ticker loops
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Interval trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *IntervalTrigger) runLoop(ctx context.Context, sch IntervalSchedule) {
	defer t.wg.Done()

	if sch.RunOnStart {
		t.trigger(sch.JobName)
	}

	ticker := time.NewTicker(sch.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.trigger(sch.JobName)
		}
	}
}

func (t *IntervalTrigger) trigger(jobName string) {
	run, err := t.scheduler.Submit(jobName)
	switch {
	case err == nil:
		t.logger.Debug("Job triggered", zap.String("job", jobName), zap.String("run_id", run.ID.String()))
	case errors.Is(err, ErrJobAlreadyRunning):
		t.logger.Debug("Skipping tick, previous run still in progress", zap.String("job", jobName))
	default:
		t.logger.Warn("Failed to trigger job", zap.String("job", jobName), zap.Error(err))
	}
}
