package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/infrastructure/telemetry"
)

// JobStatus represents the status of a job run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a named unit of background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type attemptKey struct{}

// Attempt returns the 1-based attempt number of the job run executing under ctx.
// Outside a scheduled run it returns 1.
func Attempt(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok && n > 0 {
		return n
	}
	return 1
}

// JobRun tracks one triggered execution of a job, including its retries
type JobRun struct {
	ID          uuid.UUID  `json:"id"`
	JobName     string     `json:"job_name"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}

// NewJobRun creates a pending run
func NewJobRun(jobName string, maxRetries int) *JobRun {
	return &JobRun{
		ID:         uuid.New(),
		JobName:    jobName,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the run as running
func (r *JobRun) Start(now time.Time) {
	r.Status = JobStatusRunning
	r.StartedAt = &now
	r.CompletedAt = nil
	r.Error = ""
}

// Complete marks the run as successful
func (r *JobRun) Complete(now time.Time) {
	r.Status = JobStatusSuccess
	r.CompletedAt = &now
	r.NextRetryAt = nil
}

// Fail marks the run as failed
func (r *JobRun) Fail(now time.Time, err string) {
	r.Status = JobStatusFailed
	r.CompletedAt = &now
	r.Error = err
}

// ShouldRetry returns true if the failed run has retries left
func (r *JobRun) ShouldRetry() bool {
	return r.Status == JobStatusFailed && r.RetryCount < r.MaxRetries
}

// ScheduleRetry moves the run back to pending and returns the backoff delay:
// baseDelay * 2^(retryCount-1), capped at maxDelay when maxDelay is positive.
func (r *JobRun) ScheduleRetry(now time.Time, baseDelay, maxDelay time.Duration) time.Duration {
	r.RetryCount++
	r.Status = JobStatusPending
	delay := baseDelay * time.Duration(1<<(r.RetryCount-1))
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	next := now.Add(delay)
	r.NextRetryAt = &next
	return delay
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	MaxRetryDelay     time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        5 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        30 * time.Second,
		MaxRetryDelay:     10 * time.Minute,
	}
}

// Validate validates the configuration
func (c SchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs <= 0 || c.JobTimeout <= 0 || c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Scheduler runs registered jobs on a worker pool. Each run executes under the job
// timeout and is retried with exponential backoff until it succeeds or runs out of
// attempts. At most one run per job is pending or running at a time.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger
	now    func() time.Time

	jobs     map[string]Job
	queue    chan *JobRun
	inFlight map[string]*JobRun
	lastRuns map[string]JobRun

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		config:   config,
		logger:   logger,
		now:      time.Now,
		jobs:     make(map[string]Job),
		queue:    make(chan *JobRun, 32),
		inFlight: make(map[string]*JobRun),
		lastRuns: make(map[string]JobRun),
	}, nil
}

// Register adds a job. Registering a name twice replaces the earlier job.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name()] = job
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Int("retry_attempts", s.config.RetryAttempts),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a new run of the named job
func (s *Scheduler) Submit(jobName string) (*JobRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil, ErrSchedulerNotRunning
	}
	if _, ok := s.jobs[jobName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}
	if _, busy := s.inFlight[jobName]; busy {
		return nil, fmt.Errorf("%w: %s", ErrJobAlreadyRunning, jobName)
	}

	run := NewJobRun(jobName, s.config.RetryAttempts)
	select {
	case s.queue <- run:
	default:
		return nil, ErrJobQueueFull
	}
	s.inFlight[jobName] = run
	s.logger.Debug("Job submitted",
		zap.String("run_id", run.ID.String()),
		zap.String("job", jobName),
	)
	return run, nil
}

// LastRun returns a snapshot of the most recent finished run of the job
func (s *Scheduler) LastRun(jobName string) (JobRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.lastRuns[jobName]
	return run, ok
}

// JobNames returns the registered job names
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case run := <-s.queue:
			s.processRun(ctx, run, workerID)
		}
	}
}

func (s *Scheduler) processRun(ctx context.Context, run *JobRun, workerID int) {
	s.mu.Lock()
	job := s.jobs[run.JobName]
	s.mu.Unlock()

	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("run_id", run.ID.String()),
		zap.String("job", run.JobName),
		zap.Int("attempt", run.RetryCount+1),
	)

	run.Start(s.now())
	log.Info("Processing job")

	err := s.execute(ctx, job, run)
	if err == nil {
		run.Complete(s.now())
		log.Info("Job completed successfully")
		s.finish(run)
		return
	}

	run.Fail(s.now(), err.Error())
	log.Error("Job failed", zap.Error(err))

	if !run.ShouldRetry() || ctx.Err() != nil {
		s.finish(run)
		return
	}

	delay := run.ScheduleRetry(s.now(), s.config.RetryDelay, s.config.MaxRetryDelay)
	log.Info("Job scheduled for retry",
		zap.Int("retry_count", run.RetryCount),
		zap.Int("max_retries", run.MaxRetries),
		zap.Duration("delay", delay),
	)
	s.wg.Add(1)
	go s.requeueAfter(ctx, run, delay)
}

func (s *Scheduler) execute(ctx context.Context, job Job, run *JobRun) (err error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	jobCtx, span := telemetry.StartSpan(jobCtx, "job."+run.JobName,
		telemetry.WithAttribute(telemetry.SpanAttrJob, run.JobName),
		telemetry.WithAttribute(telemetry.SpanAttrAttempt, run.RetryCount+1),
		telemetry.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrJobFailed, r)
		}
		if err != nil {
			telemetry.RecordError(span, err)
		}
	}()

	return job.Run(context.WithValue(jobCtx, attemptKey{}, run.RetryCount+1))
}

func (s *Scheduler) requeueAfter(ctx context.Context, run *JobRun, delay time.Duration) {
	defer s.wg.Done()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.finish(run)
		return
	case <-timer.C:
	}

	select {
	case s.queue <- run:
	case <-ctx.Done():
		s.finish(run)
	}
}

func (s *Scheduler) finish(run *JobRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, run.JobName)
	s.lastRuns[run.JobName] = *run
}
