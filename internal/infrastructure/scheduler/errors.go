package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when submitting to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the run queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrJobNotFound is returned for a job name that was never registered
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyRunning is returned when a run of the same job is pending or in progress
	ErrJobAlreadyRunning = errors.New("job already running")

	// ErrJobFailed wraps the outcome of a job whose run reported failure
	ErrJobFailed = errors.New("job failed")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
