package queue

import "errors"

var (
	// ErrQueueDisabled is returned when enqueueing on a disabled client
	ErrQueueDisabled = errors.New("task queue is disabled")

	// ErrInvalidPayload is returned for task bodies that cannot be processed
	ErrInvalidPayload = errors.New("invalid task payload")
)
