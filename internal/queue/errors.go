package queue

import (
	"fmt"

	"github.com/rohmanhakim/search-engine-core/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseJobNotFound   ErrorCause = "job not found"
	ErrCauseEnqueueFailed ErrorCause = "enqueue failed"
	ErrCauseDequeueFailed ErrorCause = "dequeue failed"
)

// QueueError reports a failure talking to the backing Redis store. It is
// never retried by the caller; the worker loop's own retry/requeue logic
// operates one level up, on Job.Attempts.
type QueueError struct {
	Message string
	Cause   ErrorCause
	Err     error
}

func (e *QueueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("queue error: %s: %s: %s", e.Cause, e.Message, e.Err)
	}
	return fmt.Sprintf("queue error: %s: %s", e.Cause, e.Message)
}

func (e *QueueError) Unwrap() error {
	return e.Err
}

func (e *QueueError) Severity() failure.Severity {
	return failure.SeverityFatal
}
