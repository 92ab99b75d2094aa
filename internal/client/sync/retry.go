package sync

import (
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/shelfsync/internal/client/remote"
)

// RetryController decides whether a remote failure may be retried and, if
// so, suspends the remote queue for the delay the backend asked for.
//
// Only errors carrying an explicit backend delay are retryable. The caller
// resubmits its own operation; it waits behind the suspended queue.
type RetryController struct {
	resumeAt  time.Time
	queue     *OperationQueue
	logger    *slog.Logger
	now       func() time.Time
	afterFunc func(d time.Duration, f func())
	mu        sync.Mutex
}

// NewRetryController creates a controller suspending queue
func NewRetryController(queue *OperationQueue, logger *slog.Logger) *RetryController {
	return &RetryController{
		queue:  queue,
		logger: logger,
		now:    time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// ShouldRetry returns the backend-supplied delay of err and suspends the
// queue for it. Returns false for errors that must not be retried.
func (r *RetryController) ShouldRetry(err error) (time.Duration, bool) {
	delay, ok := remote.RetryAfterOf(err)
	if !ok {
		r.logger.Error("Error is not recoverable", "error", err)
		return 0, false
	}

	r.logger.Warn("Error is recoverable, suspending remote operations", "retry_after", delay, "error", err)

	r.mu.Lock()
	// Повторные ошибки только продлевают паузу
	if until := r.now().Add(delay); until.After(r.resumeAt) {
		r.resumeAt = until
	}
	r.mu.Unlock()

	r.queue.Suspend()
	r.afterFunc(delay, r.resume)
	return delay, true
}

func (r *RetryController) resume() {
	r.mu.Lock()
	early := r.now().Before(r.resumeAt)
	r.mu.Unlock()
	if early {
		return
	}
	r.queue.Resume()
}
