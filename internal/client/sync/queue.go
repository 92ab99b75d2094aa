package sync

import (
	"context"
	"log/slog"
	"sync"
)

// Priority orders pending operations of a queue
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

type operation struct {
	fn       func(ctx context.Context) error
	task     *Task
	name     string
	priority Priority
}

// OperationQueue runs operations one at a time. Pending operations run in
// submission order, higher priority first. A suspended queue finishes the
// executing operation and starts nothing new until resumed.
type OperationQueue struct {
	logger    *slog.Logger
	cond      *sync.Cond
	activity  *activity
	executing *operation
	done      chan struct{}
	name      string
	pending   []*operation
	mu        sync.Mutex
	suspended bool
	closed    bool
	started   bool
}

// NewOperationQueue creates a stopped queue. Operations of every queue sharing
// act are counted together for idle detection.
func NewOperationQueue(name string, act *activity, logger *slog.Logger) *OperationQueue {
	q := &OperationQueue{
		name:     name,
		activity: act,
		logger:   logger.With("queue", name),
		done:     make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start launches the worker goroutine
func (q *OperationQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go q.run()
}

// Enqueue schedules fn and returns its task. fn receives a context that is
// never cancelled: in-flight operations always run to completion.
func (q *OperationQueue) Enqueue(name string, priority Priority, fn func(ctx context.Context) error) *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return CompletedTask(ErrQueueClosed)
	}

	op := &operation{name: name, priority: priority, fn: fn, task: newTask()}
	q.pending = append(q.pending, op)
	q.activity.add()
	q.cond.Signal()
	return op.task
}

// Suspend stops starting new operations
func (q *OperationQueue) Suspend() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.suspended {
		q.logger.Info("Queue suspended", "pending", len(q.pending))
	}
	q.suspended = true
}

// Resume continues with pending operations in their original order
func (q *OperationQueue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.suspended {
		q.logger.Info("Queue resumed", "pending", len(q.pending))
	}
	q.suspended = false
	q.cond.Broadcast()
}

// isSuspended reports whether the queue is suspended
func (q *OperationQueue) isSuspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// HasPending reports whether an operation with the given name is waiting to
// run (queued, not executing)
func (q *OperationQueue) HasPending(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, op := range q.pending {
		if op.name == name {
			return true
		}
	}
	return false
}

// Len returns the number of queued and executing operations
func (q *OperationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	if q.executing != nil {
		n++
	}
	return n
}

// Close waits for the executing operation, drops the pending ones with
// ErrQueueClosed and stops the worker
func (q *OperationQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	started := q.started
	q.cond.Broadcast()
	q.mu.Unlock()

	if started {
		<-q.done
		return
	}
	q.dropPending()
}

func (q *OperationQueue) run() {
	defer close(q.done)

	ctx := context.Background()
	for {
		op := q.next()
		if op == nil {
			q.dropPending()
			return
		}

		err := op.fn(ctx)
		if err != nil {
			q.logger.Debug("Operation failed", "operation", op.name, "error", err)
		}
		op.task.complete(err)

		q.mu.Lock()
		q.executing = nil
		q.mu.Unlock()
		q.activity.done()
	}
}

// next blocks until an operation may run; nil once the queue is closed
func (q *OperationQueue) next() *operation {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && (q.suspended || len(q.pending) == 0) {
		q.cond.Wait()
	}
	if q.closed {
		return nil
	}

	best := 0
	for i, op := range q.pending {
		if op.priority > q.pending[best].priority {
			best = i
		}
	}
	op := q.pending[best]
	q.pending = append(q.pending[:best], q.pending[best+1:]...)
	q.executing = op
	return op
}

func (q *OperationQueue) dropPending() {
	q.mu.Lock()
	dropped := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, op := range dropped {
		op.task.complete(ErrQueueClosed)
		q.activity.done()
	}
}

// activity counts unfinished operations across queues. An operation that
// schedules a follow-up on another queue does so before it finishes, so the
// count only reaches zero when a whole chain is done.
type activity struct {
	idle chan struct{}
	mu   sync.Mutex
	n    int
}

func newActivity() *activity {
	idle := make(chan struct{})
	close(idle)
	return &activity{idle: idle}
}

func (a *activity) add() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.n == 0 {
		a.idle = make(chan struct{})
	}
	a.n++
}

func (a *activity) done() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.n--
	if a.n == 0 {
		close(a.idle)
	}
}

func (a *activity) busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n > 0
}

// wait blocks until no operation is unfinished
func (a *activity) wait(ctx context.Context) error {
	a.mu.Lock()
	idle := a.idle
	a.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
