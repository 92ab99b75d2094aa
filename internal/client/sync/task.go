package sync

import (
	"context"
	"errors"
	"sync"
)

// Task is the future of an asynchronous operation
type Task struct {
	err       error
	done      chan struct{}
	callbacks []func(error)
	mu        sync.Mutex
	completed bool
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// CompletedTask returns a task that is already done with err
func CompletedTask(err error) *Task {
	t := newTask()
	t.complete(err)
	return t
}

// Done is closed when the task completes
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the result of a completed task, nil while it is running
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until the task completes or ctx is done
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnDone registers fn to run once the task completes. fn runs on the
// completing goroutine and must not block.
func (t *Task) OnDone(fn func(error)) {
	t.mu.Lock()
	if t.completed {
		err := t.err
		t.mu.Unlock()
		fn(err)
		return
	}
	t.callbacks = append(t.callbacks, fn)
	t.mu.Unlock()
}

func (t *Task) complete(err error) {
	t.mu.Lock()
	if t.completed {
		t.mu.Unlock()
		return
	}
	t.completed = true
	t.err = err
	callbacks := t.callbacks
	t.callbacks = nil
	t.mu.Unlock()

	close(t.done)
	for _, fn := range callbacks {
		fn(err)
	}
}

// joinTasks returns a task completing after all tasks, with the first error
func joinTasks(tasks ...*Task) *Task {
	joined := newTask()
	if len(tasks) == 0 {
		joined.complete(nil)
		return joined
	}

	var (
		mu       sync.Mutex
		firstErr error
		left     = len(tasks)
	)
	for _, t := range tasks {
		t.OnDone(func(err error) {
			mu.Lock()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			left--
			last := left == 0
			result := firstErr
			mu.Unlock()

			if last {
				joined.complete(result)
			}
		})
	}
	return joined
}

// enqueueFor schedules fn on q as one step of task. task fails with
// ErrQueueClosed if q drops the step.
func enqueueFor(task *Task, q *OperationQueue, name string, priority Priority, fn func(ctx context.Context) error) {
	q.Enqueue(name, priority, fn).OnDone(func(err error) {
		if errors.Is(err, ErrQueueClosed) {
			task.complete(err)
		}
	})
}
