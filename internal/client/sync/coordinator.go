// Package sync keeps the local store and the remote record backend in sync.
//
// The Coordinator owns two lanes. The local lane runs every operation that
// touches the change buffer, the checkpoint or applies remote data. The
// remote lane runs every backend call, one at a time, and is the queue the
// retry controller suspends. Lanes hand work to each other by enqueueing.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/entity"
)

const (
	// DefaultAuthor is the history author of transactions written by sync
	DefaultAuthor = "sync"
	// DefaultSubscriptionID is the change subscription created on the zone
	DefaultSubscriptionID = "private-changes"
	// DefaultMaxBatchSize is the chunk size used after a batch limit error
	DefaultMaxBatchSize = 400

	opReadHistory = "read-local-history"
)

// Options configures a Coordinator
type Options struct {
	Logger *slog.Logger
	// OnFatal receives failures that stop a sync pass: non-retryable backend
	// errors and protocol violations. Called from a lane goroutine.
	OnFatal        func(error)
	Zone           string
	SubscriptionID string
	Author         string
	MaxBatchSize   int
}

// Coordinator synchronizes one zone
type Coordinator struct {
	lastSync    time.Time
	store       storage.LocalStore
	meta        storage.MetadataStorage
	backend     remote.Backend
	logger      *slog.Logger
	activity    *activity
	localQueue  *OperationQueue
	remoteQueue *OperationQueue
	retry       *RetryController
	bootstrap   *Bootstrapper
	history     *HistoryReader
	buffer      *ChangeBuffer
	uploader    *Uploader
	fetcher     *Fetcher
	unsubscribe func()
	watchDone   chan struct{}
	now         func() time.Time
	opts        Options
	// lastSeen is the newest history token read into the buffer; local lane only
	lastSeen storage.Checkpoint
	startMu  sync.Mutex
	mu       sync.Mutex
	started  bool
	stopped  bool
}

// New creates a coordinator. Nothing runs until Start.
func New(store storage.LocalStore, meta storage.MetadataStorage, backend remote.Backend, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Author == "" {
		opts.Author = DefaultAuthor
	}
	if opts.SubscriptionID == "" {
		opts.SubscriptionID = DefaultSubscriptionID
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	logger := opts.Logger.With("zone", opts.Zone)

	c := &Coordinator{
		store:    store,
		meta:     meta,
		backend:  backend,
		logger:   logger,
		opts:     opts,
		activity: newActivity(),
		now:      time.Now,
	}

	c.localQueue = NewOperationQueue("local", c.activity, logger)
	c.remoteQueue = NewOperationQueue("remote", c.activity, logger)
	c.retry = NewRetryController(c.remoteQueue, logger)
	c.history = NewHistoryReader(store, opts.Author, opts.Zone, logger)
	c.buffer = NewChangeBuffer(meta, store, logger)
	c.uploader = &Uploader{
		backend:      backend,
		store:        store,
		buffer:       c.buffer,
		remoteQueue:  c.remoteQueue,
		localQueue:   c.localQueue,
		retry:        c.retry,
		logger:       logger,
		onFatal:      c.fatal,
		zone:         opts.Zone,
		author:       opts.Author,
		maxBatchSize: opts.MaxBatchSize,
	}
	c.fetcher = &Fetcher{
		backend:     backend,
		store:       store,
		meta:        meta,
		buffer:      c.buffer,
		history:     c.history,
		lastSeen:    func() storage.Checkpoint { return c.lastSeen },
		remoteQueue: c.remoteQueue,
		localQueue:  c.localQueue,
		retry:       c.retry,
		logger:      logger,
		onFatal:     c.fatal,
		onComplete:  c.setLastSync,
		now:         func() time.Time { return c.now() },
		zone:        opts.Zone,
		author:      opts.Author,
	}
	return c
}

// Start verifies the field key registry, provisions the remote environment
// and then begins observing local changes and fetching remote ones.
// A failed Start may be retried.
func (c *Coordinator) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	stopped, started := c.stopped, c.started
	c.mu.Unlock()
	if stopped {
		return ErrQueueClosed
	}
	if started {
		return nil
	}

	registry, err := entity.NewRegistry()
	if err != nil {
		return err
	}
	if err := registry.Verify(ctx, c.meta); err != nil {
		return fmt.Errorf("field key registry check failed: %w", err)
	}

	c.localQueue.Start()
	c.remoteQueue.Start()

	if c.bootstrap == nil {
		c.bootstrap, err = NewBootstrapper(ctx, c.backend, c.meta, c.remoteQueue, c.retry, c.opts.Zone, c.opts.SubscriptionID, c.logger)
		if err != nil {
			return err
		}
	}
	if err := c.bootstrap.Run(ctx); err != nil {
		c.logger.Error("Sync startup aborted", "error", err)
		return err
	}

	checkpoint, err := c.meta.GetCheckpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if checkpoint.IsZero() {
		// Первый запуск: отслеживаем изменения начиная с этого момента
		checkpoint.Watermark = c.now()
		if err := c.meta.SaveCheckpoint(ctx, checkpoint); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
	}
	c.lastSeen = checkpoint

	lastSync, err := c.meta.GetLastSyncCompletion(ctx)
	if err != nil {
		c.logger.Warn("Failed to load last sync completion", "error", err)
	}

	updates, unsubscribe := c.store.Subscribe()
	watchDone := make(chan struct{})

	c.mu.Lock()
	c.lastSync = lastSync
	c.unsubscribe = unsubscribe
	c.watchDone = watchDone
	c.started = true
	c.mu.Unlock()

	go c.watch(updates, watchDone)
	c.logger.Info("Sync started", "checkpoint_token", checkpoint.Token)

	c.scheduleHistoryRead()
	c.fetcher.Request()
	return nil
}

// RespondToRemoteChange fetches remote changes. It is a no-op returning the
// running fetch when one is already in progress.
func (c *Coordinator) RespondToRemoteChange() *Task {
	c.mu.Lock()
	started := c.started && !c.stopped
	c.mu.Unlock()

	if !started {
		return CompletedTask(ErrNotStarted)
	}
	return c.fetcher.Request()
}

// Stop stops scheduling new work. The executing operation of each lane
// finishes; pending ones are dropped.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	unsubscribe, watchDone := c.unsubscribe, c.watchDone
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		<-watchDone
	}
	c.remoteQueue.Close()
	c.localQueue.Close()
	c.logger.Info("Sync stopped")
}

// WaitIdle blocks until no sync work is queued or running
func (c *Coordinator) WaitIdle(ctx context.Context) error {
	return c.activity.wait(ctx)
}

// InProgress reports whether sync work is queued or running
func (c *Coordinator) InProgress() bool {
	return c.activity.busy()
}

// LastSyncCompletion returns when the last fetch completed
func (c *Coordinator) LastSyncCompletion() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

func (c *Coordinator) setLastSync(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSync = t
}

func (c *Coordinator) watch(updates <-chan storage.HistoryToken, done chan struct{}) {
	defer close(done)
	for range updates {
		c.scheduleHistoryRead()
	}
}

// scheduleHistoryRead queues a history read unless one is already waiting
func (c *Coordinator) scheduleHistoryRead() {
	if c.localQueue.HasPending(opReadHistory) {
		return
	}
	c.localQueue.Enqueue(opReadHistory, PriorityNormal, c.readHistory)
}

// readHistory runs on the local lane
func (c *Coordinator) readHistory(ctx context.Context) error {
	cs, err := c.history.Fetch(ctx, c.lastSeen)
	if err != nil {
		c.logger.Error("Failed to read local changes", "error", err)
		return err
	}

	if cs != nil {
		c.lastSeen = storage.Checkpoint{Token: cs.Token}
		c.buffer.Append(cs)
		if cs.IsEmpty() {
			// Нечего загружать, но токен должен продвинуться
			if err := c.buffer.RemoveConfirmed(ctx, cs); err != nil {
				c.logger.Error("Failed to commit empty change set", "error", err)
			}
		} else {
			c.logger.Info("Change set added to buffer", "token", cs.Token, "buffered", c.buffer.Len())
		}
	}

	c.drain(ctx)
	return nil
}

// drain submits an upload for every buffered change set that is not already
// uploading. Runs on the local lane, so only one drain runs at a time.
func (c *Coordinator) drain(ctx context.Context) {
	for _, cs := range c.buffer.Pending() {
		records, deletions, err := c.buildUpload(ctx, cs)
		if err != nil {
			c.logger.Error("Failed to build upload", "token", cs.Token, "error", err)
			c.fatal(err)
			continue
		}

		c.buffer.MarkInFlight(cs)
		c.uploader.Upload(records, deletions, PriorityNormal).OnDone(func(err error) {
			c.localQueue.Enqueue("confirm-upload", PriorityNormal, func(ctx context.Context) error {
				if err != nil {
					c.buffer.MarkFailed(cs)
					return nil
				}
				if err := c.buffer.RemoveConfirmed(ctx, cs); err != nil {
					c.logger.Error("Failed to commit change set", "token", cs.Token, "error", err)
					return err
				}
				return nil
			})
		})
	}
}

// buildUpload turns a change set into records and deletions. Record names
// assigned to newly inserted objects are persisted.
func (c *Coordinator) buildUpload(ctx context.Context, cs *ChangeSet) ([]*remote.Record, []remote.RecordID, error) {
	var records []*remote.Record

	insert := func(tx storage.Tx, v entity.Variant, obj *storage.Object) error {
		named := obj.RecordName != ""
		record, err := v.RecordForInsert(obj, c.opts.Zone)
		if err != nil {
			return err
		}
		if !named {
			if err := tx.Update(obj); err != nil {
				return err
			}
		}
		records = append(records, record)
		return nil
	}

	err := c.store.Update(ctx, c.opts.Author, func(tx storage.Tx) error {
		for _, ref := range cs.Inserts {
			v, obj, err := c.loadObject(tx, ref)
			if err != nil {
				return err
			}
			if obj == nil {
				continue
			}
			if err := insert(tx, v, obj); err != nil {
				return err
			}
		}

		for _, ref := range cs.UpdatedRefs() {
			v, obj, err := c.loadObject(tx, ref)
			if err != nil {
				return err
			}
			if obj == nil {
				continue
			}
			record, err := v.RecordForUpdate(obj, cs.Updates[ref])
			if err != nil {
				return err
			}
			if record == nil {
				// серверная версия неизвестна
				if err := insert(tx, v, obj); err != nil {
					return err
				}
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return records, cs.Deletions, nil
}

// loadObject returns nil for objects deleted since the change was recorded
func (c *Coordinator) loadObject(tx storage.Tx, ref ObjectRef) (entity.Variant, *storage.Object, error) {
	v, err := entity.For(ref.Kind)
	if err != nil {
		return nil, nil, err
	}
	obj, err := tx.Get(ref.ID)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return v, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return v, obj, nil
}

func (c *Coordinator) fatal(err error) {
	c.logger.Error("Sync pass halted", "error", err)
	if c.opts.OnFatal != nil {
		c.opts.OnFatal(err)
	}
}
