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

const opFetchChanges = "fetch-changes"

// Fetcher pulls the remote change feed page by page and applies it locally.
// At most one fetch runs at a time.
type Fetcher struct {
	backend     remote.Backend
	store       storage.LocalStore
	meta        storage.MetadataStorage
	buffer      *ChangeBuffer
	history     *HistoryReader
	// lastSeen returns the newest checkpoint read into the buffer; called on
	// the local lane
	lastSeen    func() storage.Checkpoint
	remoteQueue *OperationQueue
	localQueue  *OperationQueue
	retry       *RetryController
	logger      *slog.Logger
	onFatal     func(error)
	onComplete  func(time.Time)
	now         func() time.Time
	current     *Task
	zone        string
	author      string
	mu          sync.Mutex
}

// Request starts a fetch unless one is already running, in which case the
// running fetch's task is returned
func (f *Fetcher) Request() *Task {
	f.mu.Lock()
	if f.current != nil {
		current := f.current
		f.mu.Unlock()
		f.logger.Debug("Skipping fetch request, one is already running")
		return current
	}
	task := newTask()
	f.current = task
	f.mu.Unlock()

	task.OnDone(func(error) {
		f.mu.Lock()
		f.current = nil
		f.mu.Unlock()
	})

	f.enqueuePage(task)
	return task
}

func (f *Fetcher) enqueuePage(task *Task) {
	enqueueFor(task, f.remoteQueue, opFetchChanges, PriorityNormal, func(ctx context.Context) error {
		token, err := f.meta.GetChangeToken(ctx)
		if err != nil {
			f.fail(task, fmt.Errorf("failed to load change token: %w", err))
			return err
		}

		page, err := f.backend.FetchChanges(ctx, f.zone, token)
		if err != nil {
			f.handleError(ctx, err, task)
			return err
		}

		f.logger.Debug("Fetched change page",
			"changed", len(page.Changed),
			"deleted", len(page.Deleted),
			"more_coming", page.MoreComing)

		enqueueFor(task, f.localQueue, "apply-remote-changes", PriorityNormal, func(ctx context.Context) error {
			if err := f.apply(ctx, page); err != nil {
				f.fail(task, err)
				return err
			}
			if page.MoreComing {
				f.enqueuePage(task)
				return nil
			}
			f.finish(ctx, task)
			return nil
		})
		return nil
	})
}

// handleError runs on the remote lane
func (f *Fetcher) handleError(ctx context.Context, err error, task *Task) {
	if remote.CodeOf(err) == remote.CodeChangeTokenExpired {
		f.logger.Warn("Change token expired, fetching from the beginning")
		if err := f.meta.SaveChangeToken(ctx, ""); err != nil {
			f.fail(task, fmt.Errorf("failed to reset change token: %w", err))
			return
		}
		f.enqueuePage(task)
		return
	}

	if _, ok := f.retry.ShouldRetry(err); ok {
		f.enqueuePage(task)
		return
	}
	f.fail(task, fmt.Errorf("failed to fetch remote changes: %w", err))
}

func (f *Fetcher) finish(ctx context.Context, task *Task) {
	completed := f.now()
	if err := f.meta.SaveLastSyncCompletion(ctx, completed); err != nil {
		f.logger.Warn("Failed to save last sync completion", "error", err)
	}
	f.logger.Info("Finished fetching remote changes")
	if f.onComplete != nil {
		f.onComplete(completed)
	}
	task.complete(nil)
}

// apply commits one page and its token in a single local transaction.
// Records that cannot be decoded are logged and skipped.
//
// Local edits committed but not yet read into the buffer are reduced inside
// the same transaction, so they are protected like buffered ones.
func (f *Fetcher) apply(ctx context.Context, page *remote.ChangesPage) error {
	err := f.store.Update(ctx, f.author, func(tx storage.Tx) error {
		transactions, err := tx.History(f.lastSeen())
		if err != nil {
			return err
		}
		unread := f.history.Reduce(transactions)

		for _, record := range page.Changed {
			if err := f.applyRecord(tx, record, unread); err != nil {
				if isStoreError(err) {
					return err
				}
				f.logger.Error("Failed to apply remote record, skipping",
					"record", record.ID.RecordName,
					"type", record.ID.RecordType,
					"error", err)
			}
		}

		for _, deleted := range page.Deleted {
			if err := f.applyDeletion(tx, deleted.ID); err != nil {
				return err
			}
		}

		return tx.SetChangeToken(page.Token)
	})
	if err != nil {
		return fmt.Errorf("failed to apply remote changes: %w", err)
	}
	return nil
}

func (f *Fetcher) applyRecord(tx storage.Tx, record *remote.Record, unread *ChangeSet) error {
	v, err := entity.ForRecordType(record.ID.RecordType)
	if err != nil {
		return err
	}

	obj, err := f.lookup(tx, v, record)
	if err != nil {
		return err
	}

	if obj == nil {
		if f.buffer.Deletes(record.ID) || unread.Deletes(record.ID) {
			f.logger.Debug("Local object was deleted, skipping remote update", "record", record.ID.RecordName)
			return nil
		}

		obj = &storage.Object{Kind: v.Kind()}
		if _, err := v.ApplyRemoteRecord(obj, record, 0); err != nil {
			return err
		}
		entity.SetSystemMetadata(obj, record)
		f.logger.Info("Creating local object for remote record", "record", record.ID.RecordName, "type", record.ID.RecordType)
		return storeErr(tx.Insert(obj))
	}

	ref := ObjectRef{ID: obj.ID, Kind: obj.Kind}
	excluding := obj.PendingMask.Union(f.buffer.PendingMask(ref)).Union(unread.Updates[ref])
	properties, err := v.ApplyRemoteRecord(obj, record, excluding)
	if err != nil {
		return err
	}
	entity.SetSystemMetadata(obj, record)
	f.logger.Debug("Updated local object from remote record",
		"record", record.ID.RecordName,
		"excluded", v.Table().String(excluding))
	return storeErr(tx.Update(obj, properties...))
}

// lookup finds the local object of record by remote identity, then by
// content among objects without one. nil when there is none.
func (f *Fetcher) lookup(tx storage.Tx, v entity.Variant, record *remote.Record) (*storage.Object, error) {
	obj, err := tx.FindByRecordName(v.Kind(), record.ID.RecordName)
	if err == nil {
		return obj, nil
	}
	if !errors.Is(err, storage.ErrObjectNotFound) {
		return nil, storeErr(err)
	}

	candidates, err := tx.List(v.Kind())
	if err != nil {
		return nil, storeErr(err)
	}
	for _, candidate := range candidates {
		if candidate.RecordName != "" {
			continue
		}
		match, err := v.MatchCandidate(candidate, record)
		if err != nil {
			return nil, err
		}
		if match {
			f.logger.Info("Matched local candidate for remote record", "record", record.ID.RecordName, "object", candidate.ID)
			return candidate, nil
		}
	}
	return nil, nil
}

func (f *Fetcher) applyDeletion(tx storage.Tx, id remote.RecordID) error {
	v, err := entity.ForRecordType(id.RecordType)
	if err != nil {
		f.logger.Warn("Unexpected record type in deletion", "type", id.RecordType)
		return nil
	}
	obj, err := tx.FindByRecordName(v.Kind(), id.RecordName)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Delete(obj.ID)
}

func (f *Fetcher) fail(task *Task, err error) {
	f.logger.Error("Fetch failed", "error", err)
	task.complete(err)
	if f.onFatal != nil {
		f.onFatal(err)
	}
}

// storeError marks failures of the local store, which abort the whole page
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return &storeError{err: err}
}

func isStoreError(err error) bool {
	var serr *storeError
	return errors.As(err, &serr)
}
