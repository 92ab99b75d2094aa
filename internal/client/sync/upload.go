package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/entity"
	"github.com/iudanet/shelfsync/internal/fieldkey"
)

const opModifyRecords = "modify-records"

// batch is one atomic write request
type batch struct {
	records   []*remote.Record
	deletions []remote.RecordID
	// reconcile is set when the batch re-pushes local fields layered on the
	// server version after a conflict
	reconcile bool
}

func (b batch) size() int { return len(b.records) + len(b.deletions) }

// Uploader submits write batches on the remote lane and stores the results
// on the local lane
type Uploader struct {
	backend      remote.Backend
	store        storage.LocalStore
	buffer       *ChangeBuffer
	remoteQueue  *OperationQueue
	localQueue   *OperationQueue
	retry        *RetryController
	logger       *slog.Logger
	onFatal      func(error)
	zone         string
	author       string
	maxBatchSize int
}

// Upload writes records and deletions in one atomic batch, splitting,
// reconciling and retrying as the backend demands. The task completes once
// every record is confirmed and its local metadata stored.
func (u *Uploader) Upload(records []*remote.Record, deletions []remote.RecordID, priority Priority) *Task {
	if len(records) == 0 && len(deletions) == 0 {
		return CompletedTask(nil)
	}
	task := newTask()
	u.submit(batch{records: records, deletions: deletions}, priority, task)
	return task
}

func (u *Uploader) submit(b batch, priority Priority, task *Task) {
	u.logger.Debug("Submitting batch", "records", len(b.records), "deletions", len(b.deletions), "reconcile", b.reconcile)

	enqueueFor(task, u.remoteQueue, opModifyRecords, priority, func(ctx context.Context) error {
		result, err := u.backend.ModifyRecords(ctx, u.zone, b.records, b.deletions)
		if err != nil {
			u.handleError(err, b, priority, task)
			return err
		}

		u.logger.Info("Uploaded records", "records", len(b.records), "deletions", len(b.deletions))
		enqueueFor(task, u.localQueue, "store-upload-result", PriorityNormal, func(ctx context.Context) error {
			err := u.storeResult(ctx, b, result)
			if err != nil {
				u.fail(task, err)
				return err
			}
			task.complete(nil)
			return nil
		})
		return nil
	})
}

// handleError runs on the remote lane
func (u *Uploader) handleError(err error, b batch, priority Priority, task *Task) {
	switch remote.CodeOf(err) {
	case remote.CodeLimitExceeded:
		u.split(b, priority, task)

	case remote.CodePartialFailure:
		var rerr *remote.Error
		if !errors.As(err, &rerr) {
			u.fail(task, fmt.Errorf("%w: partial failure without details: %v", ErrProtocolViolation, err))
			return
		}
		retry, conflicts, perr := u.classify(rerr, b)
		if perr != nil {
			u.fail(task, perr)
			return
		}
		u.logger.Warn("Upload partial failure", "conflicts", len(conflicts), "resubmitted", len(retry))
		enqueueFor(task, u.localQueue, "reconcile-conflicts", PriorityHigh, func(ctx context.Context) error {
			layered, err := u.reconcile(ctx, conflicts)
			if err != nil {
				u.fail(task, err)
				return err
			}
			next := batch{records: append(retry, layered...), deletions: b.deletions, reconcile: true}
			u.submit(next, PriorityHigh, task)
			return nil
		})

	default:
		if _, ok := u.retry.ShouldRetry(err); ok {
			u.submit(b, priority, task)
			return
		}
		u.fail(task, err)
	}
}

// split resubmits b as smaller batches: chunks of the configured maximum, or
// halves when b is not larger than that already
func (u *Uploader) split(b batch, priority Priority, task *Task) {
	chunkSize := u.maxBatchSize
	if b.size() <= chunkSize {
		chunkSize = b.size() / 2
	}
	if chunkSize < 1 {
		u.fail(task, fmt.Errorf("%w: single item exceeds batch limit", ErrProtocolViolation))
		return
	}

	u.logger.Warn("Batch limit exceeded, sending in chunks", "items", b.size(), "chunk_size", chunkSize)

	var chunks []batch
	current := batch{reconcile: b.reconcile}
	for _, r := range b.records {
		current.records = append(current.records, r)
		if current.size() == chunkSize {
			chunks = append(chunks, current)
			current = batch{reconcile: b.reconcile}
		}
	}
	for _, d := range b.deletions {
		current.deletions = append(current.deletions, d)
		if current.size() == chunkSize {
			chunks = append(chunks, current)
			current = batch{reconcile: b.reconcile}
		}
	}
	if current.size() > 0 {
		chunks = append(chunks, current)
	}

	children := make([]*Task, 0, len(chunks))
	for _, chunk := range chunks {
		child := newTask()
		children = append(children, child)
		u.submit(chunk, priority, child)
	}
	joinTasks(children...).OnDone(task.complete)
}

// classify sorts the records of a partially failed batch into records to
// resend unchanged and conflicts carrying the current server record.
// Deletions must all report a batch failure; they are resent as they are.
func (u *Uploader) classify(rerr *remote.Error, b batch) ([]*remote.Record, []conflict, error) {
	if rerr.PerRecord == nil {
		return nil, nil, fmt.Errorf("%w: partial failure without per-record errors", ErrProtocolViolation)
	}

	var (
		retry     []*remote.Record
		conflicts []conflict
	)
	for _, record := range b.records {
		name := record.ID.RecordName
		outcome, ok := rerr.PerRecord[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: no outcome for record %s", ErrProtocolViolation, name)
		}

		switch outcome.Code {
		case remote.CodeServerRecordChanged:
			if outcome.ServerRecord == nil {
				return nil, nil, fmt.Errorf("%w: conflict on %s without server record", ErrProtocolViolation, name)
			}
			conflicts = append(conflicts, conflict{local: record, server: outcome.ServerRecord})
		case remote.CodeBatchRequestFailed:
			retry = append(retry, record)
		default:
			return nil, nil, fmt.Errorf("%w: unexpected outcome %s for record %s", ErrProtocolViolation, outcome.Code, name)
		}
	}

	for _, id := range b.deletions {
		outcome, ok := rerr.PerRecord[id.RecordName]
		if !ok {
			return nil, nil, fmt.Errorf("%w: no outcome for deletion %s", ErrProtocolViolation, id.RecordName)
		}
		if outcome.Code != remote.CodeBatchRequestFailed {
			return nil, nil, fmt.Errorf("%w: unexpected outcome %s for deletion %s", ErrProtocolViolation, outcome.Code, id.RecordName)
		}
	}
	return retry, conflicts, nil
}

type conflict struct {
	local  *remote.Record
	server *remote.Record
}

// reconcile layers the local fields of each conflicting record on the server
// version and marks those fields pending on the local object. Runs on the
// local lane.
func (u *Uploader) reconcile(ctx context.Context, conflicts []conflict) ([]*remote.Record, error) {
	layered := make([]*remote.Record, 0, len(conflicts))

	err := u.store.Update(ctx, u.author, func(tx storage.Tx) error {
		for _, c := range conflicts {
			record := c.local.LayerOn(c.server)
			layered = append(layered, record)

			v, err := entity.ForRecordType(record.ID.RecordType)
			if err != nil {
				return err
			}
			obj, err := tx.FindByRecordName(v.Kind(), record.ID.RecordName)
			if errors.Is(err, storage.ErrObjectNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var pushed []fieldkey.Key
			for _, name := range c.local.FieldNames() {
				pushed = append(pushed, fieldkey.Key(name))
			}
			obj.PendingMask = obj.PendingMask.Union(v.Table().Mask(pushed...))
			if err := tx.Update(obj); err != nil {
				return err
			}
			u.logger.Info("Conflict layered on server version",
				"record", record.ID.RecordName,
				"server_tag", c.server.ChangeTag,
				"pending", v.Table().String(obj.PendingMask))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile conflicts: %w", err)
	}
	return layered, nil
}

// storeResult records the server versions of saved records locally. After a
// reconciliation the whole server record is applied and pending fields are
// cleared; otherwise only system metadata changes. Runs on the local lane.
func (u *Uploader) storeResult(ctx context.Context, b batch, result *remote.ModifyResult) error {
	saved := make(map[string]*remote.Record)
	if result != nil {
		for _, r := range result.Saved {
			saved[r.ID.RecordName] = r
		}
	}

	return u.store.Update(ctx, u.author, func(tx storage.Tx) error {
		for _, submitted := range b.records {
			record, ok := saved[submitted.ID.RecordName]
			if !ok {
				return fmt.Errorf("%w: saved record %s missing from response", ErrProtocolViolation, submitted.ID.RecordName)
			}

			v, err := entity.ForRecordType(record.ID.RecordType)
			if err != nil {
				return err
			}
			obj, err := tx.FindByRecordName(v.Kind(), record.ID.RecordName)
			if errors.Is(err, storage.ErrObjectNotFound) {
				// удалён локально, пока шла загрузка
				continue
			}
			if err != nil {
				return err
			}

			var properties []string
			if b.reconcile {
				ref := ObjectRef{ID: obj.ID, Kind: obj.Kind}
				properties, err = v.ApplyRemoteRecord(obj, record, u.buffer.PendingMask(ref))
				if err != nil {
					return err
				}
				obj.PendingMask = 0
			}
			entity.SetSystemMetadata(obj, record)
			if err := tx.Update(obj, properties...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *Uploader) fail(task *Task, err error) {
	u.logger.Error("Upload failed", "error", err)
	task.complete(err)
	if u.onFatal != nil {
		u.onFatal(err)
	}
}
