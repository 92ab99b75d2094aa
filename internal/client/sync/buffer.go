package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/fieldkey"
)

type bufferEntry struct {
	cs        *ChangeSet
	inFlight  bool
	confirmed bool
}

// ChangeBuffer is the ordered list of change sets awaiting upload.
//
// Confirmations may arrive in any order, but the checkpoint only advances
// over a confirmed prefix: entry i is committed after entries 0..i-1.
// Not safe for concurrent use; owned by the local lane.
type ChangeBuffer struct {
	meta    storage.MetadataStorage
	store   storage.LocalStore
	logger  *slog.Logger
	entries []*bufferEntry
}

// NewChangeBuffer creates an empty buffer. Committed checkpoints are saved to
// meta and the consumed history is pruned from store.
func NewChangeBuffer(meta storage.MetadataStorage, store storage.LocalStore, logger *slog.Logger) *ChangeBuffer {
	return &ChangeBuffer{meta: meta, store: store, logger: logger}
}

// Append adds change sets to the end of the buffer
func (b *ChangeBuffer) Append(changeSets ...*ChangeSet) {
	for _, cs := range changeSets {
		b.entries = append(b.entries, &bufferEntry{cs: cs})
	}
}

// Len returns the number of buffered change sets
func (b *ChangeBuffer) Len() int {
	return len(b.entries)
}

// Pending returns the change sets that are neither uploading nor confirmed,
// front first
func (b *ChangeBuffer) Pending() []*ChangeSet {
	var pending []*ChangeSet
	for _, e := range b.entries {
		if !e.inFlight && !e.confirmed {
			pending = append(pending, e.cs)
		}
	}
	return pending
}

// MarkInFlight records that an upload of cs was submitted
func (b *ChangeBuffer) MarkInFlight(cs *ChangeSet) {
	if e := b.find(cs); e != nil {
		e.inFlight = true
	}
}

// MarkFailed returns cs to the pending state so the next drain retries it
func (b *ChangeBuffer) MarkFailed(cs *ChangeSet) {
	if e := b.find(cs); e != nil {
		e.inFlight = false
	}
}

// RemoveConfirmed marks cs as durably uploaded. Every confirmed entry at the
// front of the buffer is removed and the checkpoint moves to the token of the
// last one removed.
func (b *ChangeBuffer) RemoveConfirmed(ctx context.Context, cs *ChangeSet) error {
	e := b.find(cs)
	if e == nil {
		return fmt.Errorf("change set %d is not buffered", cs.Token)
	}
	e.confirmed = true
	e.inFlight = false

	var committed storage.HistoryToken
	n := 0
	for n < len(b.entries) && b.entries[n].confirmed {
		committed = b.entries[n].cs.Token
		n++
	}
	if n == 0 {
		b.logger.Debug("Confirmation held until earlier change sets are confirmed", "token", cs.Token)
		return nil
	}

	if err := b.meta.SaveCheckpoint(ctx, storage.Checkpoint{Token: committed}); err != nil {
		// записи остаются подтверждёнными, чекпоинт сохранится со следующим подтверждением
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	b.entries = append(b.entries[:0], b.entries[n:]...)
	b.logger.Debug("Checkpoint advanced", "token", committed, "remaining", len(b.entries))

	if err := b.store.PruneHistory(ctx, committed); err != nil {
		b.logger.Warn("Failed to prune local history", "error", err)
	}
	return nil
}

// PendingMask returns the union of the update masks of every buffered change
// set for ref: fields with a local edit that is not confirmed yet
func (b *ChangeBuffer) PendingMask(ref ObjectRef) fieldkey.Bitmask {
	var mask fieldkey.Bitmask
	for _, e := range b.entries {
		mask = mask.Union(e.cs.Updates[ref])
	}
	return mask
}

// Deletes reports whether a buffered change set deletes the record id
func (b *ChangeBuffer) Deletes(id remote.RecordID) bool {
	for _, e := range b.entries {
		if e.cs.Deletes(id) {
			return true
		}
	}
	return false
}

func (b *ChangeBuffer) find(cs *ChangeSet) *bufferEntry {
	for _, e := range b.entries {
		if e.cs == cs {
			return e
		}
	}
	return nil
}
