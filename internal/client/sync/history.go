package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/entity"
)

// HistoryReader reduces committed local transactions into change sets
type HistoryReader struct {
	store  storage.LocalStore
	logger *slog.Logger
	author string
	zone   string
}

// NewHistoryReader creates a reader ignoring transactions written by author
func NewHistoryReader(store storage.LocalStore, author, zone string, logger *slog.Logger) *HistoryReader {
	return &HistoryReader{store: store, author: author, zone: zone, logger: logger}
}

// Fetch reads every transaction after since and reduces them into one
// change set carrying the token of the last transaction read.
// Returns nil when there are no new transactions. The change set may be
// empty when all transactions were excluded; its token must still be
// committed.
func (r *HistoryReader) Fetch(ctx context.Context, since storage.Checkpoint) (*ChangeSet, error) {
	transactions, err := r.store.History(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch local history: %w", err)
	}
	if len(transactions) == 0 {
		return nil, nil
	}

	cs := r.Reduce(transactions)
	r.logger.Debug("Local history reduced",
		"transactions", len(transactions),
		"inserts", len(cs.Inserts),
		"updates", len(cs.Updates),
		"deletions", len(cs.Deletions),
		"token", cs.Token)
	return cs, nil
}

// Reduce folds transactions into one change set carrying the token of the
// last one. Transactions written by the reader's author are skipped.
func (r *HistoryReader) Reduce(transactions []storage.Transaction) *ChangeSet {
	cs := newChangeSet()
	for _, tr := range transactions {
		cs.Token = tr.Token
		if tr.Author == r.author {
			continue
		}
		for _, change := range tr.Changes {
			r.reduce(cs, change)
		}
	}
	return cs
}

func (r *HistoryReader) reduce(cs *ChangeSet, change storage.ObjectChange) {
	v, err := entity.For(change.Kind)
	if err != nil {
		// не синхронизируемый тип
		return
	}
	ref := ObjectRef{ID: change.ObjectID, Kind: change.Kind}

	switch change.Op {
	case storage.OpInsert:
		cs.addInsert(ref)
	case storage.OpUpdate:
		cs.addUpdate(ref, v.Table().MaskForProperties(change.Properties))
	case storage.OpDelete:
		cs.forget(ref)
		if change.RecordName == "" {
			// объект не успел попасть на сервер
			return
		}
		id := remote.RecordID{ZoneName: r.zone, RecordName: change.RecordName, RecordType: v.Table().RecordType()}
		if !cs.Deletes(id) {
			cs.Deletions = append(cs.Deletions, id)
		}
	}
}
