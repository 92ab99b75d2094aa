package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/entity"
	"github.com/iudanet/shelfsync/internal/models"
)

func newMetaMock() (*storage.MetadataStorageMock, *[]storage.Checkpoint) {
	var saved []storage.Checkpoint
	return &storage.MetadataStorageMock{
		SaveCheckpointFunc: func(ctx context.Context, checkpoint storage.Checkpoint) error {
			saved = append(saved, checkpoint)
			return nil
		},
	}, &saved
}

func changeSet(token storage.HistoryToken) *ChangeSet {
	cs := newChangeSet()
	cs.Token = token
	cs.Inserts = []ObjectRef{{ID: "obj", Kind: models.KindBook}}
	return cs
}

func TestChangeBuffer_CheckpointAdvancesInOrder(t *testing.T) {
	ctx := context.Background()
	meta, saved := newMetaMock()
	b := NewChangeBuffer(meta, createTestStore(t), testLogger())

	cs1, cs2, cs3 := changeSet(3), changeSet(5), changeSet(9)
	b.Append(cs1, cs2, cs3)
	for _, cs := range []*ChangeSet{cs1, cs2, cs3} {
		b.MarkInFlight(cs)
	}
	assert.Empty(t, b.Pending())

	// Подтверждение не по порядку ждёт предшественников
	require.NoError(t, b.RemoveConfirmed(ctx, cs2))
	assert.Empty(t, *saved)
	assert.Equal(t, 3, b.Len())

	require.NoError(t, b.RemoveConfirmed(ctx, cs1))
	assert.Equal(t, []storage.Checkpoint{{Token: 5}}, *saved)
	assert.Equal(t, 1, b.Len())

	require.NoError(t, b.RemoveConfirmed(ctx, cs3))
	assert.Equal(t, []storage.Checkpoint{{Token: 5}, {Token: 9}}, *saved)
	assert.Zero(t, b.Len())

	// Чекпоинт никогда не откатывается назад
	for i := 1; i < len(*saved); i++ {
		assert.Greater(t, (*saved)[i].Token, (*saved)[i-1].Token)
	}
}

func TestChangeBuffer_IdentityNotContent(t *testing.T) {
	ctx := context.Background()
	meta, saved := newMetaMock()
	b := NewChangeBuffer(meta, createTestStore(t), testLogger())

	// Одинаковые по содержимому наборы остаются разными записями
	a, twin := changeSet(4), changeSet(4)
	b.Append(a, twin)
	assert.Equal(t, 2, b.Len())

	require.NoError(t, b.RemoveConfirmed(ctx, twin))
	assert.Equal(t, 2, b.Len())
	assert.Empty(t, *saved)

	require.NoError(t, b.RemoveConfirmed(ctx, a))
	assert.Zero(t, b.Len())

	assert.Error(t, b.RemoveConfirmed(ctx, a))
}

func TestChangeBuffer_FailedUploadReturnsToPending(t *testing.T) {
	meta, _ := newMetaMock()
	b := NewChangeBuffer(meta, createTestStore(t), testLogger())

	cs := changeSet(1)
	b.Append(cs)
	b.MarkInFlight(cs)
	assert.Empty(t, b.Pending())

	b.MarkFailed(cs)
	assert.Equal(t, []*ChangeSet{cs}, b.Pending())
}

func TestChangeBuffer_SaveFailureKeepsEntries(t *testing.T) {
	ctx := context.Background()
	meta := &storage.MetadataStorageMock{
		SaveCheckpointFunc: func(ctx context.Context, checkpoint storage.Checkpoint) error {
			return errors.New("disk full")
		},
	}
	b := NewChangeBuffer(meta, createTestStore(t), testLogger())

	cs := changeSet(1)
	b.Append(cs)
	assert.Error(t, b.RemoveConfirmed(ctx, cs))
	assert.Equal(t, 1, b.Len())
	assert.Empty(t, b.Pending())
}

func TestChangeBuffer_PendingMaskAndDeletions(t *testing.T) {
	meta, _ := newMetaMock()
	b := NewChangeBuffer(meta, createTestStore(t), testLogger())
	table := entity.Book.Table()
	ref := ObjectRef{ID: "obj", Kind: models.KindBook}

	first := newChangeSet()
	first.Updates[ref] = table.Mask(entity.BookKeyTitle)
	second := newChangeSet()
	second.Updates[ref] = table.Mask(entity.BookKeyNotes)
	second.Deletions = []remote.RecordID{{ZoneName: testZone, RecordName: "gone", RecordType: entity.BookRecordType}}
	b.Append(first, second)

	assert.Equal(t, table.Mask(entity.BookKeyTitle, entity.BookKeyNotes), b.PendingMask(ref))
	assert.True(t, b.PendingMask(ObjectRef{ID: "other", Kind: models.KindBook}).IsEmpty())

	assert.True(t, b.Deletes(remote.RecordID{RecordName: "gone", RecordType: entity.BookRecordType}))
	assert.False(t, b.Deletes(remote.RecordID{RecordName: "gone", RecordType: entity.ListRecordType}))
}
