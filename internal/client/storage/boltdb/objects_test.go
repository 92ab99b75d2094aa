package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/models"
)

func insertBook(t *testing.T, store *Storage, author string, obj *storage.Object) {
	t.Helper()
	err := store.Update(context.Background(), author, func(tx storage.Tx) error {
		return tx.Insert(obj)
	})
	require.NoError(t, err)
}

func TestTx_InsertGetUpdateDelete(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	obj := &storage.Object{Kind: models.KindBook, Data: []byte(`{"title":"Dune"}`)}
	insertBook(t, store, "app", obj)
	require.NotEmpty(t, obj.ID)

	err := store.Update(ctx, "app", func(tx storage.Tx) error {
		got, err := tx.Get(obj.ID)
		if err != nil {
			return err
		}
		got.Data = []byte(`{"title":"Dune Messiah"}`)
		return tx.Update(got, models.BookPropTitle)
	})
	require.NoError(t, err)

	err = store.View(ctx, func(tx storage.Tx) error {
		got, err := tx.Get(obj.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"Dune Messiah"}`, string(got.Data))
		return nil
	})
	require.NoError(t, err)

	err = store.Update(ctx, "app", func(tx storage.Tx) error {
		return tx.Delete(obj.ID)
	})
	require.NoError(t, err)

	err = store.View(ctx, func(tx storage.Tx) error {
		_, err := tx.Get(obj.ID)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
		return nil
	})
	require.NoError(t, err)

	history, err := store.History(ctx, storage.Checkpoint{})
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, storage.OpInsert, history[0].Changes[0].Op)
	assert.Equal(t, storage.OpUpdate, history[1].Changes[0].Op)
	assert.Equal(t, []string{models.BookPropTitle}, history[1].Changes[0].Properties)
	assert.Equal(t, storage.OpDelete, history[2].Changes[0].Op)
	for i, tr := range history {
		assert.Equal(t, storage.HistoryToken(i+1), tr.Token)
		assert.Equal(t, "app", tr.Author)
	}
}

func TestTx_RecordNameIndex(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	obj := &storage.Object{Kind: models.KindBook, Data: []byte(`{}`)}
	insertBook(t, store, "app", obj)

	// Назначаем удалённую идентичность
	err := store.Update(ctx, "sync", func(tx storage.Tx) error {
		got, err := tx.Get(obj.ID)
		if err != nil {
			return err
		}
		got.RecordName = "rec-1"
		return tx.Update(got)
	})
	require.NoError(t, err)

	err = store.View(ctx, func(tx storage.Tx) error {
		got, err := tx.FindByRecordName(models.KindBook, "rec-1")
		require.NoError(t, err)
		assert.Equal(t, obj.ID, got.ID)

		_, err = tx.FindByRecordName(models.KindList, "rec-1")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)

		_, err = tx.FindByRecordName(models.KindBook, "")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
		return nil
	})
	require.NoError(t, err)

	// Второй объект не может занять тот же record name
	other := &storage.Object{Kind: models.KindBook, RecordName: "rec-1", Data: []byte(`{}`)}
	err = store.Update(ctx, "app", func(tx storage.Tx) error {
		return tx.Insert(other)
	})
	assert.Error(t, err)

	// Удаление фиксирует record name в истории и чистит индекс
	err = store.Update(ctx, "app", func(tx storage.Tx) error {
		return tx.Delete(obj.ID)
	})
	require.NoError(t, err)

	history, err := store.History(ctx, storage.Checkpoint{})
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, "rec-1", last.Changes[0].RecordName)

	err = store.View(ctx, func(tx storage.Tx) error {
		_, err := tx.FindByRecordName(models.KindBook, "rec-1")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestTx_MetadataOnlyUpdateNotInHistory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	obj := &storage.Object{Kind: models.KindBook, Data: []byte(`{}`)}
	insertBook(t, store, "app", obj)

	err := store.Update(ctx, "sync", func(tx storage.Tx) error {
		got, err := tx.Get(obj.ID)
		if err != nil {
			return err
		}
		got.SystemFields = &remote.Record{ID: remote.RecordID{RecordName: "r"}, ChangeTag: "v1"}
		return tx.Update(got)
	})
	require.NoError(t, err)

	history, err := store.History(ctx, storage.Checkpoint{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTx_ReadOnlyView(t *testing.T) {
	store := createTestStorage(t)

	err := store.View(context.Background(), func(tx storage.Tx) error {
		return tx.Insert(&storage.Object{Kind: models.KindBook})
	})
	assert.ErrorIs(t, err, storage.ErrReadOnly)
}

func TestTx_FailedUpdateRollsBack(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.Update(ctx, "sync", func(tx storage.Tx) error {
		if err := tx.Insert(&storage.Object{Kind: models.KindBook, Data: []byte(`{}`)}); err != nil {
			return err
		}
		if err := tx.SetChangeToken("tok-1"); err != nil {
			return err
		}
		return tx.Delete("missing")
	})
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	// Ни объект, ни токен, ни запись истории не сохранились
	err = store.View(ctx, func(tx storage.Tx) error {
		objects, err := tx.List(models.KindBook)
		require.NoError(t, err)
		assert.Empty(t, objects)
		return nil
	})
	require.NoError(t, err)

	token, err := store.GetChangeToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	history, err := store.History(ctx, storage.Checkpoint{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistory_SinceCheckpoint(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for i := 0; i < 4; i++ {
		insertBook(t, store, "app", &storage.Object{Kind: models.KindBook, Data: []byte(`{}`)})
	}

	tests := []struct {
		name       string
		since      storage.Checkpoint
		wantTokens []storage.HistoryToken
	}{
		{
			name:       "everything",
			since:      storage.Checkpoint{},
			wantTokens: []storage.HistoryToken{1, 2, 3, 4},
		},
		{
			name:       "after token",
			since:      storage.Checkpoint{Token: 2},
			wantTokens: []storage.HistoryToken{3, 4},
		},
		{
			name:       "token wins over watermark",
			since:      storage.Checkpoint{Token: 3, Watermark: base},
			wantTokens: []storage.HistoryToken{4},
		},
		{
			name:       "from watermark",
			since:      storage.Checkpoint{Watermark: base.Add(3 * time.Minute)},
			wantTokens: []storage.HistoryToken{3, 4},
		},
		{
			name:       "after last token",
			since:      storage.Checkpoint{Token: 4},
			wantTokens: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := store.History(ctx, tt.since)
			require.NoError(t, err)

			var tokens []storage.HistoryToken
			for _, tr := range history {
				tokens = append(tokens, tr.Token)
			}
			assert.Equal(t, tt.wantTokens, tokens)
		})
	}
}

func TestTx_HistoryInsideUpdate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	insertBook(t, store, "app", &storage.Object{Kind: models.KindBook, Data: []byte(`{}`)})
	insertBook(t, store, "app", &storage.Object{Kind: models.KindBook, Data: []byte(`{}`)})

	err := store.Update(ctx, "sync", func(tx storage.Tx) error {
		history, err := tx.History(storage.Checkpoint{Token: 1})
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, storage.HistoryToken(2), history[0].Token)
		assert.Equal(t, "app", history[0].Author)

		// Запись текущей транзакции попадает в историю только после commit
		require.NoError(t, tx.Insert(&storage.Object{Kind: models.KindBook, Data: []byte(`{}`)}))
		history, err = tx.History(storage.Checkpoint{Token: 1})
		require.NoError(t, err)
		assert.Len(t, history, 1)
		return nil
	})
	require.NoError(t, err)

	history, err := store.History(ctx, storage.Checkpoint{Token: 1})
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestPruneHistory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		insertBook(t, store, "app", &storage.Object{Kind: models.KindBook, Data: []byte(`{}`)})
	}

	require.NoError(t, store.PruneHistory(ctx, 3))

	history, err := store.History(ctx, storage.Checkpoint{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, storage.HistoryToken(4), history[0].Token)

	// Токены продолжают расти после очистки
	insertBook(t, store, "app", &storage.Object{Kind: models.KindBook, Data: []byte(`{}`)})
	history, err = store.History(ctx, storage.Checkpoint{Token: 5})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, storage.HistoryToken(6), history[0].Token)
}
