package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/client/sync"
	"github.com/iudanet/shelfsync/internal/models"
)

func TestCli_runStatus_NeverSynced(t *testing.T) {
	c, _, out := setupTestCli(t)

	require.NoError(t, c.runStatus(context.Background()))

	output := out.String()
	assert.Contains(t, output, "History checkpoint:  none")
	assert.Contains(t, output, "Pending changes:     0")
	assert.Contains(t, output, "Change token:        none")
	assert.Contains(t, output, "Last sync:           never")
}

func TestCli_runStatus_CountsLocalChangesOnly(t *testing.T) {
	ctx := context.Background()
	c, store, out := setupTestCli(t)

	addTestBook(t, store, &models.Book{Title: "Dune"})
	addTestBook(t, store, &models.Book{Title: "Emma"})

	// Правка от синхронизации
	require.NoError(t, store.Update(ctx, sync.DefaultAuthor, func(tx storage.Tx) error {
		return tx.Insert(&storage.Object{Kind: models.KindBook, RecordName: "rec-1", Data: []byte(`{"title":"Remote"}`)})
	}))

	require.NoError(t, store.SaveChangeToken(ctx, "42"))
	require.NoError(t, store.SaveLastSyncCompletion(ctx, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)))

	require.NoError(t, c.runStatus(ctx))

	output := out.String()
	assert.Contains(t, output, "Books:               3")
	assert.Contains(t, output, "Pending changes:     2")
	assert.Contains(t, output, "Change token:        42")
	assert.NotContains(t, output, "never")
}

func TestCli_runStatus_TokenCheckpoint(t *testing.T) {
	ctx := context.Background()
	c, store, out := setupTestCli(t)

	addTestBook(t, store, &models.Book{Title: "Dune"})
	addTestBook(t, store, &models.Book{Title: "Emma"})
	require.NoError(t, store.SaveCheckpoint(ctx, storage.Checkpoint{Token: 1}))

	require.NoError(t, c.runStatus(ctx))

	output := out.String()
	assert.Contains(t, output, "History checkpoint:  1")
	assert.Contains(t, output, "Pending changes:     1")
}
