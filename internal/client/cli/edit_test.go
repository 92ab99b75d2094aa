package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestCli_runEdit_RecordsChangedProperties(t *testing.T) {
	ctx := context.Background()
	c, store, out := setupTestCli(t)
	c.now = func() time.Time { return time.Date(2024, 5, 2, 15, 30, 0, 0, time.UTC) }

	id := addTestBook(t, store, &models.Book{Title: "Dune", Authors: []models.Author{{LastName: "Herbert"}}})

	err := c.runEdit(ctx, id, EditOptions{
		CurrentPage: ptr(int32(120)),
		Rating:      ptr(int16(9)),
		Started:     ptr("today"),
	})
	require.NoError(t, err)

	book := loadTestBook(t, store, id)
	assert.Equal(t, "Dune", book.Title, "untouched fields are kept")
	require.NotNil(t, book.CurrentPage)
	assert.Equal(t, int32(120), *book.CurrentPage)
	require.NotNil(t, book.Rating)
	assert.Equal(t, int16(9), *book.Rating)
	require.NotNil(t, book.StartedReading)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), *book.StartedReading)
	assert.Equal(t, models.ReadStateReading, book.ReadState())

	history, err := store.History(ctx, storage.Checkpoint{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	change := history[1].Changes[0]
	assert.Equal(t, storage.OpUpdate, change.Op)
	assert.ElementsMatch(t, []string{
		models.BookPropCurrentPage,
		models.BookPropRating,
		models.BookPropStartedReading,
	}, change.Properties)

	assert.Contains(t, out.String(), "updated")
}

func TestCli_runEdit_ClearsValues(t *testing.T) {
	ctx := context.Background()
	c, store, _ := setupTestCli(t)

	isbn := int64(9780261102217)
	rating := int16(7)
	started := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	id := addTestBook(t, store, &models.Book{
		Title:          "The Hobbit",
		ISBN13:         &isbn,
		Rating:         &rating,
		StartedReading: &started,
	})

	require.NoError(t, c.runEdit(ctx, id, EditOptions{
		ISBN:    ptr(""),
		Rating:  ptr(int16(0)),
		Started: ptr(""),
	}))

	book := loadTestBook(t, store, id)
	assert.Nil(t, book.ISBN13)
	assert.Nil(t, book.Rating)
	assert.Nil(t, book.StartedReading)
}

func TestCli_runEdit_NothingToChange(t *testing.T) {
	ctx := context.Background()
	c, store, out := setupTestCli(t)
	id := addTestBook(t, store, &models.Book{Title: "Dune"})

	require.NoError(t, c.runEdit(ctx, id, EditOptions{}))
	assert.Contains(t, out.String(), "Nothing to change")

	history, err := store.History(ctx, storage.Checkpoint{})
	require.NoError(t, err)
	assert.Len(t, history, 1, "no history entry for an empty edit")
}

func TestCli_runEdit_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		opts    EditOptions
		wantErr string
	}{
		{name: "empty title", opts: EditOptions{Title: ptr(" ")}, wantErr: "title cannot be empty"},
		{name: "rating too high", opts: EditOptions{Rating: ptr(int16(11))}, wantErr: "rating must be between"},
		{name: "bad date", opts: EditOptions{Started: ptr("02.05.2024")}, wantErr: "invalid date"},
		{name: "finished before started", opts: EditOptions{Finished: ptr("2024-05-02")}, wantErr: "needs a start date"},
		{name: "bad isbn", opts: EditOptions{ISBN: ptr("123")}, wantErr: "invalid ISBN-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, store, _ := setupTestCli(t)
			id := addTestBook(t, store, &models.Book{Title: "Dune"})

			err := c.runEdit(ctx, id, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, "Dune", loadTestBook(t, store, id).Title)
		})
	}
}

func TestCli_runEdit_NotFound(t *testing.T) {
	c, _, _ := setupTestCli(t)

	err := c.runEdit(context.Background(), "missing", EditOptions{Title: ptr("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "book not found")
}
