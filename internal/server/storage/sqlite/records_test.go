package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/server/storage"
)

func setupZone(t *testing.T) *Storage {
	t.Helper()
	s := setupTestStorage(t)
	_, err := s.CreateZone(context.Background(), "alice", "library")
	require.NoError(t, err)
	return s
}

func book(name, tag string, fields map[string]string) *storage.Record {
	r := &storage.Record{Name: name, Type: "Book", ChangeTag: tag, Fields: make(map[string]json.RawMessage)}
	for k, v := range fields {
		r.Fields[k] = json.RawMessage(v)
	}
	return r
}

func modify(t *testing.T, s *Storage, records []*storage.Record, deletions ...storage.RecordKey) []*storage.Record {
	t.Helper()
	saved, err := s.ModifyRecords(context.Background(), "alice", "library", records, deletions)
	require.NoError(t, err)
	return saved
}

func TestRecordStorage_SaveAndMerge(t *testing.T) {
	s := setupZone(t)

	saved := modify(t, s, []*storage.Record{book("dune", "", map[string]string{"title": `"Dune"`, "notes": `"draft"`})})
	require.Len(t, saved, 1)
	first := saved[0].ChangeTag
	assert.NotEmpty(t, first)

	// Частичное обновление сохраняет остальные поля
	saved = modify(t, s, []*storage.Record{book("dune", first, map[string]string{"notes": `"final"`})})
	require.Len(t, saved, 1)
	assert.NotEqual(t, first, saved[0].ChangeTag)
	assert.JSONEq(t, `"Dune"`, string(saved[0].Fields["title"]))
	assert.JSONEq(t, `"final"`, string(saved[0].Fields["notes"]))
}

func TestRecordStorage_ConflictRejectsBatch(t *testing.T) {
	ctx := context.Background()
	s := setupZone(t)

	current := modify(t, s, []*storage.Record{book("dune", "", map[string]string{"title": `"Dune"`})})[0]

	tests := []struct {
		name   string
		record *storage.Record
	}{
		{name: "stale tag", record: book("dune", "01STALE", map[string]string{"title": `"Mine"`})},
		{name: "insert over existing", record: book("dune", "", map[string]string{"title": `"Mine"`})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ModifyRecords(ctx, "alice", "library", []*storage.Record{
				tt.record,
				book("other", "", map[string]string{"title": `"Other"`}),
			}, nil)

			var conflict *storage.ConflictError
			require.ErrorAs(t, err, &conflict)
			require.Contains(t, conflict.Conflicts, "dune")
			assert.Equal(t, current.ChangeTag, conflict.Conflicts["dune"].ChangeTag)
			assert.JSONEq(t, `"Dune"`, string(conflict.Conflicts["dune"].Fields["title"]))
			assert.NotContains(t, conflict.Conflicts, "other")

			// Ничего не записано
			page, err := s.Changes(ctx, "alice", "library", 0, 10)
			require.NoError(t, err)
			assert.Len(t, page.Changed, 1)
		})
	}
}

func TestRecordStorage_UnknownZone(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	_, err := s.ModifyRecords(ctx, "alice", "library", []*storage.Record{book("dune", "", nil)}, nil)
	assert.ErrorIs(t, err, storage.ErrZoneNotFound)

	_, err = s.Changes(ctx, "alice", "library", 0, 10)
	assert.ErrorIs(t, err, storage.ErrZoneNotFound)
}

func TestRecordStorage_ChangesFeed(t *testing.T) {
	ctx := context.Background()
	s := setupZone(t)

	a := modify(t, s, []*storage.Record{book("a", "", map[string]string{"title": `"A"`})})[0]   // seq 1
	modify(t, s, []*storage.Record{book("b", "", map[string]string{"title": `"B"`})})           // seq 2
	modify(t, s, []*storage.Record{book("a", a.ChangeTag, map[string]string{"title": `"A2"`})}) // seq 3
	modify(t, s, nil, storage.RecordKey{Name: "b", Type: "Book"})                               // seq 4
	// Удаление отсутствующей записи не попадает в ленту
	modify(t, s, nil, storage.RecordKey{Name: "missing", Type: "Book"})

	page, err := s.Changes(ctx, "alice", "library", 0, 1)
	require.NoError(t, err)
	require.Len(t, page.Changed, 1)
	assert.Equal(t, "a", page.Changed[0].Name)
	assert.JSONEq(t, `"A2"`, string(page.Changed[0].Fields["title"]))
	assert.Equal(t, int64(3), page.Seq)
	assert.True(t, page.MoreComing)

	page, err = s.Changes(ctx, "alice", "library", page.Seq, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Changed)
	assert.Equal(t, []storage.RecordKey{{Name: "b", Type: "Book"}}, page.Deleted)
	assert.Equal(t, int64(4), page.Seq)
	assert.False(t, page.MoreComing)

	// Пустая страница остаётся на текущей позиции
	page, err = s.Changes(ctx, "alice", "library", 4, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Changed)
	assert.Empty(t, page.Deleted)
	assert.Equal(t, int64(4), page.Seq)
}

func TestRecordStorage_PruneExpiresOldTokens(t *testing.T) {
	ctx := context.Background()
	s := setupZone(t)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := fixedClock(s, start)

	modify(t, s, []*storage.Record{book("a", "", nil), book("b", "", nil)}) // seq 1, 2
	modify(t, s, nil, storage.RecordKey{Name: "a", Type: "Book"})           // seq 3

	*clock = start.Add(48 * time.Hour)
	modify(t, s, nil, storage.RecordKey{Name: "b", Type: "Book"}) // seq 4

	pruned, err := s.PruneChanges(ctx, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	tests := []struct {
		wantErr error
		name    string
		since   int64
	}{
		{name: "before pruned deletion", since: 2, wantErr: storage.ErrChangeTokenExpired},
		{name: "at pruned deletion", since: 3},
		{name: "full fetch", since: 0},
		{name: "from the future", since: 99, wantErr: storage.ErrChangeTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Changes(ctx, "alice", "library", tt.since, 10)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(4), page.Seq)
		})
	}
}
