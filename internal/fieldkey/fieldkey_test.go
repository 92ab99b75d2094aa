package fieldkey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable("Book",
		Entry{Key: "title"},
		Entry{Key: "authors"},
		Entry{Key: "notes"},
		Entry{Key: "readDates", Properties: []string{"startedReading", "finishedReading"}},
	)
	require.NoError(t, err)
	return table
}

func TestTable_Mask(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name string
		keys []Key
		want Bitmask
	}{
		{name: "empty", keys: nil, want: 0},
		{name: "first key", keys: []Key{"title"}, want: 1},
		{name: "third key", keys: []Key{"notes"}, want: 4},
		{name: "several keys", keys: []Key{"title", "readDates"}, want: 9},
		{name: "unknown key ignored", keys: []Key{"title", "nope"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Mask(tt.keys...))
		})
	}
}

func TestTable_ContainsAndKeysOf(t *testing.T) {
	table := testTable(t)
	m := table.Mask("authors", "readDates")

	assert.True(t, table.Contains(m, "authors"))
	assert.True(t, table.Contains(m, "readDates"))
	assert.False(t, table.Contains(m, "title"))
	assert.False(t, table.Contains(m, "unknown"))
	assert.Equal(t, []Key{"authors", "readDates"}, table.KeysOf(m))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "{authors,readDates}", table.String(m))
}

func TestBitmask_SetOperations(t *testing.T) {
	table := testTable(t)
	a := table.Mask("title", "authors")
	b := table.Mask("authors", "notes")

	assert.Equal(t, table.Mask("title", "authors", "notes"), a.Union(b))
	assert.Equal(t, table.Mask("authors"), a.Intersect(b))
	assert.Equal(t, table.Mask("title"), a.Without(b))
	assert.True(t, Bitmask(0).IsEmpty())
	assert.False(t, a.IsEmpty())
	assert.Equal(t, Bitmask(15), table.All())
}

func TestTable_MaskForProperties(t *testing.T) {
	table := testTable(t)

	m := table.MaskForProperties([]string{"finishedReading", "title", "localOnlyFlag"})
	assert.Equal(t, table.Mask("title", "readDates"), m)

	k, ok := table.ForProperty("startedReading")
	assert.True(t, ok)
	assert.Equal(t, Key("readDates"), k)
}

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		recordType string
		entries    []Entry
	}{
		{name: "empty record type", recordType: "", entries: []Entry{{Key: "a"}}},
		{name: "duplicate key", recordType: "T", entries: []Entry{{Key: "a"}, {Key: "a"}}},
		{name: "empty key", recordType: "T", entries: []Entry{{Key: ""}}},
		{name: "property mapped twice", recordType: "T", entries: []Entry{
			{Key: "a", Properties: []string{"p"}},
			{Key: "b", Properties: []string{"p"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.recordType, tt.entries...)
			assert.Error(t, err)
		})
	}

	entries := make([]Entry, MaxKeys+1)
	for i := range entries {
		entries[i] = Entry{Key: Key(string(rune('A'+i%26)) + string(rune('a'+i/26)))}
	}
	_, err := NewTable("Big", entries...)
	assert.Error(t, err)
}

func TestTable_Verify(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name      string
		persisted []string
		wantErr   bool
	}{
		{name: "first run", persisted: nil},
		{name: "same order", persisted: []string{"title", "authors", "notes", "readDates"}},
		{name: "appended keys", persisted: []string{"title", "authors"}},
		{name: "reordered", persisted: []string{"authors", "title"}, wantErr: true},
		{name: "removed key", persisted: []string{"title", "authors", "notes", "readDates", "rating"}, wantErr: true},
		{name: "renamed key", persisted: []string{"title", "writers"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := table.Verify(tt.persisted)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrRegistryReordered))
				return
			}
			require.NoError(t, err)
		})
	}
}

type memTableStore struct {
	keys  map[string][]string
	saves int
}

func (m *memTableStore) GetFieldKeys(_ context.Context, recordType string) ([]string, error) {
	return m.keys[recordType], nil
}

func (m *memTableStore) SaveFieldKeys(_ context.Context, recordType string, keys []string) error {
	m.saves++
	m.keys[recordType] = keys
	return nil
}

func TestRegistry_Verify(t *testing.T) {
	ctx := context.Background()
	book := testTable(t)
	list := MustTable("List", Entry{Key: "name"}, Entry{Key: "sort"})

	registry, err := NewRegistry(book, list)
	require.NoError(t, err)

	store := &memTableStore{keys: map[string][]string{}}

	require.NoError(t, registry.Verify(ctx, store))
	assert.Equal(t, book.Names(), store.keys["Book"])
	assert.Equal(t, []string{"name", "sort"}, store.keys["List"])
	assert.Equal(t, 2, store.saves)

	// Second start with the same tables: nothing to persist
	require.NoError(t, registry.Verify(ctx, store))
	assert.Equal(t, 2, store.saves)

	// A build that swapped two keys must refuse to start
	swapped := MustTable("List", Entry{Key: "sort"}, Entry{Key: "name"})
	bad, err := NewRegistry(book, swapped)
	require.NoError(t, err)
	err = bad.Verify(ctx, store)
	assert.ErrorIs(t, err, ErrRegistryReordered)
}

func TestRegistry_Table(t *testing.T) {
	registry, err := NewRegistry(testTable(t))
	require.NoError(t, err)

	table, err := registry.Table("Book")
	require.NoError(t, err)
	assert.Equal(t, "Book", table.RecordType())

	_, err = registry.Table("Movie")
	assert.ErrorIs(t, err, ErrUnknownRecordType)

	_, err = NewRegistry(testTable(t), testTable(t))
	assert.Error(t, err)
}
