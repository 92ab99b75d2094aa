package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/fieldkey"
	"github.com/iudanet/shelfsync/internal/models"
)

func ptr[V any](v V) *V { return &v }

func bookObject(t *testing.T, b models.Book) *storage.Object {
	t.Helper()
	data, err := json.Marshal(b)
	require.NoError(t, err)
	return &storage.Object{ID: "obj-1", Kind: models.KindBook, Data: data}
}

func decodeBook(t *testing.T, obj *storage.Object) models.Book {
	t.Helper()
	var b models.Book
	require.NoError(t, json.Unmarshal(obj.Data, &b))
	return b
}

func TestDispatch(t *testing.T) {
	v, err := For(models.KindBook)
	require.NoError(t, err)
	assert.Equal(t, BookRecordType, v.Table().RecordType())

	v, err = ForRecordType(ListRecordType)
	require.NoError(t, err)
	assert.Equal(t, models.KindList, v.Kind())

	_, err = For("shelf")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = ForRecordType("Shelf")
	assert.ErrorIs(t, err, fieldkey.ErrUnknownRecordType)

	registry, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{BookRecordType, ListRecordType}, registry.RecordTypes())
}

func TestBookTable_ReadDatesShareOneKey(t *testing.T) {
	table := Book.Table()

	mask := table.MaskForProperties([]string{models.BookPropStartedReading, models.BookPropFinishedReading})
	assert.Equal(t, table.Mask(BookKeyReadDates), mask)
	assert.Equal(t, 14, table.All().Len())

	// Порядок ключей сохраняется в маске и не должен меняться
	assert.Equal(t, []string{
		"title", "authors", "googleBooksId", "isbn13", "pageCount", "publicationDate",
		"bookDescription", "coverImage", "notes", "currentPage", "languageCode",
		"rating", "sort", "readDates",
	}, table.Names())
}

func TestRecordForInsert(t *testing.T) {
	started := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obj := bookObject(t, models.Book{
		Title:          "Dune",
		Authors:        []models.Author{{LastName: "Herbert", FirstNames: "Frank"}},
		ISBN13:         ptr(int64(9780441013593)),
		StartedReading: &started,
	})

	record, err := Book.RecordForInsert(obj, "library")
	require.NoError(t, err)

	assert.NotEmpty(t, obj.RecordName)
	assert.Equal(t, remote.RecordID{ZoneName: "library", RecordName: obj.RecordName, RecordType: BookRecordType}, record.ID)
	assert.Empty(t, record.ChangeTag)
	assert.Len(t, record.Fields, 14)
	assert.JSONEq(t, `"Dune"`, string(record.Fields["title"]))
	assert.JSONEq(t, `9780441013593`, string(record.Fields["isbn13"]))
	assert.JSONEq(t, `null`, string(record.Fields["notes"]))
	assert.JSONEq(t, `["2024-03-01T00:00:00Z"]`, string(record.Fields["readDates"]))

	// Существующий record name не переназначается
	name := obj.RecordName
	_, err = Book.RecordForInsert(obj, "library")
	require.NoError(t, err)
	assert.Equal(t, name, obj.RecordName)
}

func TestRecordForUpdate(t *testing.T) {
	obj := bookObject(t, models.Book{Title: "Dune", Notes: "great"})

	// Без серверной версии обновление невозможно
	record, err := Book.RecordForUpdate(obj, Book.Table().Mask(BookKeyNotes))
	require.NoError(t, err)
	assert.Nil(t, record)

	obj.RecordName = "rec-1"
	obj.SystemFields = &remote.Record{
		ID:        remote.RecordID{ZoneName: "library", RecordName: "rec-1", RecordType: BookRecordType},
		ChangeTag: "v3",
	}

	record, err = Book.RecordForUpdate(obj, Book.Table().Mask(BookKeyNotes))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "v3", record.ChangeTag)
	assert.Equal(t, []string{"notes"}, record.FieldNames())
	assert.JSONEq(t, `"great"`, string(record.Fields["notes"]))

	id, ok := Book.RemoteIdentity(obj, "other")
	require.True(t, ok)
	assert.Equal(t, "library", id.ZoneName)
}

func TestApplyRemoteRecord_Excluding(t *testing.T) {
	obj := bookObject(t, models.Book{Title: "Local title", Notes: "local notes", Rating: ptr(int16(3))})

	record := remote.NewRecord(remote.RecordID{ZoneName: "library", RecordName: "rec-1", RecordType: BookRecordType})
	require.NoError(t, record.Set("title", "Remote title"))
	require.NoError(t, record.Set("notes", "remote notes"))
	require.NoError(t, record.Set("readDates", []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}))

	excluding := Book.Table().Mask(BookKeyNotes)
	properties, err := Book.ApplyRemoteRecord(obj, record, excluding)
	require.NoError(t, err)

	b := decodeBook(t, obj)
	assert.Equal(t, "Remote title", b.Title)
	assert.Equal(t, "local notes", b.Notes, "excluded key must keep the local value")
	assert.Nil(t, b.Rating, "absent field resets the local value")
	assert.Equal(t, models.ReadStateFinished, b.ReadState())

	assert.NotContains(t, properties, models.BookPropNotes)
	assert.Contains(t, properties, models.BookPropTitle)
	assert.Contains(t, properties, models.BookPropFinishedReading)
}

func TestApplyRemoteRecord_BadValue(t *testing.T) {
	obj := bookObject(t, models.Book{Title: "Dune"})
	record := remote.NewRecord(remote.RecordID{RecordName: "rec-1", RecordType: BookRecordType})
	record.Fields["pageCount"] = json.RawMessage(`"many"`)

	_, err := Book.ApplyRemoteRecord(obj, record, 0)
	assert.Error(t, err)
	assert.Equal(t, "Dune", decodeBook(t, obj).Title)
}

func TestMatchCandidate(t *testing.T) {
	herbert := []models.Author{{LastName: "Herbert", FirstNames: "Frank"}}

	tests := []struct {
		name   string
		local  models.Book
		remote map[string]any
		want   bool
	}{
		{
			name:   "same isbn",
			local:  models.Book{Title: "Dune", ISBN13: ptr(int64(1))},
			remote: map[string]any{"title": "Dune (paperback)", "isbn13": 1},
			want:   true,
		},
		{
			name:   "different isbn wins over title",
			local:  models.Book{Title: "Dune", Authors: herbert, ISBN13: ptr(int64(1))},
			remote: map[string]any{"title": "Dune", "authors": herbert, "isbn13": 2},
			want:   false,
		},
		{
			name:   "same title and authors",
			local:  models.Book{Title: "Dune", Authors: herbert},
			remote: map[string]any{"title": " dune ", "authors": herbert},
			want:   true,
		},
		{
			name:   "same title other authors",
			local:  models.Book{Title: "Dune", Authors: herbert},
			remote: map[string]any{"title": "Dune", "authors": []models.Author{{LastName: "Anderson"}}},
			want:   false,
		},
		{
			name:   "empty title never matches",
			local:  models.Book{},
			remote: map[string]any{"title": ""},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := remote.NewRecord(remote.RecordID{RecordName: "rec", RecordType: BookRecordType})
			for k, v := range tt.remote {
				require.NoError(t, record.Set(k, v))
			}
			got, err := Book.MatchCandidate(bookObject(t, tt.local), record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_RoundTrip(t *testing.T) {
	data, err := json.Marshal(models.List{Name: "Favourites", Books: []string{"a", "b"}})
	require.NoError(t, err)
	obj := &storage.Object{ID: "l1", Kind: models.KindList, Data: data}

	record, err := List.RecordForInsert(obj, "library")
	require.NoError(t, err)
	assert.Equal(t, ListRecordType, record.ID.RecordType)

	target := &storage.Object{ID: "l2", Kind: models.KindList}
	_, err = List.ApplyRemoteRecord(target, record, 0)
	require.NoError(t, err)

	var l models.List
	require.NoError(t, json.Unmarshal(target.Data, &l))
	assert.Equal(t, "Favourites", l.Name)
	assert.Equal(t, []string{"a", "b"}, l.Books)

	match, err := List.MatchCandidate(obj, record)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestSetSystemMetadata(t *testing.T) {
	obj := bookObject(t, models.Book{Title: "Dune"})
	record := remote.NewRecord(remote.RecordID{ZoneName: "library", RecordName: "rec-9", RecordType: BookRecordType})
	record.ChangeTag = "v1"
	require.NoError(t, record.Set("title", "Other"))

	SetSystemMetadata(obj, record)

	assert.Equal(t, "rec-9", obj.RecordName)
	assert.Equal(t, "v1", obj.SystemFields.ChangeTag)
	assert.Empty(t, obj.SystemFields.Fields)
	assert.Equal(t, "Dune", decodeBook(t, obj).Title)
}
