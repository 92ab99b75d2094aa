package entity

import (
	"strings"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/fieldkey"
	"github.com/iudanet/shelfsync/internal/models"
)

// List record keys
const (
	ListKeyName  fieldkey.Key = "name"
	ListKeySort  fieldkey.Key = "sort"
	ListKeyBooks fieldkey.Key = "books"
)

// ListRecordType is the remote record type of lists
const ListRecordType = "List"

var listTable = fieldkey.MustTable(ListRecordType,
	fieldkey.Entry{Key: ListKeyName, Properties: []string{models.ListPropName}},
	fieldkey.Entry{Key: ListKeySort, Properties: []string{models.ListPropSort}},
	fieldkey.Entry{Key: ListKeyBooks, Properties: []string{models.ListPropBooks}},
)

// List is the variant of models.List
var List Variant = &variant[models.List]{
	kind:  models.KindList,
	table: listTable,
	value: func(l *models.List, key fieldkey.Key) any {
		switch key {
		case ListKeyName:
			return l.Name
		case ListKeySort:
			return l.Sort
		case ListKeyBooks:
			return l.Books
		}
		return nil
	},
	setValue: func(l *models.List, key fieldkey.Key, record *remote.Record) error {
		var err error
		switch key {
		case ListKeyName:
			var name *string
			name, err = field[string](record, key)
			l.Name = deref(name)
		case ListKeySort:
			l.Sort, err = field[int32](record, key)
		case ListKeyBooks:
			var books *[]string
			books, err = field[[]string](record, key)
			l.Books = deref(books)
		}
		return err
	},
	match: func(local, incoming *models.List) bool {
		name := strings.TrimSpace(local.Name)
		return name != "" && strings.EqualFold(name, strings.TrimSpace(incoming.Name))
	},
}
