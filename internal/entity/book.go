package entity

import (
	"strings"
	"time"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/fieldkey"
	"github.com/iudanet/shelfsync/internal/models"
)

// Book record keys. Order is persisted in pending bitmasks: append only.
const (
	BookKeyTitle           fieldkey.Key = "title"
	BookKeyAuthors         fieldkey.Key = "authors"
	BookKeyGoogleBooksID   fieldkey.Key = "googleBooksId"
	BookKeyISBN13          fieldkey.Key = "isbn13"
	BookKeyPageCount       fieldkey.Key = "pageCount"
	BookKeyPublicationDate fieldkey.Key = "publicationDate"
	BookKeyDescription     fieldkey.Key = "bookDescription"
	BookKeyCoverImage      fieldkey.Key = "coverImage"
	BookKeyNotes           fieldkey.Key = "notes"
	BookKeyCurrentPage     fieldkey.Key = "currentPage"
	BookKeyLanguageCode    fieldkey.Key = "languageCode"
	BookKeyRating          fieldkey.Key = "rating"
	BookKeySort            fieldkey.Key = "sort"
	BookKeyReadDates       fieldkey.Key = "readDates"
)

// BookRecordType is the remote record type of books
const BookRecordType = "Book"

var bookTable = fieldkey.MustTable(BookRecordType,
	fieldkey.Entry{Key: BookKeyTitle, Properties: []string{models.BookPropTitle}},
	fieldkey.Entry{Key: BookKeyAuthors, Properties: []string{models.BookPropAuthors}},
	fieldkey.Entry{Key: BookKeyGoogleBooksID, Properties: []string{models.BookPropGoogleBooksID}},
	fieldkey.Entry{Key: BookKeyISBN13, Properties: []string{models.BookPropISBN13}},
	fieldkey.Entry{Key: BookKeyPageCount, Properties: []string{models.BookPropPageCount}},
	fieldkey.Entry{Key: BookKeyPublicationDate, Properties: []string{models.BookPropPublicationDate}},
	fieldkey.Entry{Key: BookKeyDescription, Properties: []string{models.BookPropDescription}},
	fieldkey.Entry{Key: BookKeyCoverImage, Properties: []string{models.BookPropCoverImage}},
	fieldkey.Entry{Key: BookKeyNotes, Properties: []string{models.BookPropNotes}},
	fieldkey.Entry{Key: BookKeyCurrentPage, Properties: []string{models.BookPropCurrentPage}},
	fieldkey.Entry{Key: BookKeyLanguageCode, Properties: []string{models.BookPropLanguageCode}},
	fieldkey.Entry{Key: BookKeyRating, Properties: []string{models.BookPropRating}},
	fieldkey.Entry{Key: BookKeySort, Properties: []string{models.BookPropSort}},
	// обе даты чтения синхронизируются одним полем
	fieldkey.Entry{Key: BookKeyReadDates, Properties: []string{models.BookPropStartedReading, models.BookPropFinishedReading}},
)

// Book is the variant of models.Book
var Book Variant = &variant[models.Book]{
	kind:     models.KindBook,
	table:    bookTable,
	value:    bookValue,
	setValue: setBookValue,
	match:    matchBook,
}

func bookValue(b *models.Book, key fieldkey.Key) any {
	switch key {
	case BookKeyTitle:
		return b.Title
	case BookKeyAuthors:
		return b.Authors
	case BookKeyGoogleBooksID:
		return optString(b.GoogleBooksID)
	case BookKeyISBN13:
		return b.ISBN13
	case BookKeyPageCount:
		return b.PageCount
	case BookKeyPublicationDate:
		return b.PublicationDate
	case BookKeyDescription:
		return optString(b.Description)
	case BookKeyCoverImage:
		if len(b.CoverImage) == 0 {
			return nil
		}
		return b.CoverImage
	case BookKeyNotes:
		return optString(b.Notes)
	case BookKeyCurrentPage:
		return b.CurrentPage
	case BookKeyLanguageCode:
		return optString(b.LanguageCode)
	case BookKeyRating:
		return b.Rating
	case BookKeySort:
		return b.Sort
	case BookKeyReadDates:
		switch b.ReadState() {
		case models.ReadStateReading:
			return []time.Time{*b.StartedReading}
		case models.ReadStateFinished:
			return []time.Time{*b.StartedReading, *b.FinishedReading}
		}
		return nil
	}
	return nil
}

func setBookValue(b *models.Book, key fieldkey.Key, record *remote.Record) error {
	var err error
	switch key {
	case BookKeyTitle:
		var title *string
		title, err = field[string](record, key)
		b.Title = deref(title)
	case BookKeyAuthors:
		var authors *[]models.Author
		authors, err = field[[]models.Author](record, key)
		b.Authors = deref(authors)
	case BookKeyGoogleBooksID:
		var v *string
		v, err = field[string](record, key)
		b.GoogleBooksID = deref(v)
	case BookKeyISBN13:
		b.ISBN13, err = field[int64](record, key)
	case BookKeyPageCount:
		b.PageCount, err = field[int32](record, key)
	case BookKeyPublicationDate:
		b.PublicationDate, err = field[time.Time](record, key)
	case BookKeyDescription:
		var v *string
		v, err = field[string](record, key)
		b.Description = deref(v)
	case BookKeyCoverImage:
		var v *[]byte
		v, err = field[[]byte](record, key)
		b.CoverImage = deref(v)
	case BookKeyNotes:
		var v *string
		v, err = field[string](record, key)
		b.Notes = deref(v)
	case BookKeyCurrentPage:
		b.CurrentPage, err = field[int32](record, key)
	case BookKeyLanguageCode:
		var v *string
		v, err = field[string](record, key)
		b.LanguageCode = deref(v)
	case BookKeyRating:
		b.Rating, err = field[int16](record, key)
	case BookKeySort:
		b.Sort, err = field[int32](record, key)
	case BookKeyReadDates:
		var dates *[]time.Time
		dates, err = field[[]time.Time](record, key)
		b.StartedReading, b.FinishedReading = nil, nil
		if dates != nil {
			if len(*dates) > 0 {
				b.StartedReading = &(*dates)[0]
			}
			if len(*dates) > 1 {
				b.FinishedReading = &(*dates)[1]
			}
		}
	}
	return err
}

// matchBook: совпадение по ISBN, иначе по названию и авторам
func matchBook(local, incoming *models.Book) bool {
	if local.ISBN13 != nil && incoming.ISBN13 != nil {
		return *local.ISBN13 == *incoming.ISBN13
	}
	title := strings.TrimSpace(local.Title)
	if title == "" || !strings.EqualFold(title, strings.TrimSpace(incoming.Title)) {
		return false
	}
	return strings.EqualFold(local.AuthorsDisplay(), incoming.AuthorsDisplay())
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// field читает поле записи; nil если поле отсутствует или null
func field[V any](record *remote.Record, key fieldkey.Key) (*V, error) {
	var v V
	found, err := record.Get(string(key), &v)
	if err != nil || !found {
		return nil, err
	}
	return &v, nil
}

func deref[V any](v *V) V {
	if v == nil {
		var zero V
		return zero
	}
	return *v
}
