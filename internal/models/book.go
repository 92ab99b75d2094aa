package models

import (
	"strings"
	"time"
)

// ReadState состояние чтения книги, выводится из дат чтения
type ReadState string

const (
	ReadStateToRead   ReadState = "to_read"
	ReadStateReading  ReadState = "reading"
	ReadStateFinished ReadState = "finished"
)

// Book представляет книгу в списке чтения.
// Поля с указателями опциональны: nil означает "не задано".
type Book struct {
	PublicationDate *time.Time `json:"publication_date,omitempty"` // PublicationDate дата публикации
	StartedReading  *time.Time `json:"started_reading,omitempty"`  // StartedReading дата начала чтения
	FinishedReading *time.Time `json:"finished_reading,omitempty"` // FinishedReading дата окончания чтения
	ISBN13          *int64     `json:"isbn13,omitempty"`           // ISBN13 ISBN-13 как число
	PageCount       *int32     `json:"page_count,omitempty"`       // PageCount количество страниц
	CurrentPage     *int32     `json:"current_page,omitempty"`     // CurrentPage текущая страница
	Rating          *int16     `json:"rating,omitempty"`           // Rating оценка (1..10)
	Sort            *int32     `json:"sort,omitempty"`             // Sort позиция в списке "to read"
	Title           string     `json:"title"`                      // Title название книги
	GoogleBooksID   string     `json:"google_books_id,omitempty"`  // GoogleBooksID идентификатор Google Books
	Description     string     `json:"description,omitempty"`      // Description описание
	Notes           string     `json:"notes,omitempty"`            // Notes заметки пользователя
	LanguageCode    string     `json:"language_code,omitempty"`    // LanguageCode код языка (ISO 639-1)
	Authors         []Author   `json:"authors"`                    // Authors авторы в порядке указания
	CoverImage      []byte     `json:"cover_image,omitempty"`      // CoverImage обложка (JPEG)
}

// Author автор книги
type Author struct {
	LastName   string `json:"last_name"`
	FirstNames string `json:"first_names,omitempty"`
}

// DisplayName возвращает имя автора для отображения
func (a Author) DisplayName() string {
	if a.FirstNames == "" {
		return a.LastName
	}
	return a.FirstNames + " " + a.LastName
}

// ReadState вычисляет состояние чтения по датам
func (b *Book) ReadState() ReadState {
	switch {
	case b.StartedReading == nil:
		return ReadStateToRead
	case b.FinishedReading == nil:
		return ReadStateReading
	default:
		return ReadStateFinished
	}
}

// AuthorsDisplay возвращает авторов через запятую
func (b *Book) AuthorsDisplay() string {
	names := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		names[i] = a.DisplayName()
	}
	return strings.Join(names, ", ")
}

// Book property names as recorded in the local transaction history
const (
	BookPropTitle           = "title"
	BookPropAuthors         = "authors"
	BookPropGoogleBooksID   = "googleBooksId"
	BookPropISBN13          = "isbn13"
	BookPropPageCount       = "pageCount"
	BookPropPublicationDate = "publicationDate"
	BookPropDescription     = "bookDescription"
	BookPropCoverImage      = "coverImage"
	BookPropNotes           = "notes"
	BookPropCurrentPage     = "currentPage"
	BookPropLanguageCode    = "languageCode"
	BookPropRating          = "rating"
	BookPropSort            = "sort"
	BookPropStartedReading  = "startedReading"
	BookPropFinishedReading = "finishedReading"
)
