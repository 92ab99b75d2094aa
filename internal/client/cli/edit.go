package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/models"
)

const dateLayout = "2006-01-02"

// EditOptions изменения книги. nil означает "не менять".
type EditOptions struct {
	Title       *string
	Notes       *string
	Language    *string
	ISBN        *string
	Started     *string
	Finished    *string
	Authors     []string
	Pages       *int32
	CurrentPage *int32
	Rating      *int16
	Sync        bool
}

func (c *Cli) runEdit(ctx context.Context, id string, opts EditOptions) error {
	var changed []string

	err := c.store.Update(ctx, LocalAuthor, func(tx storage.Tx) error {
		obj, book, err := getBook(tx, id)
		if err != nil {
			return err
		}
		changed, err = c.applyEdit(book, opts)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}
		if err := encodeBook(obj, book); err != nil {
			return err
		}
		return tx.Update(obj, changed...)
	})
	if err != nil {
		return fmt.Errorf("failed to edit book: %w", err)
	}

	if len(changed) == 0 {
		c.io.Println("Nothing to change")
		return nil
	}
	c.io.Printf("✓ Book %s updated: %s\n", id, strings.Join(changed, ", "))
	return c.afterEdit(ctx, opts.Sync)
}

// applyEdit меняет book и возвращает имена изменённых свойств
func (c *Cli) applyEdit(book *models.Book, opts EditOptions) ([]string, error) {
	var changed []string

	if opts.Title != nil {
		title := strings.TrimSpace(*opts.Title)
		if title == "" {
			return nil, errors.New("title cannot be empty")
		}
		book.Title = title
		changed = append(changed, models.BookPropTitle)
	}
	if opts.Authors != nil {
		book.Authors = parseAuthors(opts.Authors)
		changed = append(changed, models.BookPropAuthors)
	}
	if opts.ISBN != nil {
		if *opts.ISBN == "" {
			book.ISBN13 = nil
		} else {
			isbn, err := parseISBN(*opts.ISBN)
			if err != nil {
				return nil, err
			}
			book.ISBN13 = &isbn
		}
		changed = append(changed, models.BookPropISBN13)
	}
	if opts.Pages != nil {
		book.PageCount = optionalInt32(*opts.Pages)
		changed = append(changed, models.BookPropPageCount)
	}
	if opts.CurrentPage != nil {
		book.CurrentPage = optionalInt32(*opts.CurrentPage)
		changed = append(changed, models.BookPropCurrentPage)
	}
	if opts.Rating != nil {
		r := *opts.Rating
		if r < 0 || r > 10 {
			return nil, fmt.Errorf("rating must be between 1 and 10, got %d", r)
		}
		book.Rating = nil
		if r > 0 {
			book.Rating = &r
		}
		changed = append(changed, models.BookPropRating)
	}
	if opts.Notes != nil {
		book.Notes = *opts.Notes
		changed = append(changed, models.BookPropNotes)
	}
	if opts.Language != nil {
		book.LanguageCode = *opts.Language
		changed = append(changed, models.BookPropLanguageCode)
	}
	if opts.Started != nil {
		t, err := c.parseDate(*opts.Started)
		if err != nil {
			return nil, err
		}
		book.StartedReading = t
		changed = append(changed, models.BookPropStartedReading)
	}
	if opts.Finished != nil {
		t, err := c.parseDate(*opts.Finished)
		if err != nil {
			return nil, err
		}
		book.FinishedReading = t
		changed = append(changed, models.BookPropFinishedReading)
	}
	if book.FinishedReading != nil && book.StartedReading == nil {
		return nil, errors.New("a finished book needs a start date")
	}
	return changed, nil
}

// parseDate: пустая строка очищает дату, "today" означает сегодня
func (c *Cli) parseDate(s string) (*time.Time, error) {
	switch s {
	case "":
		return nil, nil
	case "today":
		t := c.now().UTC().Truncate(24 * time.Hour)
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return &t, nil
}

func optionalInt32(v int32) *int32 {
	if v <= 0 {
		return nil
	}
	return &v
}
