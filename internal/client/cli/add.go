package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/models"
)

// AddOptions поля новой книги
type AddOptions struct {
	Title    string
	ISBN     string
	Notes    string
	Language string
	Authors  []string
	Pages    int32
	Sync     bool
}

func (c *Cli) runAdd(ctx context.Context, opts AddOptions) error {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		input, err := c.io.ReadInput("Title: ")
		if err != nil {
			return fmt.Errorf("failed to read title: %w", err)
		}
		title = strings.TrimSpace(input)
	}
	if title == "" {
		return errors.New("title cannot be empty")
	}

	book := &models.Book{
		Title:        title,
		Notes:        opts.Notes,
		LanguageCode: opts.Language,
		Authors:      parseAuthors(opts.Authors),
	}
	if opts.ISBN != "" {
		isbn, err := parseISBN(opts.ISBN)
		if err != nil {
			return err
		}
		book.ISBN13 = &isbn
	}
	if opts.Pages < 0 {
		return fmt.Errorf("pages must not be negative, got %d", opts.Pages)
	}
	if opts.Pages > 0 {
		book.PageCount = &opts.Pages
	}

	obj := &storage.Object{Kind: models.KindBook}
	if err := encodeBook(obj, book); err != nil {
		return err
	}
	err := c.store.Update(ctx, LocalAuthor, func(tx storage.Tx) error {
		return tx.Insert(obj)
	})
	if err != nil {
		return fmt.Errorf("failed to add book: %w", err)
	}

	c.io.Println("✓ Book added")
	c.io.Printf("ID:    %s\n", obj.ID)
	c.io.Printf("Title: %s\n", book.Title)
	if len(book.Authors) > 0 {
		c.io.Printf("By:    %s\n", book.AuthorsDisplay())
	}

	return c.afterEdit(ctx, opts.Sync)
}

// afterEdit синхронизирует сразу или напоминает о sync
func (c *Cli) afterEdit(ctx context.Context, autoSync bool) error {
	if !autoSync {
		c.io.Println("Note: the change is stored locally. Run 'shelfsync sync' to upload it.")
		return nil
	}
	c.io.Println("Syncing with server...")
	return c.runSync(ctx)
}

// parseAuthors понимает "Имя Фамилия" и "Фамилия, Имя"
func parseAuthors(names []string) []models.Author {
	authors := make([]models.Author, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if last, first, ok := strings.Cut(name, ","); ok {
			authors = append(authors, models.Author{
				LastName:   strings.TrimSpace(last),
				FirstNames: strings.TrimSpace(first),
			})
			continue
		}
		fields := strings.Fields(name)
		authors = append(authors, models.Author{
			LastName:   fields[len(fields)-1],
			FirstNames: strings.Join(fields[:len(fields)-1], " "),
		})
	}
	return authors
}

// parseISBN принимает ISBN-13 с дефисами или пробелами
func parseISBN(s string) (int64, error) {
	digits := strings.NewReplacer("-", "", " ", "").Replace(s)
	if len(digits) != 13 {
		return 0, fmt.Errorf("invalid ISBN-13 %q: expected 13 digits", s)
	}
	isbn, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ISBN-13 %q: %w", s, err)
	}
	return isbn, nil
}
