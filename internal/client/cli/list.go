package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/models"
)

type bookRow struct {
	book   *models.Book
	id     string
	record string
}

func (c *Cli) runList(ctx context.Context, state string) error {
	filter := models.ReadState(state)
	switch filter {
	case "", models.ReadStateToRead, models.ReadStateReading, models.ReadStateFinished:
	default:
		return fmt.Errorf("unknown read state %q (to_read, reading, finished)", state)
	}

	var rows []bookRow
	err := c.store.View(ctx, func(tx storage.Tx) error {
		objs, err := tx.List(models.KindBook)
		if err != nil {
			return err
		}
		for _, obj := range objs {
			book, err := decodeBook(obj)
			if err != nil {
				return err
			}
			if filter != "" && book.ReadState() != filter {
				continue
			}
			rows = append(rows, bookRow{book: book, id: obj.ID, record: obj.RecordName})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if len(rows) == 0 {
		c.io.Println("No books found")
		return nil
	}

	sort.Slice(rows, func(i, j int) bool {
		ti, tj := strings.ToLower(rows[i].book.Title), strings.ToLower(rows[j].book.Title)
		if ti != tj {
			return ti < tj
		}
		return rows[i].id < rows[j].id
	})

	c.io.Printf("Books (%d):\n", len(rows))
	for _, row := range rows {
		line := fmt.Sprintf("%s  %-9s %s", row.id, row.book.ReadState(), row.book.Title)
		if len(row.book.Authors) > 0 {
			line += " by " + row.book.AuthorsDisplay()
		}
		if row.record == "" {
			line += " [not uploaded]"
		}
		c.io.Println(line)
	}
	return nil
}
