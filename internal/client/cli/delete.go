package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/shelfsync/internal/client/storage"
)

func (c *Cli) runDelete(ctx context.Context, id string, yes, autoSync bool) error {
	var title string
	err := c.store.View(ctx, func(tx storage.Tx) error {
		_, book, err := getBook(tx, id)
		if err != nil {
			return err
		}
		title = book.Title
		return nil
	})
	if err != nil {
		return err
	}

	if !yes {
		answer, err := c.io.ReadInput(fmt.Sprintf("Delete %q? (yes/no): ", title))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "yes" && answer != "y" {
			c.io.Println("Deletion cancelled")
			return nil
		}
	}

	err = c.store.Update(ctx, LocalAuthor, func(tx storage.Tx) error {
		return tx.Delete(id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	c.io.Printf("✓ Book %q deleted\n", title)
	return c.afterEdit(ctx, autoSync)
}
