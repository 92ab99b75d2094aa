package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/client/sync"
	"github.com/iudanet/shelfsync/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	checkpoint, err := c.meta.GetCheckpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	token, err := c.meta.GetChangeToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to load change token: %w", err)
	}
	lastSync, err := c.meta.GetLastSyncCompletion(ctx)
	if err != nil {
		return fmt.Errorf("failed to load last sync time: %w", err)
	}
	history, err := c.store.History(ctx, checkpoint)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	// Правки, которые синхронизация сделала сама, не выгружаются
	pending := 0
	for _, tx := range history {
		if tx.Author != sync.DefaultAuthor {
			pending++
		}
	}

	var books int
	err = c.store.View(ctx, func(tx storage.Tx) error {
		objs, err := tx.List(models.KindBook)
		books = len(objs)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}

	c.io.Println("=== Sync Status ===")
	c.io.Printf("Books:               %d\n", books)
	switch {
	case checkpoint.Token != 0:
		c.io.Printf("History checkpoint:  %d\n", checkpoint.Token)
	case !checkpoint.Watermark.IsZero():
		c.io.Printf("History checkpoint:  since %s\n", checkpoint.Watermark.Local().Format(time.DateTime))
	default:
		c.io.Println("History checkpoint:  none")
	}
	c.io.Printf("Pending changes:     %d\n", pending)
	if token == "" {
		c.io.Println("Change token:        none (full fetch on next sync)")
	} else {
		c.io.Printf("Change token:        %s\n", token)
	}
	if lastSync.IsZero() {
		c.io.Println("Last sync:           never")
	} else {
		c.io.Printf("Last sync:           %s\n", lastSync.Local().Format(time.DateTime))
	}
	return nil
}
