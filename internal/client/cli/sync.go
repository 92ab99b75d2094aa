package cli

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSyncNotConfigured синхронизация не подключена
var ErrSyncNotConfigured = errors.New("sync is not configured")

// runSync выполняет один проход: выгрузка локальных правок и загрузка изменений
func (c *Cli) runSync(ctx context.Context) error {
	if c.syncer == nil {
		return ErrSyncNotConfigured
	}

	// Stop и после неудачного Start: очереди уже запущены
	defer c.syncer.Stop()
	if err := c.syncer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}

	if err := c.syncer.RespondToRemoteChange().Wait(ctx); err != nil {
		return fmt.Errorf("failed to fetch changes: %w", err)
	}
	if err := c.syncer.WaitIdle(ctx); err != nil {
		return fmt.Errorf("sync interrupted: %w", err)
	}
	if err := c.takeFatal(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	c.io.Println("✓ Sync completed")
	if last := c.syncer.LastSyncCompletion(); !last.IsZero() {
		c.io.Printf("Last sync: %s\n", last.Local().Format(time.DateTime))
	}
	return nil
}
