package cli

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// runWatch держит синхронизацию запущенной и опрашивает сервер каждые pollInterval
func (c *Cli) runWatch(ctx context.Context) error {
	if c.syncer == nil {
		return ErrSyncNotConfigured
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.pollInterval)
	}

	// Stop и после неудачного Start: очереди уже запущены
	defer c.syncer.Stop()
	if err := c.syncer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}

	c.io.Printf("Watching for changes every %s. Press Ctrl+C to stop.\n", c.pollInterval)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.io.Println("Stopped")
			return nil
		case <-ticker.C:
			c.syncer.RespondToRemoteChange().OnDone(func(err error) {
				if err != nil && !errors.Is(err, context.Canceled) {
					c.logger.Warn("Fetch failed", "error", err)
				}
			})
			if err := c.takeFatal(); err != nil {
				c.io.Printf("Sync error: %v\n", err)
			}
		}
	}
}
