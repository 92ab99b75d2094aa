package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/looplab/fsm"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
)

// Persisted provisioning flags
const (
	FlagZoneReady         = "zone_ready"
	FlagSubscriptionReady = "subscription_ready"
)

// Bootstrap states
const (
	StateZoneUnknown           = "zone_unknown"
	StateZoneReady             = "zone_ready"
	StateEnvironmentReady      = "environment_ready"
	eventZoneConfirmed         = "zone_confirmed"
	eventZoneLost              = "zone_lost"
	eventSubscriptionConfirmed = "subscription_confirmed"
	eventSubscriptionLost      = "subscription_lost"
)

// Bootstrapper provisions the zone and the change subscription before any
// other sync traffic. Subscription provisioning is only reachable from the
// zone-ready state.
type Bootstrapper struct {
	backend        remote.Backend
	meta           storage.MetadataStorage
	queue          *OperationQueue
	retry          *RetryController
	logger         *slog.Logger
	machine        *fsm.FSM
	zone           string
	subscriptionID string
}

// NewBootstrapper creates a bootstrapper starting from the persisted flags
func NewBootstrapper(ctx context.Context, backend remote.Backend, meta storage.MetadataStorage, queue *OperationQueue, retry *RetryController, zone, subscriptionID string, logger *slog.Logger) (*Bootstrapper, error) {
	zoneReady, err := meta.GetFlag(ctx, FlagZoneReady)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone flag: %w", err)
	}
	subscriptionReady, err := meta.GetFlag(ctx, FlagSubscriptionReady)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription flag: %w", err)
	}

	initial := StateZoneUnknown
	switch {
	case zoneReady && subscriptionReady:
		initial = StateEnvironmentReady
	case zoneReady:
		initial = StateZoneReady
	}

	b := &Bootstrapper{
		backend:        backend,
		meta:           meta,
		queue:          queue,
		retry:          retry,
		logger:         logger,
		zone:           zone,
		subscriptionID: subscriptionID,
	}
	b.machine = fsm.NewFSM(initial,
		fsm.Events{
			{Name: eventZoneConfirmed, Src: []string{StateZoneUnknown}, Dst: StateZoneReady},
			{Name: eventZoneLost, Src: []string{StateZoneReady, StateEnvironmentReady}, Dst: StateZoneUnknown},
			{Name: eventSubscriptionConfirmed, Src: []string{StateZoneReady}, Dst: StateEnvironmentReady},
			{Name: eventSubscriptionLost, Src: []string{StateEnvironmentReady}, Dst: StateZoneReady},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("Bootstrap state changed", "from", e.Src, "to", e.Dst, "event", e.Event)
			},
		},
	)
	return b, nil
}

// State returns the current bootstrap state
func (b *Bootstrapper) State() string {
	return b.machine.Current()
}

// Ready reports whether both the zone and the subscription are provisioned
func (b *Bootstrapper) Ready() bool {
	return b.machine.Is(StateEnvironmentReady)
}

// Run provisions the zone, then the subscription. Returns nil only when both
// are ready; a failure leaves the flags for the next attempt.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if err := b.EnsureZone(ctx); err != nil {
		return fmt.Errorf("failed to prepare zone: %w", err)
	}
	if err := b.EnsureSubscription(ctx); err != nil {
		return fmt.Errorf("failed to prepare subscription: %w", err)
	}
	b.logger.Info("Sync environment ready", "zone", b.zone)
	return nil
}

// EnsureZone confirms a previously created zone still exists, or creates it
func (b *Bootstrapper) EnsureZone(ctx context.Context) error {
	if !b.machine.Is(StateZoneUnknown) {
		exists, err := b.remoteCall(ctx, "check-zone", func(ctx context.Context) (bool, error) {
			return b.backend.ZoneExists(ctx, b.zone)
		})
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		b.logger.Warn("Zone no longer exists, recreating", "zone", b.zone)
		// Вместе с зоной пропадает и подписка
		if err := b.setFlag(ctx, FlagSubscriptionReady, false); err != nil {
			return err
		}
		if err := b.setFlag(ctx, FlagZoneReady, false); err != nil {
			return err
		}
		if err := b.machine.Event(ctx, eventZoneLost); err != nil {
			return err
		}
	}

	_, err := b.remoteCall(ctx, "create-zone", func(ctx context.Context) (bool, error) {
		return true, b.backend.CreateZone(ctx, b.zone)
	})
	if err != nil {
		return err
	}
	if err := b.setFlag(ctx, FlagZoneReady, true); err != nil {
		return err
	}
	b.logger.Info("Zone created", "zone", b.zone)
	return b.machine.Event(ctx, eventZoneConfirmed)
}

// EnsureSubscription confirms or creates the change subscription.
// Returns ErrZoneNotReady unless the zone is ready.
func (b *Bootstrapper) EnsureSubscription(ctx context.Context) error {
	if b.machine.Is(StateZoneUnknown) {
		return ErrZoneNotReady
	}

	if b.machine.Is(StateEnvironmentReady) {
		exists, err := b.remoteCall(ctx, "check-subscription", func(ctx context.Context) (bool, error) {
			return b.backend.SubscriptionExists(ctx, b.zone, b.subscriptionID)
		})
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		b.logger.Warn("Subscription no longer exists, recreating", "subscription", b.subscriptionID)
		if err := b.setFlag(ctx, FlagSubscriptionReady, false); err != nil {
			return err
		}
		if err := b.machine.Event(ctx, eventSubscriptionLost); err != nil {
			return err
		}
	}

	// Переход возможен только из zone_ready
	if !b.machine.Can(eventSubscriptionConfirmed) {
		return ErrZoneNotReady
	}

	_, err := b.remoteCall(ctx, "create-subscription", func(ctx context.Context) (bool, error) {
		return true, b.backend.CreateSubscription(ctx, b.zone, b.subscriptionID)
	})
	if err != nil {
		return err
	}
	if err := b.setFlag(ctx, FlagSubscriptionReady, true); err != nil {
		return err
	}
	b.logger.Info("Subscription created", "subscription", b.subscriptionID)
	return b.machine.Event(ctx, eventSubscriptionConfirmed)
}

// remoteCall runs call on the remote queue and waits for it, resubmitting
// while the retry controller approves
func (b *Bootstrapper) remoteCall(ctx context.Context, name string, call func(ctx context.Context) (bool, error)) (bool, error) {
	for {
		var result bool
		task := b.queue.Enqueue(name, PriorityNormal, func(ctx context.Context) error {
			var err error
			result, err = call(ctx)
			return err
		})

		err := task.Wait(ctx)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return false, err
		}
		if _, ok := b.retry.ShouldRetry(err); !ok {
			return false, err
		}
	}
}

func (b *Bootstrapper) setFlag(ctx context.Context, name string, value bool) error {
	if err := b.meta.SetFlag(ctx, name, value); err != nil {
		return fmt.Errorf("failed to save %s flag: %w", name, err)
	}
	return nil
}
