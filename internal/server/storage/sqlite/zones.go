package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/shelfsync/internal/server/storage"
)

// CreateZone creates the zone, or returns the existing one
func (s *Storage) CreateZone(ctx context.Context, owner, zone string) (*storage.Zone, error) {
	query := `
		INSERT INTO zones (owner, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (owner, name) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, owner, zone, s.now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return s.GetZone(ctx, owner, zone)
}

// GetZone returns ErrZoneNotFound if the zone doesn't exist
func (s *Storage) GetZone(ctx context.Context, owner, zone string) (*storage.Zone, error) {
	z := &storage.Zone{Owner: owner, Name: zone}
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM zones WHERE owner = ? AND name = ?`,
		owner, zone,
	).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}

	z.CreatedAt = unixToTime(createdAt)
	return z, nil
}

// CreateSubscription creates the subscription, or returns the existing one
func (s *Storage) CreateSubscription(ctx context.Context, owner, zone, id string) (*storage.Subscription, error) {
	zoneID, err := s.zoneID(ctx, s.db, owner, zone)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO subscriptions (zone_id, subscription_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (zone_id, subscription_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, zoneID, id, s.now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return s.GetSubscription(ctx, owner, zone, id)
}

// GetSubscription returns ErrZoneNotFound or ErrSubscriptionNotFound
func (s *Storage) GetSubscription(ctx context.Context, owner, zone, id string) (*storage.Subscription, error) {
	zoneID, err := s.zoneID(ctx, s.db, owner, zone)
	if err != nil {
		return nil, err
	}

	var createdAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM subscriptions WHERE zone_id = ? AND subscription_id = ?`,
		zoneID, id,
	).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &storage.Subscription{
		Owner:     owner,
		Zone:      zone,
		ID:        id,
		CreatedAt: unixToTime(createdAt),
	}, nil
}

// querier общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Storage) zoneID(ctx context.Context, q querier, owner, zone string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM zones WHERE owner = ? AND name = ?`, owner, zone).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrZoneNotFound
		}
		return 0, fmt.Errorf("failed to find zone: %w", err)
	}
	return id, nil
}

var _ storage.ZoneStorage = (*Storage)(nil)
