package storage

import (
	"context"
	"encoding/json"
	"time"
)

// Zone is a named record container owned by one token subject
type Zone struct {
	CreatedAt time.Time
	Owner     string
	Name      string
}

// Subscription is a registered change-notification subscription of a zone
type Subscription struct {
	CreatedAt time.Time
	Owner     string
	Zone      string
	ID        string
}

// Record is the stored version of a zone record
type Record struct {
	Fields     map[string]json.RawMessage
	ModifiedAt time.Time
	Name       string
	Type       string
	ChangeTag  string
}

// RecordKey identifies a record inside a zone
type RecordKey struct {
	Name string
	Type string
}

// ChangePage is one page of the zone change feed. Seq is the feed position
// after the page.
type ChangePage struct {
	Changed    []*Record
	Deleted    []RecordKey
	Seq        int64
	MoreComing bool
}

// ZoneStorage defines persistence of zones and subscriptions
type ZoneStorage interface {
	// CreateZone creates the zone, or returns the existing one
	CreateZone(ctx context.Context, owner, zone string) (*Zone, error)

	// GetZone returns ErrZoneNotFound if the zone doesn't exist
	GetZone(ctx context.Context, owner, zone string) (*Zone, error)

	// CreateSubscription creates the subscription, or returns the existing one.
	// Returns ErrZoneNotFound if the zone doesn't exist.
	CreateSubscription(ctx context.Context, owner, zone, id string) (*Subscription, error)

	// GetSubscription returns ErrZoneNotFound or ErrSubscriptionNotFound
	GetSubscription(ctx context.Context, owner, zone, id string) (*Subscription, error)
}

//go:generate moq -out records_mock.go . RecordStorage

// RecordStorage defines persistence of zone records and the change feed
type RecordStorage interface {
	// ModifyRecords atomically saves records and deletes keys with the save
	// policy "if server record unchanged": a record whose ChangeTag differs
	// from the stored one fails the whole batch with *ConflictError.
	// Saved records are returned with fresh change tags.
	ModifyRecords(ctx context.Context, owner, zone string, records []*Record, deletions []RecordKey) ([]*Record, error)

	// Changes returns up to limit changes after feed position since.
	// Returns ErrChangeTokenExpired if deletions after since were pruned.
	Changes(ctx context.Context, owner, zone string, since int64, limit int) (*ChangePage, error)

	// PruneChanges drops deletion markers older than before and returns how
	// many were removed
	PruneChanges(ctx context.Context, before time.Time) (int64, error)
}
