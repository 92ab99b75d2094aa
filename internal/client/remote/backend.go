package remote

import "context"

//go:generate moq -out backend_mock.go . Backend

// Backend is the zone-scoped record service
type Backend interface {
	// CreateZone creates the zone. Creating an existing zone succeeds.
	CreateZone(ctx context.Context, zone string) error

	// ZoneExists reports whether the zone exists
	ZoneExists(ctx context.Context, zone string) (bool, error)

	// CreateSubscription registers a change-notification subscription on the zone
	CreateSubscription(ctx context.Context, zone, subscriptionID string) error

	// SubscriptionExists reports whether the subscription exists
	SubscriptionExists(ctx context.Context, zone, subscriptionID string) (bool, error)

	// ModifyRecords atomically saves records and deletes ids.
	// Returns *Error with CodePartialFailure when some records were rejected
	// (nothing is written in that case) and CodeLimitExceeded when the batch
	// is too large.
	ModifyRecords(ctx context.Context, zone string, records []*Record, deletions []RecordID) (*ModifyResult, error)

	// FetchChanges returns one page of changes after token.
	// Returns *Error with CodeChangeTokenExpired if the token is too old.
	FetchChanges(ctx context.Context, zone string, token ChangeToken) (*ChangesPage, error)
}

// ModifyResult is the outcome of a successful batch write
type ModifyResult struct {
	Saved   []*Record
	Deleted []RecordID
}

// ChangesPage is one page of the change feed
type ChangesPage struct {
	Token      ChangeToken
	Changed    []*Record
	Deleted    []DeletedRecord
	MoreComing bool
}
