package storage

import (
	"context"
	"time"

	"github.com/iudanet/shelfsync/internal/client/remote"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing sync metadata on client
type MetadataStorage interface {
	// GetCheckpoint returns the local history checkpoint.
	// Returns a zero Checkpoint if none was saved yet.
	GetCheckpoint(ctx context.Context) (Checkpoint, error)

	// SaveCheckpoint persists the local history checkpoint
	SaveCheckpoint(ctx context.Context, checkpoint Checkpoint) error

	// GetChangeToken returns the remote change token ("" if none)
	GetChangeToken(ctx context.Context) (remote.ChangeToken, error)

	// SaveChangeToken persists the remote change token
	SaveChangeToken(ctx context.Context, token remote.ChangeToken) error

	// GetFlag returns a persisted boolean flag (false if never set)
	GetFlag(ctx context.Context, name string) (bool, error)

	// SetFlag persists a boolean flag
	SetFlag(ctx context.Context, name string, value bool) error

	// GetFieldKeys returns the persisted key order of a record type
	GetFieldKeys(ctx context.Context, recordType string) ([]string, error)

	// SaveFieldKeys persists the key order of a record type
	SaveFieldKeys(ctx context.Context, recordType string, keys []string) error

	// GetLastSyncCompletion returns the time of the last completed fetch
	GetLastSyncCompletion(ctx context.Context) (time.Time, error)

	// SaveLastSyncCompletion persists the time of the last completed fetch
	SaveLastSyncCompletion(ctx context.Context, t time.Time) error
}
