package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
)

const (
	keyCheckpoint         = "checkpoint"
	keyChangeToken        = "change_token"
	keyLastSyncCompletion = "last_sync_completion"
	prefixFlag            = "flag/"
	prefixFieldKeys       = "field_keys/"
)

// GetCheckpoint returns the local history checkpoint
func (s *Storage) GetCheckpoint(ctx context.Context) (storage.Checkpoint, error) {
	var checkpoint storage.Checkpoint
	found, err := s.getJSON(keyCheckpoint, &checkpoint)
	if err != nil {
		return storage.Checkpoint{}, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	if !found {
		return storage.Checkpoint{}, nil
	}
	return checkpoint, nil
}

// SaveCheckpoint persists the local history checkpoint
func (s *Storage) SaveCheckpoint(ctx context.Context, checkpoint storage.Checkpoint) error {
	if err := s.putJSON(keyCheckpoint, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// GetChangeToken returns the remote change token ("" if none)
func (s *Storage) GetChangeToken(ctx context.Context) (remote.ChangeToken, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var token remote.ChangeToken
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		token = remote.ChangeToken(bucket.Get([]byte(keyChangeToken)))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get change token: %w", err)
	}
	return token, nil
}

// SaveChangeToken persists the remote change token
func (s *Storage) SaveChangeToken(ctx context.Context, token remote.ChangeToken) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putChangeToken(tx, token)
	})
}

// putChangeToken сохраняет токен; пустой токен удаляет ключ
func putChangeToken(tx *bbolt.Tx, token remote.ChangeToken) error {
	bucket := tx.Bucket(bucketMetadata)
	if bucket == nil {
		return fmt.Errorf("metadata bucket not found")
	}
	if token == "" {
		return bucket.Delete([]byte(keyChangeToken))
	}
	if err := bucket.Put([]byte(keyChangeToken), []byte(token)); err != nil {
		return fmt.Errorf("failed to save change token: %w", err)
	}
	return nil
}

// GetFlag returns a persisted boolean flag (false if never set)
func (s *Storage) GetFlag(ctx context.Context, name string) (bool, error) {
	var value bool
	if _, err := s.getJSON(prefixFlag+name, &value); err != nil {
		return false, fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return value, nil
}

// SetFlag persists a boolean flag
func (s *Storage) SetFlag(ctx context.Context, name string, value bool) error {
	if err := s.putJSON(prefixFlag+name, value); err != nil {
		return fmt.Errorf("failed to set flag %s: %w", name, err)
	}
	return nil
}

// GetFieldKeys returns the persisted key order of a record type
func (s *Storage) GetFieldKeys(ctx context.Context, recordType string) ([]string, error) {
	var keys []string
	if _, err := s.getJSON(prefixFieldKeys+recordType, &keys); err != nil {
		return nil, fmt.Errorf("failed to get field keys of %s: %w", recordType, err)
	}
	return keys, nil
}

// SaveFieldKeys persists the key order of a record type
func (s *Storage) SaveFieldKeys(ctx context.Context, recordType string, keys []string) error {
	if err := s.putJSON(prefixFieldKeys+recordType, keys); err != nil {
		return fmt.Errorf("failed to save field keys of %s: %w", recordType, err)
	}
	return nil
}

// GetLastSyncCompletion returns the time of the last completed fetch
func (s *Storage) GetLastSyncCompletion(ctx context.Context) (time.Time, error) {
	var t time.Time
	if _, err := s.getJSON(keyLastSyncCompletion, &t); err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync completion: %w", err)
	}
	return t, nil
}

// SaveLastSyncCompletion persists the time of the last completed fetch
func (s *Storage) SaveLastSyncCompletion(ctx context.Context, t time.Time) error {
	if err := s.putJSON(keyLastSyncCompletion, t); err != nil {
		return fmt.Errorf("failed to save last sync completion: %w", err)
	}
	return nil
}

func (s *Storage) getJSON(key string, v any) (bool, error) {
	if s.db == nil {
		return false, storage.ErrStorageClosed
	}

	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, v)
	})
	return found, err
}

func (s *Storage) putJSON(key string, v any) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		return bucket.Put([]byte(key), data)
	})
}

var _ storage.MetadataStorage = (*Storage)(nil)
