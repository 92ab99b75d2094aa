package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/models"
)

// boltTx implements storage.Tx on top of a bbolt transaction
type boltTx struct {
	btx     *bbolt.Tx
	changes []storage.ObjectChange
}

// Update runs fn in one write transaction and records its object changes as
// one history entry
func (s *Storage) Update(ctx context.Context, author string, fn func(tx storage.Tx) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var token storage.HistoryToken

	err := s.db.Update(func(btx *bbolt.Tx) error {
		tx := &boltTx{btx: btx}
		if err := fn(tx); err != nil {
			return err
		}

		// Метаданные без изменений объектов в историю не попадают
		if len(tx.changes) == 0 {
			return nil
		}

		history := btx.Bucket(bucketHistory)
		seq, err := history.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate history token: %w", err)
		}
		token = storage.HistoryToken(seq)

		entry := storage.Transaction{
			Token:     token,
			Timestamp: s.now(),
			Author:    author,
			Changes:   tx.changes,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal history entry: %w", err)
		}
		if err := history.Put(tokenKey(token), data); err != nil {
			return fmt.Errorf("failed to save history entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if token != 0 {
		s.notify(token)
	}
	return nil
}

// View runs fn in a read-only transaction
func (s *Storage) View(ctx context.Context, fn func(tx storage.Tx) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{btx: btx})
	})
}

// Get returns an object by local ID
func (t *boltTx) Get(id string) (*storage.Object, error) {
	data := t.btx.Bucket(bucketObjects).Get([]byte(id))
	if data == nil {
		return nil, storage.ErrObjectNotFound
	}

	obj := &storage.Object{}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal object %s: %w", id, err)
	}
	return obj, nil
}

// FindByRecordName returns the object of kind with the given remote identity
func (t *boltTx) FindByRecordName(kind models.Kind, recordName string) (*storage.Object, error) {
	if recordName == "" {
		return nil, storage.ErrObjectNotFound
	}
	id := t.btx.Bucket(bucketRecordIndex).Get(indexKey(kind, recordName))
	if id == nil {
		return nil, storage.ErrObjectNotFound
	}
	return t.Get(string(id))
}

// List returns all objects of kind
func (t *boltTx) List(kind models.Kind) ([]*storage.Object, error) {
	var objects []*storage.Object

	err := t.btx.Bucket(bucketObjects).ForEach(func(k, v []byte) error {
		var obj storage.Object
		if err := json.Unmarshal(v, &obj); err != nil {
			return fmt.Errorf("failed to unmarshal object %s: %w", k, err)
		}
		if obj.Kind == kind {
			objects = append(objects, &obj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// Insert stores a new object, assigning an ID if empty
func (t *boltTx) Insert(obj *storage.Object) error {
	if !t.btx.Writable() {
		return storage.ErrReadOnly
	}
	if obj.ID == "" {
		obj.ID = uuid.New().String()
	}
	if t.btx.Bucket(bucketObjects).Get([]byte(obj.ID)) != nil {
		return fmt.Errorf("object %s already exists", obj.ID)
	}

	if err := t.put(obj, nil); err != nil {
		return err
	}

	t.changes = append(t.changes, storage.ObjectChange{
		ObjectID: obj.ID,
		Kind:     obj.Kind,
		Op:       storage.OpInsert,
	})
	return nil
}

// Update stores obj and records which properties changed
func (t *boltTx) Update(obj *storage.Object, properties ...string) error {
	if !t.btx.Writable() {
		return storage.ErrReadOnly
	}

	existing, err := t.Get(obj.ID)
	if err != nil {
		return err
	}

	if err := t.put(obj, existing); err != nil {
		return err
	}

	if len(properties) > 0 {
		t.changes = append(t.changes, storage.ObjectChange{
			ObjectID:   obj.ID,
			Kind:       obj.Kind,
			Op:         storage.OpUpdate,
			Properties: append([]string(nil), properties...),
		})
	}
	return nil
}

// Delete removes an object outright
func (t *boltTx) Delete(id string) error {
	if !t.btx.Writable() {
		return storage.ErrReadOnly
	}

	existing, err := t.Get(id)
	if err != nil {
		return err
	}

	if err := t.btx.Bucket(bucketObjects).Delete([]byte(id)); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", id, err)
	}
	if existing.RecordName != "" {
		if err := t.btx.Bucket(bucketRecordIndex).Delete(indexKey(existing.Kind, existing.RecordName)); err != nil {
			return fmt.Errorf("failed to delete record index: %w", err)
		}
	}

	t.changes = append(t.changes, storage.ObjectChange{
		ObjectID:   id,
		Kind:       existing.Kind,
		Op:         storage.OpDelete,
		RecordName: existing.RecordName,
	})
	return nil
}

// SetChangeToken stores the remote change token in the same transaction
func (t *boltTx) SetChangeToken(token remote.ChangeToken) error {
	if !t.btx.Writable() {
		return storage.ErrReadOnly
	}
	return putChangeToken(t.btx, token)
}

// put сохраняет объект и поддерживает индекс по record name
func (t *boltTx) put(obj *storage.Object, existing *storage.Object) error {
	index := t.btx.Bucket(bucketRecordIndex)

	if existing != nil && existing.RecordName != "" && existing.RecordName != obj.RecordName {
		if err := index.Delete(indexKey(existing.Kind, existing.RecordName)); err != nil {
			return fmt.Errorf("failed to delete record index: %w", err)
		}
	}

	if obj.RecordName != "" {
		key := indexKey(obj.Kind, obj.RecordName)
		if owner := index.Get(key); owner != nil && string(owner) != obj.ID {
			return fmt.Errorf("record name %s already belongs to object %s", obj.RecordName, owner)
		}
		if err := index.Put(key, []byte(obj.ID)); err != nil {
			return fmt.Errorf("failed to save record index: %w", err)
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %w", err)
	}
	if err := t.btx.Bucket(bucketObjects).Put([]byte(obj.ID), data); err != nil {
		return fmt.Errorf("failed to save object: %w", err)
	}
	return nil
}

// History returns committed transactions after the checkpoint, in order
func (s *Storage) History(ctx context.Context, since storage.Checkpoint) ([]storage.Transaction, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var transactions []storage.Transaction
	err := s.db.View(func(btx *bbolt.Tx) error {
		var err error
		transactions, err = readHistory(btx, since)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return transactions, nil
}

// History returns transactions committed after since, read inside t
func (t *boltTx) History(since storage.Checkpoint) ([]storage.Transaction, error) {
	transactions, err := readHistory(t.btx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return transactions, nil
}

func readHistory(btx *bbolt.Tx, since storage.Checkpoint) ([]storage.Transaction, error) {
	var transactions []storage.Transaction
	c := btx.Bucket(bucketHistory).Cursor()

	var k, v []byte
	if since.Token != 0 {
		k, v = c.Seek(tokenKey(since.Token + 1))
	} else {
		k, v = c.First()
	}

	for ; k != nil; k, v = c.Next() {
		var entry storage.Transaction
		if err := json.Unmarshal(v, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}

		// Без токена ориентируемся на время начала наблюдения
		if since.Token == 0 && !since.Watermark.IsZero() && entry.Timestamp.Before(since.Watermark) {
			continue
		}
		transactions = append(transactions, entry)
	}
	return transactions, nil
}

// PruneHistory drops transactions with token <= upTo
func (s *Storage) PruneHistory(ctx context.Context, upTo storage.HistoryToken) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(btx *bbolt.Tx) error {
		bucket := btx.Bucket(bucketHistory)

		// Удаление через курсор во время обхода пропускает элементы, собираем ключи заранее
		var keys [][]byte
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if storage.HistoryToken(binary.BigEndian.Uint64(k)) > upTo {
				break
			}
			keys = append(keys, append([]byte(nil), k...))
		}

		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to prune history: %w", err)
			}
		}
		return nil
	})
}

func tokenKey(token storage.HistoryToken) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(token))
	return key
}

func indexKey(kind models.Kind, recordName string) []byte {
	return []byte(string(kind) + "/" + recordName)
}

var _ storage.LocalStore = (*Storage)(nil)
