package boltdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/shelfsync/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketObjects     = []byte("objects")
	bucketRecordIndex = []byte("record_index")
	bucketHistory     = []byte("history")
	bucketMetadata    = []byte("metadata")
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db          *bbolt.DB
	now         func() time.Time
	subscribers map[int]chan storage.HistoryToken
	nextSubID   int
	subMu       sync.Mutex
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{
		db:          db,
		now:         time.Now,
		subscribers: make(map[int]chan storage.HistoryToken),
	}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection and all subscriptions
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}

	s.subMu.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.subMu.Unlock()

	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketObjects, bucketRecordIndex, bucketHistory, bucketMetadata} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Subscribe returns a channel receiving the token of every commit.
// The channel has capacity 1: bursts of commits coalesce into one wake-up,
// readers then catch up through History.
func (s *Storage) Subscribe() (<-chan storage.HistoryToken, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan storage.HistoryToken, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			close(c)
			delete(s.subscribers, id)
		}
	}
}

// notify рассылает токен подписчикам без блокировки
func (s *Storage) notify(token storage.HistoryToken) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- token:
		default:
			// подписчик ещё не забрал предыдущее уведомление
		}
	}
}
