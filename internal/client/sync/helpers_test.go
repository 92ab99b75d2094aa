package sync

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/client/storage/boltdb"
	"github.com/iudanet/shelfsync/internal/models"
)

const testZone = "library"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestStore создает временное bbolt хранилище
func createTestStore(t *testing.T) *boltdb.Storage {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// countingMeta records every saved checkpoint
type countingMeta struct {
	*boltdb.Storage
	checkpoints []storage.Checkpoint
	mu          sync.Mutex
}

func (m *countingMeta) SaveCheckpoint(ctx context.Context, checkpoint storage.Checkpoint) error {
	m.mu.Lock()
	m.checkpoints = append(m.checkpoints, checkpoint)
	m.mu.Unlock()
	return m.Storage.SaveCheckpoint(ctx, checkpoint)
}

// tokenSaves returns saved checkpoint tokens, skipping the first-run watermark
func (m *countingMeta) tokenSaves() []storage.HistoryToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokens []storage.HistoryToken
	for _, c := range m.checkpoints {
		if c.Token != 0 {
			tokens = append(tokens, c.Token)
		}
	}
	return tokens
}

type fatalRecorder struct {
	errs []error
	mu   sync.Mutex
}

func (r *fatalRecorder) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *fatalRecorder) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

type testEnv struct {
	coordinator *Coordinator
	store       *boltdb.Storage
	meta        *countingMeta
	fatal       *fatalRecorder
}

func newTestEnv(t *testing.T, backend remote.Backend, maxBatch int) *testEnv {
	t.Helper()
	store := createTestStore(t)
	meta := &countingMeta{Storage: store}
	fatal := &fatalRecorder{}

	c := New(store, meta, backend, Options{
		Zone:         testZone,
		Logger:       testLogger(),
		MaxBatchSize: maxBatch,
		OnFatal:      fatal.record,
	})
	t.Cleanup(c.Stop)

	return &testEnv{coordinator: c, store: store, meta: meta, fatal: fatal}
}

// settle processes pending local history and waits for every lane to go idle
func (e *testEnv) settle(t *testing.T) {
	t.Helper()
	e.coordinator.scheduleHistoryRead()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.coordinator.WaitIdle(ctx))
}

func (e *testEnv) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.coordinator.Start(ctx))
	require.NoError(t, e.coordinator.WaitIdle(ctx))
}

func (e *testEnv) addBook(t *testing.T, author string, book models.Book) *storage.Object {
	t.Helper()
	obj := &storage.Object{Kind: models.KindBook, Data: mustJSON(t, book)}
	require.NoError(t, e.store.Update(context.Background(), author, func(tx storage.Tx) error {
		return tx.Insert(obj)
	}))
	return obj
}

func (e *testEnv) editBook(t *testing.T, id string, edit func(b *models.Book) []string) {
	t.Helper()
	require.NoError(t, e.store.Update(context.Background(), "app", func(tx storage.Tx) error {
		obj, err := tx.Get(id)
		if err != nil {
			return err
		}
		var b models.Book
		if err := json.Unmarshal(obj.Data, &b); err != nil {
			return err
		}
		props := edit(&b)
		obj.Data = mustJSON(t, b)
		return tx.Update(obj, props...)
	}))
}

func (e *testEnv) object(t *testing.T, id string) (*storage.Object, models.Book) {
	t.Helper()
	var obj *storage.Object
	require.NoError(t, e.store.View(context.Background(), func(tx storage.Tx) error {
		var err error
		obj, err = tx.Get(id)
		return err
	}))
	var b models.Book
	require.NoError(t, json.Unmarshal(obj.Data, &b))
	return obj, b
}

func (e *testEnv) books(t *testing.T) []*storage.Object {
	t.Helper()
	var objects []*storage.Object
	require.NoError(t, e.store.View(context.Background(), func(tx storage.Tx) error {
		var err error
		objects, err = tx.List(models.KindBook)
		return err
	}))
	return objects
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func ptr[V any](v V) *V { return &v }
