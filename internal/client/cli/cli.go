package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/iudanet/shelfsync/internal/client/iocli"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/client/sync"
	"github.com/iudanet/shelfsync/internal/models"
)

// LocalAuthor автор локальных правок в истории транзакций
const LocalAuthor = "cli"

//go:generate moq -out syncer_mock.go . Syncer

// Syncer is the part of the sync coordinator the CLI drives
type Syncer interface {
	Start(ctx context.Context) error
	Stop()
	WaitIdle(ctx context.Context) error
	RespondToRemoteChange() *sync.Task
	LastSyncCompletion() time.Time
}

// Cli выполняет команды клиента над локальной библиотекой
type Cli struct {
	io           iocli.IO
	store        storage.LocalStore
	meta         storage.MetadataStorage
	syncer       Syncer
	logger       *slog.Logger
	now          func() time.Time
	fatalErrs    []error
	pollInterval time.Duration
	fatalMu      stdsync.Mutex
}

// New создает Cli. The syncer is attached with SetSyncer because it reports
// fatal errors back through OnFatal.
func New(io iocli.IO, store storage.LocalStore, meta storage.MetadataStorage, logger *slog.Logger, pollInterval time.Duration) *Cli {
	return &Cli{
		io:           io,
		store:        store,
		meta:         meta,
		logger:       logger,
		now:          time.Now,
		pollInterval: pollInterval,
	}
}

// SetSyncer подключает координатор синхронизации
func (c *Cli) SetSyncer(s Syncer) {
	c.syncer = s
}

// OnFatal запоминает ошибку, остановившую проход синхронизации
func (c *Cli) OnFatal(err error) {
	c.logger.Error("Sync failed", "error", err)
	c.fatalMu.Lock()
	c.fatalErrs = append(c.fatalErrs, err)
	c.fatalMu.Unlock()
}

// takeFatal возвращает накопленные ошибки и очищает их
func (c *Cli) takeFatal() error {
	c.fatalMu.Lock()
	defer c.fatalMu.Unlock()
	err := errors.Join(c.fatalErrs...)
	c.fatalErrs = nil
	return err
}

// EnableSync фиксирует момент, с которого локальные правки попадут на сервер.
// Делается до первой правки, иначе она окажется раньше отметки.
func (c *Cli) EnableSync(ctx context.Context) error {
	checkpoint, err := c.meta.GetCheckpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if !checkpoint.IsZero() {
		return nil
	}
	checkpoint.Watermark = c.now()
	if err := c.meta.SaveCheckpoint(ctx, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

func decodeBook(obj *storage.Object) (*models.Book, error) {
	var book models.Book
	if err := json.Unmarshal(obj.Data, &book); err != nil {
		return nil, fmt.Errorf("failed to decode book %s: %w", obj.ID, err)
	}
	return &book, nil
}

func encodeBook(obj *storage.Object, book *models.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to encode book: %w", err)
	}
	obj.Data = data
	return nil
}

// getBook загружает книгу по локальному ID
func getBook(tx storage.Tx, id string) (*storage.Object, *models.Book, error) {
	obj, err := tx.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, fmt.Errorf("book not found with ID: %s", id)
		}
		return nil, nil, err
	}
	if obj.Kind != models.KindBook {
		return nil, nil, fmt.Errorf("object %s is a %s, not a book", id, obj.Kind)
	}
	book, err := decodeBook(obj)
	if err != nil {
		return nil, nil, err
	}
	return obj, book, nil
}
