package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/fieldkey"
	"github.com/iudanet/shelfsync/internal/models"
)

// Object is the stored envelope of one local entity together with its sync
// metadata
type Object struct {
	// SystemFields is the last known server version of the record.
	// nil until the object was uploaded or downloaded once.
	SystemFields *remote.Record  `json:"system_fields,omitempty"`
	ID           string          `json:"id"`
	Kind         models.Kind     `json:"kind"`
	RecordName   string          `json:"record_name,omitempty"` // RecordName пустой, пока объект не получил удалённую идентичность
	Data         json.RawMessage `json:"data"`
	// PendingMask holds fields with an uploaded but not yet confirmed value
	PendingMask fieldkey.Bitmask `json:"pending_mask,omitempty"`
}

// HistoryToken identifies one committed local transaction. Tokens grow
// monotonically; 0 means "no token".
type HistoryToken uint64

// ChangeOp is the kind of change a transaction made to an object
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ObjectChange is one object mutation inside a transaction
type ObjectChange struct {
	ObjectID   string      `json:"object_id"`
	Kind       models.Kind `json:"kind"`
	Op         ChangeOp    `json:"op"`
	RecordName string      `json:"record_name,omitempty"` // RecordName для удалений: удалённая идентичность удалённого объекта
	Properties []string    `json:"properties,omitempty"`  // Properties изменённые свойства (для update)
}

// Transaction is one committed entry of the local history log
type Transaction struct {
	Timestamp time.Time      `json:"timestamp"`
	Author    string         `json:"author"`
	Changes   []ObjectChange `json:"changes"`
	Token     HistoryToken   `json:"token"`
}

// Checkpoint marks how much local history has been consumed.
// Token is authoritative once non-zero; Watermark is used only before any
// token was ever committed.
type Checkpoint struct {
	Watermark time.Time    `json:"watermark,omitzero"`
	Token     HistoryToken `json:"token,omitempty"`
}

// IsZero reports whether neither token nor watermark is set
func (c Checkpoint) IsZero() bool {
	return c.Token == 0 && c.Watermark.IsZero()
}

// Tx is the view of the local store inside one transaction
type Tx interface {
	// Get returns an object by local ID. Returns ErrObjectNotFound if absent.
	Get(id string) (*Object, error)

	// FindByRecordName returns the object of kind with the given remote identity
	FindByRecordName(kind models.Kind, recordName string) (*Object, error)

	// List returns all objects of kind
	List(kind models.Kind) ([]*Object, error)

	// Insert stores a new object, assigning an ID if empty
	Insert(obj *Object) error

	// Update stores obj. properties are the local property names that
	// changed; none means a metadata-only write.
	Update(obj *Object, properties ...string) error

	// Delete removes an object outright
	Delete(id string) error

	// SetChangeToken stores the remote change token in the same transaction
	SetChangeToken(token remote.ChangeToken) error

	// History returns the transactions committed after since, as seen by
	// this transaction
	History(since Checkpoint) ([]Transaction, error)
}

// LocalStore is the local durable object store with a transaction history log
type LocalStore interface {
	// Update runs fn in one write transaction attributed to author. Object
	// changes are recorded as one history Transaction and a commit
	// notification is fired after commit.
	Update(ctx context.Context, author string, fn func(tx Tx) error) error

	// View runs fn in a read-only transaction
	View(ctx context.Context, fn func(tx Tx) error) error

	// History returns committed transactions after the checkpoint, in order
	History(ctx context.Context, since Checkpoint) ([]Transaction, error)

	// Subscribe returns a channel receiving the token of every commit.
	// Notifications may be coalesced. The returned func unsubscribes.
	Subscribe() (<-chan HistoryToken, func())

	// PruneHistory drops transactions with token <= upTo
	PruneHistory(ctx context.Context, upTo HistoryToken) error
}
