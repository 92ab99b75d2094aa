// Package entity binds local models to remote records.
//
// Every syncable kind is one Variant. The set is closed: adding a syncable
// kind means adding a variant here and to All.
package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/fieldkey"
	"github.com/iudanet/shelfsync/internal/models"
)

// ErrUnknownKind is returned when no variant exists for a local kind
var ErrUnknownKind = errors.New("unknown entity kind")

// Variant is the capability contract of a syncable entity kind
type Variant interface {
	// Kind returns the local kind of the variant
	Kind() models.Kind

	// Table returns the field key table; its record type is the remote record type
	Table() *fieldkey.Table

	// RemoteIdentity returns the record identity of obj, false if it has none yet
	RemoteIdentity(obj *storage.Object, zone string) (remote.RecordID, bool)

	// RecordForInsert builds a never-saved record carrying every field of obj.
	// A record name is assigned to obj if it has none.
	RecordForInsert(obj *storage.Object, zone string) (*remote.Record, error)

	// RecordForUpdate builds a record on top of the last known server version
	// carrying only the changed keys. Returns nil when no server version is
	// known; the caller then falls back to RecordForInsert.
	RecordForUpdate(obj *storage.Object, changed fieldkey.Bitmask) (*remote.Record, error)

	// ApplyRemoteRecord overwrites the attributes of obj with the values of
	// record, skipping the excluded keys. Returns the local properties written.
	ApplyRemoteRecord(obj *storage.Object, record *remote.Record, excluding fieldkey.Bitmask) ([]string, error)

	// MatchCandidate reports whether obj, which has no remote identity yet,
	// describes the same entity as record
	MatchCandidate(obj *storage.Object, record *remote.Record) (bool, error)

	sealed()
}

// All returns every syncable variant
func All() []Variant {
	return []Variant{Book, List}
}

// For returns the variant of a local kind
func For(kind models.Kind) (Variant, error) {
	for _, v := range All() {
		if v.Kind() == kind {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// ForRecordType returns the variant of a remote record type
func ForRecordType(recordType string) (Variant, error) {
	for _, v := range All() {
		if v.Table().RecordType() == recordType {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", fieldkey.ErrUnknownRecordType, recordType)
}

// NewRegistry returns the field key registry of all variants
func NewRegistry() (*fieldkey.Registry, error) {
	tables := make([]*fieldkey.Table, 0, len(All()))
	for _, v := range All() {
		tables = append(tables, v.Table())
	}
	return fieldkey.NewRegistry(tables...)
}

// SetSystemMetadata stores only the identity and version of record on obj,
// leaving attributes untouched
func SetSystemMetadata(obj *storage.Object, record *remote.Record) {
	obj.SystemFields = record.SystemFields()
	obj.RecordName = record.ID.RecordName
}

// variant is the generic Variant over a model type
type variant[T any] struct {
	table *fieldkey.Table
	// value returns the record value of key, nil for "unset"
	value func(m *T, key fieldkey.Key) any
	// setValue reads key from record into m; absent fields reset to zero
	setValue func(m *T, key fieldkey.Key, record *remote.Record) error
	match    func(local, incoming *T) bool
	kind     models.Kind
}

func (v *variant[T]) sealed() {}

func (v *variant[T]) Kind() models.Kind { return v.kind }

func (v *variant[T]) Table() *fieldkey.Table { return v.table }

func (v *variant[T]) RemoteIdentity(obj *storage.Object, zone string) (remote.RecordID, bool) {
	if obj.RecordName == "" {
		return remote.RecordID{}, false
	}
	if obj.SystemFields != nil {
		return obj.SystemFields.ID, true
	}
	return remote.RecordID{ZoneName: zone, RecordName: obj.RecordName, RecordType: v.table.RecordType()}, true
}

func (v *variant[T]) RecordForInsert(obj *storage.Object, zone string) (*remote.Record, error) {
	m, err := v.decode(obj)
	if err != nil {
		return nil, err
	}

	if obj.RecordName == "" {
		obj.RecordName = uuid.New().String()
	}

	record := remote.NewRecord(remote.RecordID{
		ZoneName:   zone,
		RecordName: obj.RecordName,
		RecordType: v.table.RecordType(),
	})
	if err := v.fill(record, m, v.table.All()); err != nil {
		return nil, err
	}
	return record, nil
}

func (v *variant[T]) RecordForUpdate(obj *storage.Object, changed fieldkey.Bitmask) (*remote.Record, error) {
	if obj.SystemFields == nil {
		return nil, nil
	}
	m, err := v.decode(obj)
	if err != nil {
		return nil, err
	}

	record := obj.SystemFields.SystemFields()
	if err := v.fill(record, m, changed); err != nil {
		return nil, err
	}
	return record, nil
}

func (v *variant[T]) ApplyRemoteRecord(obj *storage.Object, record *remote.Record, excluding fieldkey.Bitmask) ([]string, error) {
	m, err := v.decode(obj)
	if err != nil {
		return nil, err
	}

	var properties []string
	for _, key := range v.table.KeysOf(v.table.All().Without(excluding)) {
		if err := v.setValue(m, key, record); err != nil {
			return nil, fmt.Errorf("failed to read %s of record %s: %w", key, record.ID.RecordName, err)
		}
		properties = append(properties, v.table.PropertiesOf(key)...)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", v.kind, err)
	}
	obj.Data = data
	obj.Kind = v.kind
	return properties, nil
}

func (v *variant[T]) MatchCandidate(obj *storage.Object, record *remote.Record) (bool, error) {
	local, err := v.decode(obj)
	if err != nil {
		return false, err
	}
	var incoming T
	for _, key := range v.table.Keys() {
		if err := v.setValue(&incoming, key, record); err != nil {
			return false, fmt.Errorf("failed to read %s of record %s: %w", key, record.ID.RecordName, err)
		}
	}
	return v.match(local, &incoming), nil
}

func (v *variant[T]) decode(obj *storage.Object) (*T, error) {
	m := new(T)
	if len(obj.Data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(obj.Data, m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", v.kind, obj.ID, err)
	}
	return m, nil
}

func (v *variant[T]) fill(record *remote.Record, m *T, keys fieldkey.Bitmask) error {
	for _, key := range v.table.KeysOf(keys) {
		if err := record.Set(string(key), v.value(m, key)); err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
	}
	return nil
}
