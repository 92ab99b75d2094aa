// Package fieldkey maps syncable attributes to stable symbolic keys and bit
// positions.
//
// A Table is append-only: the position of a key in its table is persisted
// inside every stored Bitmask, so reordering or removing an existing key
// silently corrupts pending-field tracking. Table.Verify rejects such changes
// against the previously persisted key order.
package fieldkey

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// MaxKeys is the number of keys a single Table can hold (width of Bitmask).
const MaxKeys = 64

var (
	// ErrRegistryReordered indicates that a persisted key order is not a prefix
	// of the current table
	ErrRegistryReordered = errors.New("field key table reordered")

	// ErrUnknownRecordType indicates that no table is registered for a record type
	ErrUnknownRecordType = errors.New("unknown record type")
)

// Key is a symbolic attribute identifier as it appears in remote records.
type Key string

// Bitmask is a set of keys of one Table: bit i corresponds to the i-th key.
type Bitmask uint64

// Union returns b ∪ other
func (b Bitmask) Union(other Bitmask) Bitmask { return b | other }

// Intersect returns b ∩ other
func (b Bitmask) Intersect(other Bitmask) Bitmask { return b & other }

// Without returns b with all bits of other cleared
func (b Bitmask) Without(other Bitmask) Bitmask { return b &^ other }

// IsEmpty reports whether no bit is set
func (b Bitmask) IsEmpty() bool { return b == 0 }

// Len returns the number of keys in the mask
func (b Bitmask) Len() int { return bits.OnesCount64(uint64(b)) }

// Entry describes one key and the local property names that feed it.
// Several local properties may map to one key (e.g. both read dates).
type Entry struct {
	Key        Key
	Properties []string
}

// Table is the ordered key registry of one record type.
type Table struct {
	byKey      map[Key]int
	byProperty map[string]Key
	recordType string
	entries    []Entry
}

// NewTable builds a table. Entry order defines bit positions.
func NewTable(recordType string, entries ...Entry) (*Table, error) {
	if recordType == "" {
		return nil, fmt.Errorf("record type cannot be empty")
	}
	if len(entries) > MaxKeys {
		return nil, fmt.Errorf("table %s has %d keys, max is %d", recordType, len(entries), MaxKeys)
	}

	t := &Table{
		recordType: recordType,
		entries:    make([]Entry, 0, len(entries)),
		byKey:      make(map[Key]int, len(entries)),
		byProperty: make(map[string]Key),
	}

	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("table %s: empty key at position %d", recordType, i)
		}
		if _, dup := t.byKey[e.Key]; dup {
			return nil, fmt.Errorf("table %s: duplicate key %q", recordType, e.Key)
		}
		t.byKey[e.Key] = i

		props := e.Properties
		if len(props) == 0 {
			props = []string{string(e.Key)}
		}
		for _, p := range props {
			if owner, dup := t.byProperty[p]; dup {
				return nil, fmt.Errorf("table %s: property %q mapped to both %q and %q", recordType, p, owner, e.Key)
			}
			t.byProperty[p] = e.Key
		}
		t.entries = append(t.entries, Entry{Key: e.Key, Properties: append([]string(nil), props...)})
	}

	return t, nil
}

// MustTable is NewTable for package-level tables
func MustTable(recordType string, entries ...Entry) *Table {
	t, err := NewTable(recordType, entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// RecordType returns the remote record type the table belongs to
func (t *Table) RecordType() string { return t.recordType }

// Keys returns all keys in bit order
func (t *Table) Keys() []Key {
	keys := make([]Key, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}

// Names returns all keys as strings in bit order (the persisted form)
func (t *Table) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = string(e.Key)
	}
	return names
}

// Has reports whether k belongs to the table
func (t *Table) Has(k Key) bool {
	_, ok := t.byKey[k]
	return ok
}

// Mask returns the bitmask of the given keys. Unknown keys are ignored.
func (t *Table) Mask(keys ...Key) Bitmask {
	var m Bitmask
	for _, k := range keys {
		if i, ok := t.byKey[k]; ok {
			m |= 1 << uint(i)
		}
	}
	return m
}

// All returns the mask with every key of the table set
func (t *Table) All() Bitmask {
	if len(t.entries) == MaxKeys {
		return ^Bitmask(0)
	}
	return Bitmask(1)<<uint(len(t.entries)) - 1
}

// Contains reports whether k's bit is set in m
func (t *Table) Contains(m Bitmask, k Key) bool {
	i, ok := t.byKey[k]
	if !ok {
		return false
	}
	return m&(1<<uint(i)) != 0
}

// KeysOf expands m into keys, in bit order
func (t *Table) KeysOf(m Bitmask) []Key {
	var keys []Key
	for i, e := range t.entries {
		if m&(1<<uint(i)) != 0 {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// ForProperty returns the key a local property name maps to
func (t *Table) ForProperty(property string) (Key, bool) {
	k, ok := t.byProperty[property]
	return k, ok
}

// PropertiesOf returns the local property names that feed k
func (t *Table) PropertiesOf(k Key) []string {
	i, ok := t.byKey[k]
	if !ok {
		return nil
	}
	return append([]string(nil), t.entries[i].Properties...)
}

// MaskForProperties converts local property names into a bitmask.
// Properties that are not synced (local-only state) are skipped.
func (t *Table) MaskForProperties(properties []string) Bitmask {
	var m Bitmask
	for _, p := range properties {
		if k, ok := t.byProperty[p]; ok {
			m |= t.Mask(k)
		}
	}
	return m
}

// Verify checks the current table against the key order persisted by a
// previous run. The persisted order must be a prefix of the current one.
func (t *Table) Verify(persisted []string) error {
	if len(persisted) > len(t.entries) {
		return fmt.Errorf("%w: %s had %d keys, now %d", ErrRegistryReordered, t.recordType, len(persisted), len(t.entries))
	}
	for i, name := range persisted {
		if string(t.entries[i].Key) != name {
			return fmt.Errorf("%w: %s position %d was %q, now %q", ErrRegistryReordered, t.recordType, i, name, t.entries[i].Key)
		}
	}
	return nil
}

// String renders a mask for logs
func (t *Table) String(m Bitmask) string {
	keys := t.KeysOf(m)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return "{" + strings.Join(names, ",") + "}"
}
