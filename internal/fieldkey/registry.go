package fieldkey

import (
	"context"
	"fmt"
	"sort"
)

// TableStore persists the key order of each table between runs
type TableStore interface {
	GetFieldKeys(ctx context.Context, recordType string) ([]string, error)
	SaveFieldKeys(ctx context.Context, recordType string, keys []string) error
}

// Registry holds the tables of all syncable record types
type Registry struct {
	tables map[string]*Table
}

// NewRegistry creates a registry from tables. Duplicate record types are rejected.
func NewRegistry(tables ...*Table) (*Registry, error) {
	r := &Registry{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if _, dup := r.tables[t.RecordType()]; dup {
			return nil, fmt.Errorf("duplicate table for record type %s", t.RecordType())
		}
		r.tables[t.RecordType()] = t
	}
	return r, nil
}

// Table returns the table for a record type
func (r *Registry) Table(recordType string) (*Table, error) {
	t, ok := r.tables[recordType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecordType, recordType)
	}
	return t, nil
}

// RecordTypes returns registered record types, sorted
func (r *Registry) RecordTypes() []string {
	types := make([]string, 0, len(r.tables))
	for t := range r.tables {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Verify checks every table against its persisted order and then persists
// the current order. Must run once at startup before any bitmask is read.
func (r *Registry) Verify(ctx context.Context, store TableStore) error {
	for _, recordType := range r.RecordTypes() {
		t := r.tables[recordType]

		persisted, err := store.GetFieldKeys(ctx, recordType)
		if err != nil {
			return fmt.Errorf("failed to load field keys for %s: %w", recordType, err)
		}

		if err := t.Verify(persisted); err != nil {
			return err
		}

		if len(persisted) == len(t.entries) {
			continue
		}

		if err := store.SaveFieldKeys(ctx, recordType, t.Names()); err != nil {
			return fmt.Errorf("failed to save field keys for %s: %w", recordType, err)
		}
	}
	return nil
}
