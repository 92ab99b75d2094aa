// Package remote defines the contract of the zone-scoped record backend the
// sync coordinator talks to.
package remote

import (
	"encoding/json"
	"maps"
)

// RecordID is the stable identity of a remote record, independent of content
type RecordID struct {
	ZoneName   string `json:"zone_name"`
	RecordName string `json:"record_name"`
	RecordType string `json:"record_type"`
}

// Record is one remote record. ChangeTag is the backend-issued opaque
// version; an empty ChangeTag means the record was never saved.
type Record struct {
	Fields    map[string]json.RawMessage `json:"fields"`
	ID        RecordID                   `json:"id"`
	ChangeTag string                     `json:"change_tag,omitempty"`
}

// NewRecord creates an empty, never-saved record
func NewRecord(id RecordID) *Record {
	return &Record{ID: id, Fields: make(map[string]json.RawMessage)}
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{ID: r.ID, ChangeTag: r.ChangeTag, Fields: make(map[string]json.RawMessage, len(r.Fields))}
	for k, v := range r.Fields {
		c.Fields[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

// SystemFields returns a copy of the record carrying only identity and
// version, without attribute values
func (r *Record) SystemFields() *Record {
	return &Record{ID: r.ID, ChangeTag: r.ChangeTag, Fields: map[string]json.RawMessage{}}
}

// Set encodes v and stores it under key. A nil v stores an explicit null,
// which clears the field on the backend.
func (r *Record) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if r.Fields == nil {
		r.Fields = make(map[string]json.RawMessage)
	}
	r.Fields[key] = raw
	return nil
}

// Get decodes the field under key into v. Returns false if the field is absent.
func (r *Record) Get(key string, v any) (bool, error) {
	raw, ok := r.Fields[key]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, err
	}
	return true, nil
}

// FieldNames returns the names of the fields present on the record
func (r *Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range maps.Keys(r.Fields) {
		names = append(names, k)
	}
	return names
}

// LayerOn returns a copy of base carrying the fields of r on top. Used to
// rebase a rejected local change onto the current server version.
func (r *Record) LayerOn(base *Record) *Record {
	layered := base.Clone()
	for k, v := range r.Fields {
		layered.Fields[k] = append(json.RawMessage(nil), v...)
	}
	return layered
}

// DeletedRecord is one deletion reported by the change feed
type DeletedRecord struct {
	ID RecordID `json:"id"`
}

// ChangeToken is the opaque backend-issued cursor of the change feed.
// The empty token means "from the beginning of the zone's history".
type ChangeToken string
