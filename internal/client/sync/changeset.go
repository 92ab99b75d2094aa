package sync

import (
	"sort"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/internal/client/storage"
	"github.com/iudanet/shelfsync/internal/fieldkey"
	"github.com/iudanet/shelfsync/internal/models"
)

// ObjectRef identifies a local object
type ObjectRef struct {
	ID   string
	Kind models.Kind
}

// ChangeSet is a reduced range of local transactions awaiting upload.
// ChangeSets are compared by pointer: two sets with equal content are still
// distinct buffer entries.
type ChangeSet struct {
	Updates   map[ObjectRef]fieldkey.Bitmask
	Inserts   []ObjectRef
	Deletions []remote.RecordID
	// Token is the token of the last transaction the set covers
	Token storage.HistoryToken
}

func newChangeSet() *ChangeSet {
	return &ChangeSet{Updates: make(map[ObjectRef]fieldkey.Bitmask)}
}

// IsEmpty reports whether the set carries nothing to upload
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Inserts) == 0 && len(cs.Updates) == 0 && len(cs.Deletions) == 0
}

// UpdatedRefs returns the updated objects that are not also inserted, sorted
// by ID. The insert path supersedes the update path for the same object.
func (cs *ChangeSet) UpdatedRefs() []ObjectRef {
	refs := make([]ObjectRef, 0, len(cs.Updates))
	for ref := range cs.Updates {
		if !cs.inserts(ref) {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs
}

// Deletes reports whether the set deletes the record id
func (cs *ChangeSet) Deletes(id remote.RecordID) bool {
	for _, d := range cs.Deletions {
		if d.RecordName == id.RecordName && d.RecordType == id.RecordType {
			return true
		}
	}
	return false
}

func (cs *ChangeSet) inserts(ref ObjectRef) bool {
	for _, r := range cs.Inserts {
		if r == ref {
			return true
		}
	}
	return false
}

func (cs *ChangeSet) addInsert(ref ObjectRef) {
	if !cs.inserts(ref) {
		cs.Inserts = append(cs.Inserts, ref)
	}
}

func (cs *ChangeSet) addUpdate(ref ObjectRef, mask fieldkey.Bitmask) {
	if mask.IsEmpty() {
		return
	}
	cs.Updates[ref] = cs.Updates[ref].Union(mask)
}

// forget drops every pending insert and update of a deleted object
func (cs *ChangeSet) forget(ref ObjectRef) {
	delete(cs.Updates, ref)
	for i, r := range cs.Inserts {
		if r == ref {
			cs.Inserts = append(cs.Inserts[:i], cs.Inserts[i+1:]...)
			return
		}
	}
}
