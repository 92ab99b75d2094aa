package sync

import (
	"context"
	"strconv"
	"sync"

	"github.com/iudanet/shelfsync/internal/client/remote"
)

// fakeBackend is an in-memory record service with the save policy
// "if server record unchanged"
type fakeBackend struct {
	zones         map[string]bool
	subscriptions map[string]bool
	records       map[string]*remote.Record
	// modifyHook runs before a batch is processed; a non-nil error is returned as is
	modifyHook func(records []*remote.Record, deletions []remote.RecordID) error
	fetchHook  func(token remote.ChangeToken) error
	log        []fakeChange
	// saves counts successful writes per record name
	saves       map[string]int
	modifyCalls [][]*remote.Record
	fetchTokens []remote.ChangeToken
	tagSeq      int
	maxBatch    int
	pageSize    int
	horizon     int
	mu          sync.Mutex
}

type fakeChange struct {
	deleted *remote.RecordID
	name    string
	seq     int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		zones:         make(map[string]bool),
		subscriptions: make(map[string]bool),
		records:       make(map[string]*remote.Record),
		saves:         make(map[string]int),
	}
}

func (f *fakeBackend) CreateZone(ctx context.Context, zone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zones[zone] = true
	return nil
}

func (f *fakeBackend) ZoneExists(ctx context.Context, zone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.zones[zone], nil
}

func (f *fakeBackend) CreateSubscription(ctx context.Context, zone, subscriptionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.zones[zone] {
		return &remote.Error{Code: remote.CodeZoneNotFound}
	}
	f.subscriptions[zone+"/"+subscriptionID] = true
	return nil
}

func (f *fakeBackend) SubscriptionExists(ctx context.Context, zone, subscriptionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscriptions[zone+"/"+subscriptionID], nil
}

func (f *fakeBackend) ModifyRecords(ctx context.Context, zone string, records []*remote.Record, deletions []remote.RecordID) (*remote.ModifyResult, error) {
	f.mu.Lock()
	hook := f.modifyHook
	f.modifyCalls = append(f.modifyCalls, cloneRecords(records))
	f.mu.Unlock()

	if hook != nil {
		if err := hook(records, deletions); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.maxBatch > 0 && len(records)+len(deletions) > f.maxBatch {
		return nil, &remote.Error{Code: remote.CodeLimitExceeded}
	}

	perRecord := make(map[string]*remote.Error)
	conflict := false
	for _, r := range records {
		stored, ok := f.records[r.ID.RecordName]
		if ok && stored.ChangeTag != r.ChangeTag {
			perRecord[r.ID.RecordName] = &remote.Error{Code: remote.CodeServerRecordChanged, ServerRecord: stored.Clone()}
			conflict = true
		}
	}
	if conflict {
		for _, r := range records {
			if _, ok := perRecord[r.ID.RecordName]; !ok {
				perRecord[r.ID.RecordName] = &remote.Error{Code: remote.CodeBatchRequestFailed}
			}
		}
		for _, id := range deletions {
			perRecord[id.RecordName] = &remote.Error{Code: remote.CodeBatchRequestFailed}
		}
		return nil, &remote.Error{Code: remote.CodePartialFailure, PerRecord: perRecord}
	}

	result := &remote.ModifyResult{}
	for _, r := range records {
		result.Saved = append(result.Saved, f.save(r))
	}
	for _, id := range deletions {
		delete(f.records, id.RecordName)
		f.log = append(f.log, fakeChange{seq: len(f.log) + 1, deleted: &id})
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

// save merges r into the stored record and assigns a new tag; caller holds mu
func (f *fakeBackend) save(r *remote.Record) *remote.Record {
	stored, ok := f.records[r.ID.RecordName]
	if !ok {
		stored = remote.NewRecord(r.ID)
	}
	for k, v := range r.Fields {
		stored.Fields[k] = v
	}
	f.tagSeq++
	stored.ChangeTag = "tag-" + strconv.Itoa(f.tagSeq)
	f.records[r.ID.RecordName] = stored
	f.saves[r.ID.RecordName]++
	f.log = append(f.log, fakeChange{seq: len(f.log) + 1, name: r.ID.RecordName})
	return stored.Clone()
}

// put writes a record as another device would
func (f *fakeBackend) put(r *remote.Record) *remote.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := f.save(r)
	f.saves[r.ID.RecordName]--
	return saved
}

func (f *fakeBackend) FetchChanges(ctx context.Context, zone string, token remote.ChangeToken) (*remote.ChangesPage, error) {
	f.mu.Lock()
	f.fetchTokens = append(f.fetchTokens, token)
	hook := f.fetchHook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(token); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	from := 0
	if token != "" {
		n, err := strconv.Atoi(string(token))
		if err != nil {
			return nil, &remote.Error{Code: remote.CodeBadRequest, Message: err.Error()}
		}
		from = n
	}
	if from < f.horizon {
		return nil, &remote.Error{Code: remote.CodeChangeTokenExpired}
	}

	page := &remote.ChangesPage{Token: token}
	count := 0
	for _, ch := range f.log {
		if ch.seq <= from {
			continue
		}
		if f.pageSize > 0 && count == f.pageSize {
			page.MoreComing = true
			break
		}
		count++
		page.Token = remote.ChangeToken(strconv.Itoa(ch.seq))
		if ch.deleted != nil {
			page.Deleted = append(page.Deleted, remote.DeletedRecord{ID: *ch.deleted})
			continue
		}
		if stored, ok := f.records[ch.name]; ok {
			page.Changed = append(page.Changed, stored.Clone())
		}
	}
	if page.Token == "" {
		page.Token = remote.ChangeToken(strconv.Itoa(len(f.log)))
	}
	return page, nil
}

func (f *fakeBackend) record(name string) *remote.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[name]; ok {
		return r.Clone()
	}
	return nil
}

func (f *fakeBackend) recordCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeBackend) calls() [][]*remote.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]*remote.Record(nil), f.modifyCalls...)
}

func cloneRecords(records []*remote.Record) []*remote.Record {
	out := make([]*remote.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

var _ remote.Backend = (*fakeBackend)(nil)
