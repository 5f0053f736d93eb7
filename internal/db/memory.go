package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

// MemoryStore is a process-local store with the same semantics as DB. Records are copied in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*types.Optimization
	published []publishing.Draft
	now       func() time.Time
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]*types.Optimization), now: time.Now}
}

// tick returns a timestamp strictly after every earlier one so created_at ordering is total
func (m *MemoryStore) tick(last time.Time) time.Time {
	t := m.now().UTC()
	if !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	return t
}

func (m *MemoryStore) latest() time.Time {
	var last time.Time
	for _, r := range m.records {
		if r.CreatedAt.After(last) {
			last = r.CreatedAt
		}
		if r.UpdatedAt.After(last) {
			last = r.UpdatedAt
		}
	}
	return last
}

func clone(o *types.Optimization) (*types.Optimization, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to copy optimization: %w", err)
	}
	var out types.Optimization
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to copy optimization: %w", err)
	}
	return &out, nil
}

// Create inserts a new optimization
func (m *MemoryStore) Create(_ context.Context, o *types.Optimization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if _, exists := m.records[o.ID]; exists {
		return fmt.Errorf("failed to create optimization: duplicate id %s", o.ID)
	}
	ts := m.tick(m.latest())
	o.CreatedAt, o.UpdatedAt = ts, ts

	stored, err := clone(o)
	if err != nil {
		return err
	}
	m.records[o.ID] = stored
	return nil
}

// GetByID returns a copy of the record, or nil, nil
func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*types.Optimization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return clone(r)
}

func (m *MemoryStore) newestMatching(key types.Key, status types.Status) *types.Optimization {
	var best *types.Optimization
	for _, r := range m.records {
		if r.Key() != key {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = r
		}
	}
	return best
}

// FindByKey returns the most recent record matching key, or nil, nil
func (m *MemoryStore) FindByKey(_ context.Context, key types.Key) (*types.Optimization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.newestMatching(key, "")
	if r == nil {
		return nil, nil
	}
	return clone(r)
}

// ClaimByKey moves the most recent record matching key from one status to another under the
// store lock and returns it, or nil, nil
func (m *MemoryStore) ClaimByKey(_ context.Context, key types.Key, from, to types.Status) (*types.Optimization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.newestMatching(key, from)
	if r == nil {
		return nil, nil
	}
	r.Status = to
	r.UpdatedAt = m.tick(m.latest())
	return clone(r)
}

// Update overwrites the mutable fields of the stored record. Last writer wins.
func (m *MemoryStore) Update(_ context.Context, o *types.Optimization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[o.ID]
	if !ok {
		return ErrNotFound
	}
	stored, err := clone(o)
	if err != nil {
		return err
	}
	// identity columns are immutable
	stored.UserID = r.UserID
	stored.OriginalPrompt = r.OriginalPrompt
	stored.TargetModel = r.TargetModel
	stored.MediaType = r.MediaType
	stored.OptimizationType = r.OptimizationType
	stored.CreatedAt = r.CreatedAt
	stored.UpdatedAt = m.tick(m.latest())

	m.records[o.ID] = stored
	o.UpdatedAt = stored.UpdatedAt
	return nil
}

// ListByUser returns the user's most recent records, newest first
func (m *MemoryStore) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]types.Optimization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var owned []*types.Optimization
	for _, r := range m.records {
		if r.UserID == userID {
			owned = append(owned, r)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	if limit > 0 && len(owned) > limit {
		owned = owned[:limit]
	}

	out := make([]types.Optimization, 0, len(owned))
	for _, r := range owned {
		c, err := clone(r)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// Delete removes the user's record
func (m *MemoryStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// Publish records the draft
func (m *MemoryStore) Publish(_ context.Context, draft publishing.Draft) (publishing.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.published = append(m.published, draft)
	return publishing.Receipt{ID: uuid.New(), PublishedAt: m.now().UTC()}, nil
}

// Published returns the drafts published so far
func (m *MemoryStore) Published() []publishing.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishing.Draft(nil), m.published...)
}

var _ publishing.Publisher = (*MemoryStore)(nil)
