package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/hupe1980/xocoro/kxo"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is an in-process Store guarded by an RWMutex.
//
// Layout: runID -> slot -> record
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[int]Record
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]map[int]Record)}
}

// Save implements Store.
func (s *InMemoryStore) Save(ctx context.Context, runID string, hs []kxo.History) error {
	if runID == "" {
		return ErrEmptyRunID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[runID]; !exists {
		s.records[runID] = make(map[int]Record)
	}
	ts := now()
	for slot, h := range hs {
		if h.Empty() {
			continue
		}
		s.records[runID][slot] = Record{RunID: runID, Slot: slot, History: h, SavedAt: ts}
	}
	return nil
}

// List implements Store. The returned slice is a snapshot.
func (s *InMemoryStore) List(ctx context.Context, runID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.records[runID]
	if !ok {
		return []Record{}, nil
	}
	out := make([]Record, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

// Runs returns the run ids that have records, sorted.
func (s *InMemoryStore) Runs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
