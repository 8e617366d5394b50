package review

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps pending items in process memory. Used by tests and by
// one-shot CLI runs that have no database configured.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]PendingItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]PendingItem)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*PendingItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	copy := item
	return &copy, nil
}

func (s *MemoryStore) Put(_ context.Context, item *PendingItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*PendingItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*PendingItem, 0, len(s.items))
	for _, item := range s.items {
		copy := item
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
