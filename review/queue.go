package review

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Queue is the pending-review queue: a content-addressed set of suggestions
// awaiting human approval. Re-adding a suggestion with the same identity
// updates the stored item instead of duplicating it.
//
// A single queue mutex serializes read-modify-write sequences so that the
// bootstrap job and a concurrent human-driven approval cannot race on the
// same id.
type Queue struct {
	mu    sync.Mutex
	store Store
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

// Add inserts item, or updates the existing item with the same identity in
// place. The mutable fields (value, reasoning, attempts, feedback, metadata)
// are replaced; CreatedAt and accumulated alternatives are preserved. Returns
// the stored item.
func (q *Queue) Add(ctx context.Context, item PendingItem) (*PendingItem, error) {
	if item.ID == "" {
		item.ID = ItemID(item.SubjectDocumentID, item.Category, item.SuggestedValue)
	}
	if item.Attempts < 1 {
		item.Attempts = 1
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	existing, err := q.store.Get(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("review queue: get %s: %w", item.ID, err)
	}

	if existing != nil {
		existing.SuggestedValue = item.SuggestedValue
		existing.Reasoning = item.Reasoning
		existing.Attempts = item.Attempts
		existing.LastFeedback = item.LastFeedback
		existing.Confidence = item.Confidence
		if item.Metadata != nil {
			existing.Metadata = item.Metadata
		}
		if item.ResumeMarker != "" {
			existing.ResumeMarker = item.ResumeMarker
		}
		if err := q.store.Put(ctx, existing); err != nil {
			return nil, fmt.Errorf("review queue: update %s: %w", item.ID, err)
		}
		return existing, nil
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if err := q.store.Put(ctx, &item); err != nil {
		return nil, fmt.Errorf("review queue: insert %s: %w", item.ID, err)
	}
	return &item, nil
}

// UpdateSuggestion swaps the active suggestion of an item. The previous value
// moves to the front of the alternatives unless already present; the new value
// is removed from the alternatives so it never lists itself. Returns nil when
// the id is unknown.
func (q *Queue) UpdateSuggestion(ctx context.Context, id, newValue string) (*PendingItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, err := q.store.Get(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}

	previous := item.SuggestedValue
	if previous != newValue && !contains(item.Alternatives, previous) {
		item.Alternatives = append([]string{previous}, item.Alternatives...)
	}
	item.Alternatives = remove(item.Alternatives, newValue)
	item.SuggestedValue = newValue

	if err := q.store.Put(ctx, item); err != nil {
		return nil, fmt.Errorf("review queue: update suggestion %s: %w", id, err)
	}
	return item, nil
}

// GetByID returns the item with the given id, or nil.
func (q *Queue) GetByID(ctx context.Context, id string) (*PendingItem, error) {
	return q.store.Get(ctx, id)
}

// GetAll returns all pending items, optionally restricted to one category.
func (q *Queue) GetAll(ctx context.Context, category Category) ([]*PendingItem, error) {
	items, err := q.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return items, nil
	}

	var out []*PendingItem
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out, nil
}

// GetBySubject returns all pending items tied to one subject document.
func (q *Queue) GetBySubject(ctx context.Context, subjectDocumentID int) ([]*PendingItem, error) {
	items, err := q.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []*PendingItem
	for _, item := range items {
		if item.SubjectDocumentID == subjectDocumentID {
			out = append(out, item)
		}
	}
	return out, nil
}

// Remove deletes the item with the given id.
func (q *Queue) Remove(ctx context.Context, id string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Delete(ctx, id)
}

// RemoveBySubject deletes all items for a subject, optionally restricted to
// one category, and returns the number removed.
func (q *Queue) RemoveBySubject(ctx context.Context, subjectDocumentID int, category Category) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.store.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, item := range items {
		if item.SubjectDocumentID != subjectDocumentID {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		ok, err := q.store.Delete(ctx, item.ID)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Counts returns the number of pending items per category plus a "total" key.
func (q *Queue) Counts(ctx context.Context) (map[string]int, error) {
	items, err := q.store.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{"total": len(items)}
	for _, item := range items {
		counts[string(item.Category)]++
	}
	return counts, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func remove(values []string, v string) []string {
	out := values[:0]
	for _, x := range values {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
