package review

import "context"

// Store is the persistence boundary of the review queue. Implementations must
// make each single-id operation atomic; the Queue serializes read-modify-write
// sequences on top of that.
type Store interface {
	Get(ctx context.Context, id string) (*PendingItem, error) // nil, nil when absent
	Put(ctx context.Context, item *PendingItem) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*PendingItem, error)
}
