package jobs

import (
	"context"
	"time"
)

// Rate clamp bounds: never hammer the document store, never stall a batch
// indefinitely.
const (
	MinItemsPerSecond = 0.1
	MaxItemsPerSecond = 10.0
)

// RateLimiter spaces batch items with a fixed delay after each item.
type RateLimiter struct {
	interval time.Duration
}

func NewRateLimiter(itemsPerSecond float64) *RateLimiter {
	if itemsPerSecond < MinItemsPerSecond {
		itemsPerSecond = MinItemsPerSecond
	}
	if itemsPerSecond > MaxItemsPerSecond {
		itemsPerSecond = MaxItemsPerSecond
	}
	return &RateLimiter{interval: time.Duration(float64(time.Second) / itemsPerSecond)}
}

// Interval returns the delay applied after each item.
func (r *RateLimiter) Interval() time.Duration { return r.interval }

// Wait sleeps one interval, or returns early when ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
