package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRejectsSecondStart(t *testing.T) {
	m := NewManager()
	started := make(chan struct{})
	release := make(chan struct{})

	_, err := m.Start(context.Background(), KindBootstrap, func(ctx context.Context, tr *Tracker) error {
		close(started)
		<-release
		return nil
	})
	require.NoError(t, err)
	<-started

	_, err = m.Start(context.Background(), KindBootstrap, func(ctx context.Context, tr *Tracker) error {
		t.Fatal("second job must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, StatusRunning, m.Status(KindBootstrap).Status)

	close(release)
	m.Wait(KindBootstrap)
	assert.Equal(t, StatusCompleted, m.Status(KindBootstrap).Status)
}

func TestManagerDifferentKindsRunConcurrently(t *testing.T) {
	m := NewManager()
	release := make(chan struct{})

	for _, kind := range []Kind{KindBootstrap, KindBulkOCR} {
		_, err := m.Start(context.Background(), kind, func(ctx context.Context, tr *Tracker) error {
			<-release
			return nil
		})
		require.NoError(t, err)
	}

	close(release)
	m.Wait(KindBootstrap)
	m.Wait(KindBulkOCR)
}

func TestManagerCancelAfterFourItems(t *testing.T) {
	m := NewManager()
	proceed := make(chan struct{})

	_, err := m.Start(context.Background(), KindBulkOCR, func(ctx context.Context, tr *Tracker) error {
		tr.SetTotal(10)
		for i := 0; i < 10; i++ {
			<-proceed
			if err := ctx.Err(); err != nil {
				return err
			}
			tr.ItemDone()
		}
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		proceed <- struct{}{}
	}
	require.Eventually(t, func() bool {
		return m.Status(KindBulkOCR).Processed == 4
	}, time.Second, time.Millisecond)

	require.True(t, m.Cancel(KindBulkOCR))
	proceed <- struct{}{}
	m.Wait(KindBulkOCR)

	p := m.Status(KindBulkOCR)
	assert.Equal(t, StatusCancelled, p.Status)
	assert.Equal(t, 4, p.Processed)
	assert.Equal(t, 10, p.Total)
}

func TestManagerCancelIdleKind(t *testing.T) {
	m := NewManager()
	assert.False(t, m.Cancel(KindCleanup))
	assert.Equal(t, StatusIdle, m.Status(KindCleanup).Status)
}

func TestManagerJobErrorSetsFailed(t *testing.T) {
	m := NewManager()

	_, err := m.Start(context.Background(), KindCleanup, func(ctx context.Context, tr *Tracker) error {
		return errors.New("catalog unreachable")
	})
	require.NoError(t, err)
	m.Wait(KindCleanup)

	p := m.Status(KindCleanup)
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "catalog unreachable", p.ErrorMessage)
}

func TestManagerRecoversPanic(t *testing.T) {
	m := NewManager()

	_, err := m.Start(context.Background(), KindCleanup, func(ctx context.Context, tr *Tracker) error {
		panic("boom")
	})
	require.NoError(t, err)
	m.Wait(KindCleanup)

	p := m.Status(KindCleanup)
	assert.Equal(t, StatusFailed, p.Status)
	assert.Contains(t, p.ErrorMessage, "job panicked")
}

func TestManagerKindCanRestartAfterFinish(t *testing.T) {
	m := NewManager()

	_, err := m.Start(context.Background(), KindBootstrap, func(ctx context.Context, tr *Tracker) error {
		return nil
	})
	require.NoError(t, err)
	m.Wait(KindBootstrap)

	runID, err := m.Start(context.Background(), KindBootstrap, func(ctx context.Context, tr *Tracker) error {
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	m.Wait(KindBootstrap)
}

func TestManagerNotifiesItemObserver(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	type seen struct {
		kind      Kind
		processed int
		total     int
	}
	var observed []seen
	m.OnItemDone(func(kind Kind, processed, total int) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, seen{kind, processed, total})
	})

	_, err := m.Start(context.Background(), KindBulkOCR, func(ctx context.Context, tr *Tracker) error {
		tr.SetTotal(2)
		tr.ItemDone()
		tr.ItemDone()
		return nil
	})
	require.NoError(t, err)
	m.Wait(KindBulkOCR)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, observed, 2)
	assert.Equal(t, seen{KindBulkOCR, 1, 2}, observed[0])
	assert.Equal(t, seen{KindBulkOCR, 2, 2}, observed[1])
}

func TestTrackerEstimatesRemainingTime(t *testing.T) {
	tr := newTracker(KindBootstrap, "run")
	base := tr.p.StartedAt
	elapsed := time.Duration(0)
	tr.now = func() time.Time {
		return base.Add(elapsed)
	}

	tr.SetTotal(10)
	for i := 1; i <= 4; i++ {
		elapsed = time.Duration(i) * 2 * time.Second
		tr.ItemDone()
	}

	p := tr.Snapshot()
	assert.Equal(t, 4, p.Processed)
	assert.InDelta(t, 2.0, p.AvgSecondsPerItem, 0.001)
	assert.InDelta(t, 12.0, p.EstimatedRemainingSeconds, 0.001)
}

func TestRateLimiterClamps(t *testing.T) {
	assert.Equal(t, time.Second/10, NewRateLimiter(1000).Interval())
	assert.Equal(t, 10*time.Second, NewRateLimiter(0.001).Interval())
	assert.Equal(t, 500*time.Millisecond, NewRateLimiter(2).Interval())
}

func TestRateLimiterWaitHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRateLimiter(0.1).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
