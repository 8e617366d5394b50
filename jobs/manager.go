package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Kind identifies a job type. At most one job of a kind runs at a time.
type Kind string

const (
	KindBootstrap Kind = "bootstrap_schema"
	KindBulkOCR   Kind = "bulk_ocr"
	KindCleanup   Kind = "schema_cleanup"
)

// ErrAlreadyRunning is returned when starting a kind that is already running.
var ErrAlreadyRunning = errors.New("job already running")

// JobFunc does the job's work. It must check ctx once per item and return
// ctx.Err() to honor cancellation.
type JobFunc func(ctx context.Context, tracker *Tracker) error

type handle struct {
	tracker *Tracker
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager owns the running job of each kind behind one mutex, making the lock
// boundary explicit instead of keeping an implicit process-global.
type Manager struct {
	mu      sync.Mutex
	running map[Kind]*handle
	last    map[Kind]Progress
	onItem  func(kind Kind, processed, total int)
}

func NewManager() *Manager {
	return &Manager{
		running: make(map[Kind]*handle),
		last:    make(map[Kind]Progress),
	}
}

// OnItemDone registers a callback fired after every item any job of this
// manager processes. Set it before the first Start.
func (m *Manager) OnItemDone(fn func(kind Kind, processed, total int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onItem = fn
}

// Start launches fn in the background and returns the run id. A second start
// of the same kind fails fast with ErrAlreadyRunning while the first keeps
// running untouched.
func (m *Manager) Start(ctx context.Context, kind Kind, fn JobFunc) (string, error) {
	m.mu.Lock()
	if _, exists := m.running[kind]; exists {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrAlreadyRunning, kind)
	}

	runID := ulid.Make().String()
	jobCtx, cancel := context.WithCancel(ctx)
	h := &handle{
		tracker: newTracker(kind, runID),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if observe := m.onItem; observe != nil {
		h.tracker.onItemDone = func(processed, total int) {
			observe(kind, processed, total)
		}
	}
	m.running[kind] = h
	m.mu.Unlock()

	logger.Info("job started", zap.String("kind", string(kind)), zap.String("runId", runID))

	go func() {
		defer close(h.done)

		err := runSafe(jobCtx, fn, h.tracker)
		switch {
		case errors.Is(err, context.Canceled):
			h.tracker.finish(StatusCancelled, "")
			logger.Info("job cancelled", zap.String("kind", string(kind)), zap.String("runId", runID))
		case err != nil:
			h.tracker.finish(StatusFailed, err.Error())
			logger.Error("job failed", zap.String("kind", string(kind)), zap.String("runId", runID), zap.Error(err))
		default:
			h.tracker.finish(StatusCompleted, "")
			logger.Info("job completed", zap.String("kind", string(kind)), zap.String("runId", runID))
		}

		m.mu.Lock()
		m.last[kind] = h.tracker.Snapshot()
		delete(m.running, kind)
		m.mu.Unlock()
		cancel()
	}()

	return runID, nil
}

func runSafe(ctx context.Context, fn JobFunc, tracker *Tracker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx, tracker)
}

// Cancel requests cooperative cancellation of the running job of a kind.
// Returns false when nothing is running.
func (m *Manager) Cancel(kind Kind) bool {
	m.mu.Lock()
	h, ok := m.running[kind]
	m.mu.Unlock()

	if !ok {
		return false
	}
	h.cancel()
	return true
}

// Status reports the running job's progress, or the last finished run, or an
// idle placeholder when the kind never ran.
func (m *Manager) Status(kind Kind) Progress {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.running[kind]; ok {
		return h.tracker.Snapshot()
	}
	if p, ok := m.last[kind]; ok {
		return p
	}
	return Progress{Kind: kind, Status: StatusIdle}
}

// Wait blocks until the running job of a kind finishes. Returns immediately
// when nothing is running.
func (m *Manager) Wait(kind Kind) {
	m.mu.Lock()
	h, ok := m.running[kind]
	m.mu.Unlock()

	if ok {
		<-h.done
	}
}
