package jobs

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a job run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Progress is a point-in-time snapshot of one job run.
type Progress struct {
	RunID                     string         `json:"runId"`
	Kind                      Kind           `json:"kind"`
	Status                    Status         `json:"status"`
	Total                     int            `json:"total"`
	Processed                 int            `json:"processed"`
	CurrentSubjectID          int            `json:"currentSubjectId,omitempty"`
	CurrentTitle              string         `json:"currentTitle,omitempty"`
	Counters                  map[string]int `json:"counters,omitempty"`
	StartedAt                 time.Time      `json:"startedAt"`
	CompletedAt               time.Time      `json:"completedAt,omitzero"`
	ErrorMessage              string         `json:"errorMessage,omitempty"`
	AvgSecondsPerItem         float64        `json:"avgSecondsPerItem"`
	EstimatedRemainingSeconds float64        `json:"estimatedRemainingSeconds"`
}

// Tracker owns the mutable progress of a running job. Jobs update it per item;
// status readers take snapshots concurrently.
type Tracker struct {
	mu  sync.Mutex
	p   Progress
	now func() time.Time

	// onItemDone fires outside the lock after each processed item, feeding
	// external observers such as the metrics collector.
	onItemDone func(processed, total int)
}

func newTracker(kind Kind, runID string) *Tracker {
	t := &Tracker{now: time.Now}
	t.p = Progress{
		RunID:    runID,
		Kind:     kind,
		Status:   StatusRunning,
		Counters: make(map[string]int),
	}
	t.p.StartedAt = t.now().UTC()
	return t
}

// SetTotal records the item count once the job has listed its work.
func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p.Total = total
}

// StartItem marks the item the job is about to process.
func (t *Tracker) StartItem(subjectID int, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p.CurrentSubjectID = subjectID
	t.p.CurrentTitle = title
}

// ItemDone increments the processed count and recomputes the rate and the
// remaining-time estimate from elapsed wall-clock time.
func (t *Tracker) ItemDone() {
	t.mu.Lock()

	t.p.Processed++
	elapsed := t.now().UTC().Sub(t.p.StartedAt).Seconds()
	t.p.AvgSecondsPerItem = elapsed / float64(t.p.Processed)

	remaining := t.p.Total - t.p.Processed
	if remaining < 0 {
		remaining = 0
	}
	t.p.EstimatedRemainingSeconds = t.p.AvgSecondsPerItem * float64(remaining)

	processed, total := t.p.Processed, t.p.Total
	observer := t.onItemDone
	t.mu.Unlock()

	if observer != nil {
		observer(processed, total)
	}
}

// Count adds delta to a named counter.
func (t *Tracker) Count(counter string, delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.p.Counters[counter] += delta
}

// Snapshot returns a copy of the current progress.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	copy := t.p
	copy.Counters = make(map[string]int, len(t.p.Counters))
	for k, v := range t.p.Counters {
		copy.Counters[k] = v
	}
	return copy
}

func (t *Tracker) finish(status Status, errorMessage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.p.Status = status
	t.p.ErrorMessage = errorMessage
	t.p.CompletedAt = t.now().UTC()
	t.p.CurrentSubjectID = 0
	t.p.CurrentTitle = ""
}
