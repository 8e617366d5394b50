package metrics

import (
	"time"

	"github.com/docpilot-ai/docpilot/pipeline"
)

// Reporter decorates another pipeline reporter and records each event in the
// collector. One reporter serves one pipeline run; runs are sequential per
// document, so no locking is needed.
type Reporter struct {
	next      pipeline.Reporter
	collector *Collector
	started   map[string]time.Time
	now       func() time.Time
}

func NewReporter(next pipeline.Reporter, collector *Collector) *Reporter {
	if next == nil {
		next = pipeline.NoOpReporter{}
	}
	return &Reporter{
		next:      next,
		collector: collector,
		started:   make(map[string]time.Time),
		now:       time.Now,
	}
}

func (r *Reporter) Send(event pipeline.Event) error {
	switch event.Type {
	case pipeline.EventStepStart:
		r.started[event.Step] = r.now()
	case pipeline.EventStepComplete:
		status := "confirmed"
		if event.Outcome != nil {
			status = event.Outcome.Status.String()
		}
		r.collector.StepCompleted(event.Step, status, r.elapsed(event.Step))
	case pipeline.EventNeedsReview:
		r.collector.StepCompleted(event.Step, "needs_review", r.elapsed(event.Step))
		r.collector.ReviewQueued(event.Step)
	case pipeline.EventPipelinePaused:
		r.collector.DocumentProcessed("paused")
	case pipeline.EventPipelineComplete:
		r.collector.DocumentProcessed("completed")
	case pipeline.EventError:
		r.collector.DocumentProcessed("failed")
	}
	return r.next.Send(event)
}

func (r *Reporter) elapsed(step string) float64 {
	start, ok := r.started[step]
	if !ok {
		return 0
	}
	delete(r.started, step)
	return r.now().Sub(start).Seconds()
}
