package pipeline

import (
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// EventType classifies a pipeline progress event.
type EventType string

const (
	EventStepStart        EventType = "step_start"
	EventStepComplete     EventType = "step_complete"
	EventWarning          EventType = "warning"
	EventError            EventType = "error"
	EventNeedsReview      EventType = "needs_review"
	EventPipelinePaused   EventType = "pipeline_paused"
	EventPipelineComplete EventType = "pipeline_complete"
)

// Event is one record in the ordered progress sequence the pipeline exposes
// to its caller. The sequence is the whole contract; how it reaches a client
// (SSE, WebSocket, plain iteration) is the caller's concern.
type Event struct {
	Type    EventType    `json:"type"`
	Step    string       `json:"step,omitempty"`
	Message string       `json:"message,omitempty"`
	Outcome *StepOutcome `json:"result,omitempty"`
}

// Reporter receives pipeline progress events.
type Reporter interface {
	Send(event Event) error
}

// NoOpReporter discards events.
type NoOpReporter struct{}

func (NoOpReporter) Send(Event) error { return nil }

// ChanReporter forwards events to a channel, for callers that iterate the
// sequence themselves.
type ChanReporter struct {
	C chan Event
}

func NewChanReporter(buffer int) *ChanReporter {
	return &ChanReporter{C: make(chan Event, buffer)}
}

func (r *ChanReporter) Send(event Event) error {
	r.C <- event
	return nil
}

// Close releases the channel once the pipeline run has returned.
func (r *ChanReporter) Close() { close(r.C) }

// LogReporter writes events to the structured log, used by CLI runs.
type LogReporter struct{}

func (LogReporter) Send(event Event) error {
	fields := []zap.Field{zap.String("type", string(event.Type))}
	if event.Step != "" {
		fields = append(fields, zap.String("step", event.Step))
	}
	if event.Message != "" {
		fields = append(fields, zap.String("message", event.Message))
	}
	if event.Outcome != nil {
		fields = append(fields,
			zap.String("status", event.Outcome.Status.String()),
			zap.String("value", event.Outcome.Value),
			zap.Int("attempts", event.Outcome.Attempts))
	}

	switch event.Type {
	case EventError:
		logger.Error("pipeline event", fields...)
	case EventWarning:
		logger.Log.Warn("pipeline event", fields...)
	default:
		logger.Info("pipeline event", fields...)
	}
	return nil
}

func NewStepStart(step string) Event {
	return Event{Type: EventStepStart, Step: step}
}

func NewStepComplete(step string, outcome StepOutcome) Event {
	return Event{Type: EventStepComplete, Step: step, Outcome: &outcome}
}

func NewNeedsReview(step string, outcome StepOutcome) Event {
	return Event{Type: EventNeedsReview, Step: step, Outcome: &outcome}
}

func NewWarning(step, message string) Event {
	return Event{Type: EventWarning, Step: step, Message: message}
}

func NewError(step, message string) Event {
	return Event{Type: EventError, Step: step, Message: message}
}

func NewPipelinePaused(message string) Event {
	return Event{Type: EventPipelinePaused, Message: message}
}

func NewPipelineComplete() Event {
	return Event{Type: EventPipelineComplete}
}
