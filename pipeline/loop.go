package pipeline

import "context"

// DefaultMaxAttempts bounds the analyze→confirm loop when no explicit limit
// is configured.
const DefaultMaxAttempts = 3

// Verdict is the confirmation model's judgement of an analysis result.
type Verdict struct {
	Confirmed bool
	Feedback  string
}

// AnalyzeFunc proposes a classification. The feedback string carries the
// previous attempt's rejection reason and is empty on the first call.
type AnalyzeFunc[T any] func(ctx context.Context, feedback string) (T, error)

// ConfirmFunc judges an analysis result.
type ConfirmFunc[T any] func(ctx context.Context, result T) (Verdict, error)

// LoopOutcome is the result of the confirmation-retry loop. When Confirmed is
// false the loop exhausted its attempts and Result holds the LAST analysis,
// not the best-scoring one.
type LoopOutcome[T any] struct {
	Confirmed    bool
	Result       T
	Attempts     int
	LastFeedback string
}

// RunLoop drives the analyze→confirm→retry control algorithm shared by every
// classification step. Each iteration analyzes with the prior feedback and
// confirms the proposal; a confirmation returns immediately with the 1-based
// attempt count. Any error from either call aborts the step. Callers must
// apply side effects only after a confirmed outcome, and only once.
func RunLoop[T any](ctx context.Context, maxAttempts int, analyze AnalyzeFunc[T], confirm ConfirmFunc[T]) (LoopOutcome[T], error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var out LoopOutcome[T]
	feedback := ""

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := analyze(ctx, feedback)
		if err != nil {
			return out, err
		}

		verdict, err := confirm(ctx, result)
		if err != nil {
			return out, err
		}

		out.Result = result
		out.Attempts = attempt

		if verdict.Confirmed {
			out.Confirmed = true
			out.LastFeedback = ""
			return out, nil
		}

		feedback = verdict.Feedback
		out.LastFeedback = verdict.Feedback
	}

	return out, nil
}
