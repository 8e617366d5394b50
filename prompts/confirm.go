package prompts

import (
	"context"

	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/docpilot-ai/docpilot/llm"
)

// ConfirmResult is the confirm-pass verdict on an analysis proposal.
type ConfirmResult struct {
	Confirmed bool   `json:"confirmed"`
	Feedback  string `json:"feedback"`
}

// ConfirmInput describes the proposal handed to the smaller confirmation
// model.
type ConfirmInput struct {
	Step      string
	Title     string
	Content   string
	Proposed  string
	Reasoning string
}

type confirmPromptData struct {
	Step      string
	Title     string
	Excerpt   string
	Proposed  string
	Reasoning string
}

// ConfirmSuggestion asks the confirmation model to approve or reject a
// proposal. On rejection the feedback explains what to fix and is threaded
// back into the next analyze attempt.
func ConfirmSuggestion(ctx context.Context, client llm.LLMClient, in ConfirmInput) <-chan async.Result[*ConfirmResult] {
	return async.Go(func() (*ConfirmResult, error) {
		return generate[ConfirmResult](ctx, client,
			"confirm_system.md", "confirm_user.md", confirmPromptData{
				Step:      in.Step,
				Title:     in.Title,
				Excerpt:   Excerpt(in.Content),
				Proposed:  in.Proposed,
				Reasoning: in.Reasoning,
			})
	})
}
