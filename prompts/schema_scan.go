package prompts

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/docpilot-ai/docpilot/llm"
)

// SchemaScanSuggestion proposes one new taxonomy entity discovered in a
// document.
type SchemaScanSuggestion struct {
	Category   string   `json:"category"` // correspondent | document_type | tag | custom_field
	Name       string   `json:"name"`
	Reasoning  string   `json:"reasoning"`
	Confidence float64  `json:"confidence"`
	SimilarTo  []string `json:"similar_to,omitempty"`
}

// SchemaScanResult is the analyze output of a schema scan over one document.
type SchemaScanResult struct {
	Suggestions []SchemaScanSuggestion `json:"suggestions"`
	Description string                 `json:"description,omitempty"`
}

// SchemaScanInput carries the document plus the taxonomy the model must not
// re-propose: existing entities and suggestions already pending in this run.
type SchemaScanInput struct {
	Title            string
	Content          string
	Existing         map[string][]string
	AlreadySuggested []string
}

type schemaScanPromptData struct {
	Title            string
	Excerpt          string
	Existing         string
	AlreadySuggested string
}

func ScanSchema(ctx context.Context, client llm.LLMClient, in SchemaScanInput) <-chan async.Result[*SchemaScanResult] {
	return async.Go(func() (*SchemaScanResult, error) {
		var existing strings.Builder
		for category, names := range in.Existing {
			existing.WriteString(category + ": " + strings.Join(names, ", ") + "\n")
		}

		return generate[SchemaScanResult](ctx, client,
			"schema_scan_system.md", "schema_scan_user.md", schemaScanPromptData{
				Title:            in.Title,
				Excerpt:          Excerpt(in.Content),
				Existing:         existing.String(),
				AlreadySuggested: strings.Join(in.AlreadySuggested, ", "),
			})
	})
}
