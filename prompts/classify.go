package prompts

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/docpilot-ai/docpilot/llm"
)

// ClassificationResult is the analyze-pass output for single-valued steps
// (correspondent, document type, title).
type ClassificationResult struct {
	Value        string   `json:"value"`
	Reasoning    string   `json:"reasoning"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// TagSuggestion is one proposed tag.
type TagSuggestion struct {
	Name       string  `json:"name"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// TagsResult is the analyze-pass output of the tag step.
type TagsResult struct {
	Tags []TagSuggestion `json:"tags"`
}

// CustomFieldsResult is the analyze-pass output of the custom-fields step.
type CustomFieldsResult struct {
	Fields     map[string]string `json:"fields"`
	Reasoning  string            `json:"reasoning"`
	Confidence float64           `json:"confidence"`
}

// ClassifyInput carries everything a classification prompt needs.
type ClassifyInput struct {
	Title          string
	Content        string
	Candidates     []string // existing entity names the model should prefer
	Fields         []string // custom field names, custom-fields step only
	Feedback       string   // confirm-pass rejection from the previous attempt
	SimilarContext []string // optional context from similar documents
}

type classifyPromptData struct {
	Title          string
	Excerpt        string
	Candidates     string
	Fields         string
	Feedback       string
	SimilarContext string
}

func (in ClassifyInput) promptData() classifyPromptData {
	return classifyPromptData{
		Title:          in.Title,
		Excerpt:        Excerpt(in.Content),
		Candidates:     strings.Join(in.Candidates, ", "),
		Fields:         strings.Join(in.Fields, ", "),
		Feedback:       in.Feedback,
		SimilarContext: joinLines(in.SimilarContext),
	}
}

func SuggestCorrespondent(ctx context.Context, client llm.LLMClient, in ClassifyInput) <-chan async.Result[*ClassificationResult] {
	return async.Go(func() (*ClassificationResult, error) {
		return generate[ClassificationResult](ctx, client,
			"correspondent_system.md", "correspondent_user.md", in.promptData())
	})
}

func SuggestDocumentType(ctx context.Context, client llm.LLMClient, in ClassifyInput) <-chan async.Result[*ClassificationResult] {
	return async.Go(func() (*ClassificationResult, error) {
		return generate[ClassificationResult](ctx, client,
			"document_type_system.md", "document_type_user.md", in.promptData())
	})
}

func SuggestTitle(ctx context.Context, client llm.LLMClient, in ClassifyInput) <-chan async.Result[*ClassificationResult] {
	return async.Go(func() (*ClassificationResult, error) {
		return generate[ClassificationResult](ctx, client,
			"title_system.md", "title_user.md", in.promptData())
	})
}

func SuggestTags(ctx context.Context, client llm.LLMClient, in ClassifyInput) <-chan async.Result[*TagsResult] {
	return async.Go(func() (*TagsResult, error) {
		return generate[TagsResult](ctx, client,
			"tags_system.md", "tags_user.md", in.promptData())
	})
}

func SuggestCustomFields(ctx context.Context, client llm.LLMClient, in ClassifyInput) <-chan async.Result[*CustomFieldsResult] {
	return async.Go(func() (*CustomFieldsResult, error) {
		return generate[CustomFieldsResult](ctx, client,
			"custom_fields_system.md", "custom_fields_user.md", in.promptData())
	})
}
