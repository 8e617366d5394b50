package llm

import (
	"context"
	"strings"
)

// Message is one chat turn sent to a model.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content
}

// LLMClient abstracts a chat-completion model. The pipeline uses one client
// for the analyze pass (big model) and one for the confirm pass (small model).
type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

type LLMSettings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 1.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
}

type LLMOption func(*LLMSettings)

func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

// ApplyOptions folds options into a fresh settings value. Clients start from
// their own defaults; this is for callers that only need to inspect options.
func ApplyOptions(opts ...LLMOption) *LLMSettings {
	s := &LLMSettings{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LLMSettings) SystemPrompt() string { return s.system }
func (s *LLMSettings) Temperature() float64 { return s.temperature }
func (s *LLMSettings) MaxTokens() int       { return s.maxTokens }

// CollectInference runs an inference and gathers the streamed chunks into one
// string.
func CollectInference(ctx context.Context, client LLMClient, messages []Message, opts ...LLMOption) (string, error) {
	var sb strings.Builder
	err := client.GenerateInference(ctx, messages,
		func(chunk string) error {
			sb.WriteString(chunk)
			return nil
		},
		opts...)
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
