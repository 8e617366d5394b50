package prompts

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/docpilot-ai/docpilot/llm"
)

//go:embed templates/*
var templatesFS embed.FS

// maxExcerptChars bounds how much document content is sent to a model.
const maxExcerptChars = 8000

func loadPrompt(templatePath string, data any) (string, error) {
	tmpl, err := template.ParseFS(templatesFS, templatePath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Excerpt truncates document content to the model budget.
func Excerpt(content string) string {
	if len(content) <= maxExcerptChars {
		return content
	}
	return content[:maxExcerptChars]
}

// generate renders the prompt pair, runs the model and decodes the JSON
// payload of the response into T.
func generate[T any](ctx context.Context, client llm.LLMClient, systemTpl, userTpl string, data any) (*T, error) {
	systemPrompt, err := loadPrompt("templates/"+systemTpl, nil)
	if err != nil {
		return nil, fmt.Errorf("load system prompt %s: %w", systemTpl, err)
	}

	userPrompt, err := loadPrompt("templates/"+userTpl, data)
	if err != nil {
		return nil, fmt.Errorf("load user prompt %s: %w", userTpl, err)
	}

	response, err := llm.CollectInference(ctx, client,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0.3),
	)
	if err != nil {
		return nil, err
	}

	payload, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", userTpl, err)
	}

	out := new(T)
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", userTpl, err)
	}
	return out, nil
}

func joinLines(values []string) string {
	return strings.Join(values, "\n")
}
