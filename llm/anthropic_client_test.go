package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClientGenerateInference(t *testing.T) {
	var gotRequest anthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		resp := anthropicResponse{
			Content: []content{{Text: `{"value": "Amazon"}`, Type: "text"}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewAnthropicClientWithURL("claude-3-5-haiku-20241022", server.URL, "test-key")

	var got string
	err := client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "classify this"}},
		func(chunk string) error {
			got = chunk
			return nil
		},
		WithSystemPrompt("you are a classifier"),
		WithMaxTokens(512),
		WithTemperature(0.2),
	)

	require.NoError(t, err)
	assert.Equal(t, `{"value": "Amazon"}`, got)
	assert.Equal(t, "you are a classifier", gotRequest.System)
	assert.Equal(t, 512, gotRequest.MaxTokens)
	assert.Equal(t, 0.2, gotRequest.Temperature)
}

func TestAnthropicClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewAnthropicClientWithURL("claude-3-5-haiku-20241022", server.URL, "test-key")

	err := client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		func(string) error { return nil })

	assert.ErrorContains(t, err, "status 503")
}

func TestAnthropicClientEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{})
	}))
	defer server.Close()

	client := NewAnthropicClientWithURL("claude-3-5-haiku-20241022", server.URL, "test-key")

	err := client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		func(string) error { return nil })

	assert.ErrorContains(t, err, "no content")
}
