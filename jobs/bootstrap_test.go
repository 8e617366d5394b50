package jobs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpilot-ai/docpilot/blocklist"
	"github.com/docpilot-ai/docpilot/llm"
	"github.com/docpilot-ai/docpilot/paperless"
	"github.com/docpilot-ai/docpilot/pipeline"
	"github.com/docpilot-ai/docpilot/review"
)

type recognizerFunc func(ctx context.Context, image []byte, prompt string) (string, error)

func (f recognizerFunc) RecognizeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return f(ctx, image, prompt)
}

// fakeArchive implements DocumentLister, OCRSource and pipeline.EntityCatalog.
type fakeArchive struct {
	documents      []paperless.Document
	correspondents []paperless.Entity
	documentTypes  []paperless.Entity
	tagEntities    []paperless.Entity
	customFields   []paperless.CustomField
	updates        map[int]map[string]any
	tagged         map[int][]string
}

func (f *fakeArchive) ListDocuments(_ context.Context) ([]paperless.Document, error) {
	return f.documents, nil
}

func (f *fakeArchive) Download(_ context.Context, _ int) ([]byte, error) {
	return []byte("image-bytes"), nil
}

func (f *fakeArchive) UpdateFields(_ context.Context, id int, fields map[string]any) error {
	if f.updates == nil {
		f.updates = make(map[int]map[string]any)
	}
	f.updates[id] = fields
	return nil
}

func (f *fakeArchive) AddTag(_ context.Context, id int, name string) error {
	if f.tagged == nil {
		f.tagged = make(map[int][]string)
	}
	f.tagged[id] = append(f.tagged[id], name)
	return nil
}

func (f *fakeArchive) Correspondents(_ context.Context) ([]paperless.Entity, error) {
	return f.correspondents, nil
}

func (f *fakeArchive) DocumentTypes(_ context.Context) ([]paperless.Entity, error) {
	return f.documentTypes, nil
}

func (f *fakeArchive) Tags(_ context.Context) ([]paperless.Entity, error) {
	return f.tagEntities, nil
}

func (f *fakeArchive) CustomFields(_ context.Context) ([]paperless.CustomField, error) {
	return f.customFields, nil
}

// cannedLLM returns the same response to every call and records prompts.
type cannedLLM struct {
	response string
	prompts  []string
}

func (c *cannedLLM) GenerateInference(_ context.Context, messages []llm.Message, callback func(string) error, _ ...llm.LLMOption) error {
	c.prompts = append(c.prompts, messages[len(messages)-1].Content)
	return callback(c.response)
}

func (c *cannedLLM) GetModel() string { return "canned" }

func TestBootstrapDeduplicatesAcrossDocuments(t *testing.T) {
	archive := &fakeArchive{
		documents: []paperless.Document{
			{ID: 1, Title: "doc one", Content: "Netflix monthly receipt"},
			{ID: 2, Title: "doc two", Content: "Spotify monthly receipt"},
		},
		tagEntities: []paperless.Entity{{ID: 1, Name: "tax"}},
	}
	analyzer := &cannedLLM{response: `{
		"suggestions": [
			{"category": "tag", "name": "subscription", "reasoning": "recurring", "confidence": 0.8},
			{"category": "tag", "name": "spam", "reasoning": "junk", "confidence": 0.4},
			{"category": "tag", "name": "tax", "reasoning": "exists", "confidence": 0.9}
		]
	}`}

	queue := review.NewQueue(review.NewMemoryStore())
	blocks := blocklist.NewMemoryStore()
	require.NoError(t, blocks.Put(context.Background(),
		blocklist.NewBlocked("spam", blocklist.ScopeTag, "junk", "tag", 0)))

	job := NewBootstrap(archive, archive, analyzer, queue, blocks, 10)
	tracker := newTracker(KindBootstrap, "run")

	require.NoError(t, job.Run(context.Background(), tracker))

	items, err := queue.GetAll(context.Background(), review.CategorySchemaTag)
	require.NoError(t, err)
	require.Len(t, items, 1, "repeat matches must update the existing item")
	assert.Equal(t, "subscription", items[0].SuggestedValue)
	assert.Equal(t, 2, items[0].Attempts, "occurrence count across both documents")
	assert.Equal(t, 0, items[0].SubjectDocumentID)

	p := tracker.Snapshot()
	assert.Equal(t, 2, p.Processed)
	assert.Equal(t, 1, p.Counters["schema_tag"])
	assert.Equal(t, 2, p.Counters["blocked"])

	// the second scan is told what is already pending
	require.Len(t, analyzer.prompts, 2)
	assert.Contains(t, analyzer.prompts[1], "subscription")
	assert.NotContains(t, analyzer.prompts[0], "subscription")
}

func TestBootstrapSkipsEmptyDocuments(t *testing.T) {
	archive := &fakeArchive{
		documents: []paperless.Document{
			{ID: 1, Title: "empty scan", Content: "   "},
		},
	}
	analyzer := &cannedLLM{response: `{"suggestions": []}`}
	queue := review.NewQueue(review.NewMemoryStore())

	job := NewBootstrap(archive, archive, analyzer, queue, blocklist.NewMemoryStore(), 10)
	tracker := newTracker(KindBootstrap, "run")

	require.NoError(t, job.Run(context.Background(), tracker))

	assert.Empty(t, analyzer.prompts)
	p := tracker.Snapshot()
	assert.Equal(t, 1, p.Counters["skipped"])
	assert.Equal(t, 1, p.Processed)
}

func TestBootstrapCountsItemErrorsAndContinues(t *testing.T) {
	archive := &fakeArchive{
		documents: []paperless.Document{
			{ID: 1, Title: "bad", Content: "text"},
			{ID: 2, Title: "good", Content: "text"},
		},
	}

	calls := 0
	analyzer := &flakyLLM{fail: func() bool { calls++; return calls == 1 }}

	queue := review.NewQueue(review.NewMemoryStore())
	job := NewBootstrap(archive, archive, analyzer, queue, blocklist.NewMemoryStore(), 10)
	tracker := newTracker(KindBootstrap, "run")

	require.NoError(t, job.Run(context.Background(), tracker))

	p := tracker.Snapshot()
	assert.Equal(t, 2, p.Processed, "a failing item must not abort the batch")
	assert.Equal(t, 1, p.Counters["errors"])
}

type flakyLLM struct {
	fail func() bool
}

func (f *flakyLLM) GenerateInference(_ context.Context, _ []llm.Message, callback func(string) error, _ ...llm.LLMOption) error {
	if f.fail() {
		return fmt.Errorf("model overloaded")
	}
	return callback(`{"suggestions": []}`)
}

func (f *flakyLLM) GetModel() string { return "flaky" }

func TestBulkOCRRecognizesOnlyEmptyDocuments(t *testing.T) {
	archive := &fakeArchive{
		documents: []paperless.Document{
			{ID: 1, Title: "has text", Content: "already extracted"},
			{ID: 2, Title: "scan only", Content: ""},
		},
	}

	markers := pipeline.DefaultMarkerMap()
	job := NewBulkOCR(archive, recognizerFunc(func(ctx context.Context, image []byte, prompt string) (string, error) {
		return "recognized text", nil
	}), markers, 10)
	tracker := newTracker(KindBulkOCR, "run")

	require.NoError(t, job.Run(context.Background(), tracker))

	p := tracker.Snapshot()
	assert.Equal(t, 2, p.Processed)
	assert.Equal(t, 1, p.Counters["skipped"])
	assert.Equal(t, 1, p.Counters["recognized"])

	require.Contains(t, archive.updates, 2)
	assert.Equal(t, "recognized text", archive.updates[2]["content"])
	assert.NotContains(t, archive.updates, 1)
	assert.Contains(t, archive.tagged[2], markers.OcrDone)
}

func TestCleanupGroupsNearDuplicates(t *testing.T) {
	archive := &fakeArchive{
		correspondents: []paperless.Entity{
			{ID: 1, Name: "Amazon"},
			{ID: 2, Name: "Amzon"},
			{ID: 3, Name: "Google"},
		},
	}
	queue := review.NewQueue(review.NewMemoryStore())

	job := NewCleanup(archive, queue, 0.7)
	tracker := newTracker(KindCleanup, "run")

	require.NoError(t, job.Run(context.Background(), tracker))

	items, err := queue.GetAll(context.Background(), review.CategorySchemaCleanup)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Amazon", items[0].SuggestedValue)
	assert.Contains(t, items[0].Metadata["members"], "Amzon")
	assert.Equal(t, "correspondent", items[0].Metadata["category"])

	p := tracker.Snapshot()
	assert.Equal(t, 1, p.Counters["correspondent"])
}
