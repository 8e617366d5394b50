package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpilot-ai/docpilot/blocklist"
	"github.com/docpilot-ai/docpilot/llm"
	"github.com/docpilot-ai/docpilot/paperless"
	"github.com/docpilot-ai/docpilot/review"
)

// fakeDocStore implements DocumentStore, EntityCatalog and EntityWriter over
// in-memory state.
type fakeDocStore struct {
	doc            paperless.Document
	tags           []string
	updates        []map[string]any
	image          []byte
	correspondents []paperless.Entity
	documentTypes  []paperless.Entity
	tagEntities    []paperless.Entity
	customFields   []paperless.CustomField
	created        []string
	nextID         int
}

func (f *fakeDocStore) GetDocument(_ context.Context, id int) (*paperless.Document, error) {
	if id != f.doc.ID {
		return nil, fmt.Errorf("no document %d", id)
	}
	copy := f.doc
	return &copy, nil
}

func (f *fakeDocStore) TagNames(_ context.Context, _ *paperless.Document) ([]string, error) {
	return append([]string{}, f.tags...), nil
}

func (f *fakeDocStore) AddTag(_ context.Context, _ int, name string) error {
	for _, t := range f.tags {
		if t == name {
			return nil
		}
	}
	f.tags = append(f.tags, name)
	return nil
}

func (f *fakeDocStore) RemoveTag(_ context.Context, _ int, name string) error {
	out := f.tags[:0]
	for _, t := range f.tags {
		if t != name {
			out = append(out, t)
		}
	}
	f.tags = out
	return nil
}

func (f *fakeDocStore) UpdateFields(_ context.Context, _ int, fields map[string]any) error {
	f.updates = append(f.updates, fields)
	if title, ok := fields["title"].(string); ok {
		f.doc.Title = title
	}
	if content, ok := fields["content"].(string); ok {
		f.doc.Content = content
	}
	if id, ok := fields["correspondent"].(int); ok {
		f.doc.Correspondent = &id
	}
	if id, ok := fields["document_type"].(int); ok {
		f.doc.DocumentType = &id
	}
	return nil
}

func (f *fakeDocStore) Download(_ context.Context, _ int) ([]byte, error) {
	return f.image, nil
}

func (f *fakeDocStore) Correspondents(_ context.Context) ([]paperless.Entity, error) {
	return f.correspondents, nil
}

func (f *fakeDocStore) DocumentTypes(_ context.Context) ([]paperless.Entity, error) {
	return f.documentTypes, nil
}

func (f *fakeDocStore) Tags(_ context.Context) ([]paperless.Entity, error) {
	return f.tagEntities, nil
}

func (f *fakeDocStore) CustomFields(_ context.Context) ([]paperless.CustomField, error) {
	return f.customFields, nil
}

func (f *fakeDocStore) create(name string) paperless.Entity {
	f.nextID++
	f.created = append(f.created, name)
	return paperless.Entity{ID: 1000 + f.nextID, Name: name}
}

func (f *fakeDocStore) CreateCorrespondent(_ context.Context, name string) (*paperless.Entity, error) {
	e := f.create(name)
	f.correspondents = append(f.correspondents, e)
	return &e, nil
}

func (f *fakeDocStore) CreateDocumentType(_ context.Context, name string) (*paperless.Entity, error) {
	e := f.create(name)
	f.documentTypes = append(f.documentTypes, e)
	return &e, nil
}

func (f *fakeDocStore) CreateTag(_ context.Context, name string) (*paperless.Entity, error) {
	e := f.create(name)
	f.tagEntities = append(f.tagEntities, e)
	return &e, nil
}

func (f *fakeDocStore) CreateCustomField(_ context.Context, name, _ string) (*paperless.CustomField, error) {
	f.nextID++
	f.created = append(f.created, name)
	cf := paperless.CustomField{ID: 1000 + f.nextID, Name: name, DataType: "string"}
	f.customFields = append(f.customFields, cf)
	return &cf, nil
}

// scriptedLLM answers by matching a key phrase in the system prompt.
type scriptedLLM struct {
	responses map[string]string
}

func (s *scriptedLLM) GenerateInference(_ context.Context, _ []llm.Message, callback func(string) error, opts ...llm.LLMOption) error {
	system := llm.ApplyOptions(opts...).SystemPrompt()
	for key, resp := range s.responses {
		if strings.Contains(system, key) {
			return callback(resp)
		}
	}
	return fmt.Errorf("no scripted response for system prompt %q", system)
}

func (s *scriptedLLM) GetModel() string { return "scripted" }

type recordReporter struct {
	events []Event
}

func (r *recordReporter) Send(e Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordReporter) types() []EventType {
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func confirmAll() *scriptedLLM {
	return &scriptedLLM{responses: map[string]string{
		"strict reviewer": `{"confirmed": true, "feedback": ""}`,
	}}
}

func rejectAll(feedback string) *scriptedLLM {
	return &scriptedLLM{responses: map[string]string{
		"strict reviewer": fmt.Sprintf(`{"confirmed": false, "feedback": %q}`, feedback),
	}}
}

func happyAnalyzer() *scriptedLLM {
	return &scriptedLLM{responses: map[string]string{
		"archive curator":            `{"suggestions": [], "description": ""}`,
		"identify the correspondent": `{"value": "Amazon", "reasoning": "letterhead", "confidence": 0.9}`,
		"assign a document type":     `{"value": "Invoice", "reasoning": "totals", "confidence": 0.9}`,
		"concise archive title":      `{"value": "Amazon invoice March 2026", "reasoning": "", "confidence": 0.85}`,
		"select tags":                `{"tags": [{"name": "tax", "reasoning": "deductible", "confidence": 0.8}]}`,
		"extract values":             `{"fields": {}, "reasoning": "", "confidence": 0.5}`,
	}}
}

func newTestSetup(analyzer, verifier llm.LLMClient) (*Orchestrator, *fakeDocStore, *review.Queue, *blocklist.MemoryStore) {
	docs := &fakeDocStore{
		doc: paperless.Document{
			ID:      42,
			Title:   "scan_0001.pdf",
			Content: "Invoice from Amazon EU S.a.r.l. for March 2026, total 42.00 EUR",
		},
		tags:           []string{"inbox"},
		correspondents: []paperless.Entity{{ID: 1, Name: "Amazon"}, {ID: 2, Name: "Vodafone"}},
		documentTypes:  []paperless.Entity{{ID: 10, Name: "Invoice"}},
		tagEntities:    []paperless.Entity{{ID: 20, Name: "inbox"}, {ID: 21, Name: "tax"}},
	}

	queue := review.NewQueue(review.NewMemoryStore())
	blocks := blocklist.NewMemoryStore()

	orch := NewOrchestrator(OrchestratorConfig{
		Docs:     docs,
		Catalog:  docs,
		Analyzer: analyzer,
		Verifier: verifier,
		Queue:    queue,
		Blocks:   blocks,
	})
	return orch, docs, queue, blocks
}

func TestProcessDocumentHappyPath(t *testing.T) {
	orch, docs, queue, _ := newTestSetup(happyAnalyzer(), confirmAll())
	reporter := &recordReporter{}

	err := orch.ProcessDocument(context.Background(), 42, reporter)
	require.NoError(t, err)

	m := DefaultMarkerMap()
	for _, marker := range []string{m.OcrDone, m.SchemaAnalysisDone, m.CorrespondentDone,
		m.DocumentTypeDone, m.TitleDone, m.TagsDone, m.CustomFieldsDone, m.Processed} {
		assert.Contains(t, docs.tags, marker)
	}
	assert.NotContains(t, docs.tags, m.SchemaReview)
	assert.Contains(t, docs.tags, "tax")

	require.NotNil(t, docs.doc.Correspondent)
	assert.Equal(t, 1, *docs.doc.Correspondent)
	require.NotNil(t, docs.doc.DocumentType)
	assert.Equal(t, 10, *docs.doc.DocumentType)
	assert.Equal(t, "Amazon invoice March 2026", docs.doc.Title)

	types := reporter.types()
	assert.Equal(t, EventPipelineComplete, types[len(types)-1])
	assert.NotContains(t, types, EventNeedsReview)

	counts, err := queue.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, counts["total"])
}

func TestProcessDocumentSchemaSuggestionsPark(t *testing.T) {
	analyzer := happyAnalyzer()
	analyzer.responses["archive curator"] = `{
		"suggestions": [
			{"category": "tag", "name": "subscription", "reasoning": "recurring", "confidence": 0.8},
			{"category": "correspondent", "name": "Amazon", "reasoning": "exists already", "confidence": 0.9}
		],
		"description": "monthly invoice"
	}`

	orch, docs, queue, _ := newTestSetup(analyzer, confirmAll())
	reporter := &recordReporter{}

	err := orch.ProcessDocument(context.Background(), 42, reporter)
	require.NoError(t, err)

	m := DefaultMarkerMap()
	assert.Contains(t, docs.tags, m.SchemaReview)
	assert.NotContains(t, docs.tags, m.SchemaAnalysisDone)

	types := reporter.types()
	assert.Equal(t, EventPipelinePaused, types[len(types)-1])
	assert.Contains(t, types, EventNeedsReview)

	// the existing correspondent is deduplicated away, only the tag is queued
	items, err := queue.GetAll(context.Background(), review.CategorySchemaTag)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "subscription", items[0].SuggestedValue)
	assert.Equal(t, m.SchemaAnalysisDone, items[0].ResumeMarker)

	descriptions, err := queue.GetAll(context.Background(), review.CategoryMetadataDescription)
	require.NoError(t, err)
	require.Len(t, descriptions, 1)
	assert.Equal(t, "monthly invoice", descriptions[0].SuggestedValue)

	corr, err := queue.GetAll(context.Background(), review.CategorySchemaCorrespondent)
	require.NoError(t, err)
	assert.Empty(t, corr)
}

func TestProcessDocumentExhaustedRetriesQueuesReview(t *testing.T) {
	orch, docs, queue, _ := newTestSetup(happyAnalyzer(), rejectAll("sender is not the correspondent"))
	m := DefaultMarkerMap()
	docs.tags = append(docs.tags, m.OcrDone, m.SchemaAnalysisDone)

	reporter := &recordReporter{}
	err := orch.ProcessDocument(context.Background(), 42, reporter)
	require.NoError(t, err)

	assert.NotContains(t, docs.tags, m.CorrespondentDone)

	items, err := queue.GetAll(context.Background(), review.CategoryCorrespondent)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Amazon", items[0].SuggestedValue)
	assert.Equal(t, DefaultMaxAttempts, items[0].Attempts)
	assert.Equal(t, "sender is not the correspondent", items[0].LastFeedback)
	assert.Equal(t, m.CorrespondentDone, items[0].ResumeMarker)

	types := reporter.types()
	assert.Contains(t, types, EventNeedsReview)
	assert.Equal(t, EventPipelinePaused, types[len(types)-1])
}

func TestProcessDocumentBlockedValueNeverConfirms(t *testing.T) {
	orch, docs, queue, blocks := newTestSetup(happyAnalyzer(), confirmAll())
	m := DefaultMarkerMap()
	docs.tags = append(docs.tags, m.OcrDone, m.SchemaAnalysisDone)

	err := blocks.Put(context.Background(),
		blocklist.NewBlocked("Amazon", blocklist.ScopeCorrespondent, "wrong entity", "correspondent", 0))
	require.NoError(t, err)

	err = orch.ProcessDocument(context.Background(), 42, &recordReporter{})
	require.NoError(t, err)

	// the analyzer keeps proposing the blocked name, so the loop exhausts
	items, err := queue.GetAll(context.Background(), review.CategoryCorrespondent)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, DefaultMaxAttempts, items[0].Attempts)
	assert.NotContains(t, docs.tags, m.CorrespondentDone)
}

func TestProcessDocumentNovelValueDefersToReview(t *testing.T) {
	analyzer := happyAnalyzer()
	analyzer.responses["identify the correspondent"] = `{"value": "Zalando", "reasoning": "footer", "confidence": 0.7}`

	orch, docs, queue, _ := newTestSetup(analyzer, confirmAll())
	m := DefaultMarkerMap()
	docs.tags = append(docs.tags, m.OcrDone, m.SchemaAnalysisDone)

	err := orch.ProcessDocument(context.Background(), 42, &recordReporter{})
	require.NoError(t, err)

	assert.Nil(t, docs.doc.Correspondent)
	assert.NotContains(t, docs.tags, m.CorrespondentDone)

	items, err := queue.GetAll(context.Background(), review.CategoryCorrespondent)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Zalando", items[0].SuggestedValue)
}

func TestProcessDocumentAlreadyProcessed(t *testing.T) {
	orch, docs, _, _ := newTestSetup(happyAnalyzer(), confirmAll())
	docs.tags = append(docs.tags, DefaultMarkerMap().Processed)

	reporter := &recordReporter{}
	err := orch.ProcessDocument(context.Background(), 42, reporter)
	require.NoError(t, err)

	require.Len(t, reporter.events, 1)
	assert.Equal(t, EventPipelineComplete, reporter.events[0].Type)
}

func TestProcessDocumentParkedOnSchemaReview(t *testing.T) {
	orch, docs, _, _ := newTestSetup(happyAnalyzer(), confirmAll())
	m := DefaultMarkerMap()
	docs.tags = append(docs.tags, m.OcrDone, m.SchemaReview)

	reporter := &recordReporter{}
	err := orch.ProcessDocument(context.Background(), 42, reporter)
	require.NoError(t, err)

	require.Len(t, reporter.events, 1)
	assert.Equal(t, EventPipelinePaused, reporter.events[0].Type)
}

func TestStepOCRSkippedWhenContentPresent(t *testing.T) {
	orch, docs, _, _ := newTestSetup(happyAnalyzer(), confirmAll())
	reporter := &recordReporter{}

	proceed, err := orch.stepOCR(context.Background(), &docs.doc, reporter)
	require.NoError(t, err)
	assert.True(t, proceed)
	assert.Contains(t, docs.tags, DefaultMarkerMap().OcrDone)

	last := reporter.events[len(reporter.events)-1]
	assert.Equal(t, EventStepComplete, last.Type)
	assert.Equal(t, StepSkipped, last.Outcome.Status)
}
