package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"

	"github.com/docpilot-ai/docpilot/blocklist"
	"github.com/docpilot-ai/docpilot/llm"
	"github.com/docpilot-ai/docpilot/paperless"
	"github.com/docpilot-ai/docpilot/pipeline"
	"github.com/docpilot-ai/docpilot/prompts"
	"github.com/docpilot-ai/docpilot/review"
)

// DocumentLister lists the documents a batch job iterates.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]paperless.Document, error)
}

// Bootstrap scans the whole archive for missing taxonomy entities and seeds
// the review queue. Suggestions are not tied to one document; repeat matches
// across documents within one run increment the occurrence count on the
// existing pending item instead of duplicating it.
type Bootstrap struct {
	docs     DocumentLister
	catalog  pipeline.EntityCatalog
	analyzer llm.LLMClient
	queue    *review.Queue
	blocks   blocklist.Store
	limiter  *RateLimiter
}

func NewBootstrap(docs DocumentLister, catalog pipeline.EntityCatalog, analyzer llm.LLMClient, queue *review.Queue, blocks blocklist.Store, itemsPerSecond float64) *Bootstrap {
	return &Bootstrap{
		docs:     docs,
		catalog:  catalog,
		analyzer: analyzer,
		queue:    queue,
		blocks:   blocks,
		limiter:  NewRateLimiter(itemsPerSecond),
	}
}

// Run iterates all documents serially. Per-item errors are counted and
// skipped; an error in the surrounding control code fails the whole job.
func (b *Bootstrap) Run(ctx context.Context, tracker *Tracker) error {
	documents, err := b.docs.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	tracker.SetTotal(len(documents))

	existing, err := b.existingEntities(ctx)
	if err != nil {
		return err
	}

	entries, err := b.blocks.List(ctx)
	if err != nil {
		return err
	}
	lists := blocklist.BuildLists(entries)

	// same-run dedup: category|normalized name -> occurrences
	seen := make(map[string]int)

	for _, doc := range documents {
		if err := ctx.Err(); err != nil {
			return err
		}

		tracker.StartItem(doc.ID, doc.Title)
		if err := b.scanOne(ctx, &doc, existing, lists, seen, tracker); err != nil {
			tracker.Count("errors", 1)
			logger.Error("schema scan failed for document",
				zap.Int("documentId", doc.ID), zap.Error(err))
		}
		tracker.ItemDone()

		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bootstrap) scanOne(ctx context.Context, doc *paperless.Document, existing map[string][]string, lists blocklist.Lists, seen map[string]int, tracker *Tracker) error {
	if strings.TrimSpace(doc.Content) == "" {
		tracker.Count("skipped", 1)
		return nil
	}

	res, err := async.Await(prompts.ScanSchema(ctx, b.analyzer, prompts.SchemaScanInput{
		Title:            doc.Title,
		Content:          doc.Content,
		Existing:         existing,
		AlreadySuggested: seenNames(seen),
	}))
	if err != nil {
		return err
	}

	for _, s := range res.Suggestions {
		category, ok := schemaCategoryFor(s.Category)
		if !ok {
			continue
		}
		if containsFold(existing[s.Category], s.Name) {
			continue
		}
		if lists.Blocked(s.Name, review.ScopeFor(category)) {
			tracker.Count("blocked", 1)
			continue
		}

		key := string(category) + "|" + blocklist.Normalize(s.Name)
		seen[key]++

		item := review.PendingItem{
			Category:       category,
			SuggestedValue: s.Name,
			Reasoning:      s.Reasoning,
			Confidence:     s.Confidence,
			Attempts:       seen[key],
			Metadata:       map[string]string{"sourceDocumentId": fmt.Sprintf("%d", doc.ID)},
		}
		if _, err := b.queue.Add(ctx, item); err != nil {
			return err
		}

		if seen[key] == 1 {
			tracker.Count(string(category), 1)
		}
	}
	return nil
}

func (b *Bootstrap) existingEntities(ctx context.Context) (map[string][]string, error) {
	correspondents, err := b.catalog.Correspondents(ctx)
	if err != nil {
		return nil, err
	}
	documentTypes, err := b.catalog.DocumentTypes(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := b.catalog.Tags(ctx)
	if err != nil {
		return nil, err
	}
	fields, err := b.catalog.CustomFields(ctx)
	if err != nil {
		return nil, err
	}

	fieldNames := make([]string, 0, len(fields))
	for _, f := range fields {
		fieldNames = append(fieldNames, f.Name)
	}

	return map[string][]string{
		"correspondent": names(correspondents),
		"document_type": names(documentTypes),
		"tag":           names(tags),
		"custom_field":  fieldNames,
	}, nil
}

func schemaCategoryFor(category string) (review.Category, bool) {
	switch category {
	case "correspondent":
		return review.CategorySchemaCorrespondent, true
	case "document_type":
		return review.CategorySchemaDocumentType, true
	case "tag":
		return review.CategorySchemaTag, true
	case "custom_field":
		return review.CategorySchemaCustomField, true
	default:
		return "", false
	}
}

func seenNames(seen map[string]int) []string {
	out := make([]string, 0, len(seen))
	for key := range seen {
		if _, name, ok := strings.Cut(key, "|"); ok {
			out = append(out, name)
		}
	}
	return out
}

func names(entities []paperless.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func containsFold(values []string, v string) bool {
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}
