package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/docpilot-ai/docpilot/blocklist"
	"github.com/docpilot-ai/docpilot/paperless"
	"github.com/docpilot-ai/docpilot/review"
)

// Resolver applies human review decisions to the document store and resumes
// documents parked behind their pending items.
type Resolver struct {
	docs    DocumentStore
	writer  EntityWriter
	catalog EntityCatalog
	queue   *review.Queue
	blocks  blocklist.Store
	markers MarkerMap
}

func NewResolver(docs DocumentStore, writer EntityWriter, catalog EntityCatalog, queue *review.Queue, blocks blocklist.Store, markers MarkerMap) *Resolver {
	if markers == (MarkerMap{}) {
		markers = DefaultMarkerMap()
	}
	return &Resolver{
		docs:    docs,
		writer:  writer,
		catalog: catalog,
		queue:   queue,
		blocks:  blocks,
		markers: markers,
	}
}

// Approve commits the item's suggestion and removes it from the queue.
// valueOverride replaces the stored suggestion when the reviewer picked an
// alternative; empty keeps the stored value.
func (r *Resolver) Approve(ctx context.Context, id, valueOverride string) error {
	item, err := r.queue.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("no pending item %s", id)
	}

	value := item.SuggestedValue
	if valueOverride != "" {
		value = valueOverride
	}

	if err := r.apply(ctx, item, value); err != nil {
		return err
	}
	if _, err := r.queue.Remove(ctx, id); err != nil {
		return err
	}

	logger.Info("review item approved",
		zap.String("id", id),
		zap.String("category", string(item.Category)),
		zap.String("value", value))

	return r.resume(ctx, item)
}

// Reject discards the item. Entity-name suggestions are blocklisted so the
// same name is never proposed again for that scope.
func (r *Resolver) Reject(ctx context.Context, id, reason string) error {
	item, err := r.queue.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("no pending item %s", id)
	}

	if blockable(item.Category) {
		blocked := blocklist.NewBlocked(item.SuggestedValue, review.ScopeFor(item.Category),
			reason, string(item.Category), item.SubjectDocumentID)
		if err := r.blocks.Put(ctx, blocked); err != nil {
			return err
		}
	}

	if _, err := r.queue.Remove(ctx, id); err != nil {
		return err
	}

	logger.Info("review item rejected",
		zap.String("id", id),
		zap.String("category", string(item.Category)),
		zap.String("value", item.SuggestedValue))

	return r.resume(ctx, item)
}

func (r *Resolver) apply(ctx context.Context, item *review.PendingItem, value string) error {
	switch item.Category {
	case review.CategoryCorrespondent:
		id, err := r.ensureCorrespondent(ctx, value)
		if err != nil {
			return err
		}
		return r.docs.UpdateFields(ctx, item.SubjectDocumentID, map[string]any{"correspondent": id})

	case review.CategoryDocumentType:
		id, err := r.ensureDocumentType(ctx, value)
		if err != nil {
			return err
		}
		return r.docs.UpdateFields(ctx, item.SubjectDocumentID, map[string]any{"document_type": id})

	case review.CategoryTag:
		return r.docs.AddTag(ctx, item.SubjectDocumentID, value)

	case review.CategoryTitle:
		return r.docs.UpdateFields(ctx, item.SubjectDocumentID, map[string]any{"title": value})

	case review.CategoryCustomField:
		return r.applyCustomField(ctx, item, value)

	case review.CategorySchemaCorrespondent:
		_, err := r.writer.CreateCorrespondent(ctx, value)
		return err

	case review.CategorySchemaDocumentType:
		_, err := r.writer.CreateDocumentType(ctx, value)
		return err

	case review.CategorySchemaTag:
		_, err := r.writer.CreateTag(ctx, value)
		return err

	case review.CategorySchemaCustomField:
		dataType := item.Metadata["dataType"]
		if dataType == "" {
			dataType = "string"
		}
		_, err := r.writer.CreateCustomField(ctx, value, dataType)
		return err

	case review.CategoryMetadataDescription, review.CategorySchemaCleanup:
		// informational; the reviewer acts on these outside the pipeline
		return nil

	default:
		return fmt.Errorf("cannot apply category %s", item.Category)
	}
}

func (r *Resolver) applyCustomField(ctx context.Context, item *review.PendingItem, value string) error {
	fieldName := item.Metadata["field"]
	if fieldName == "" {
		return fmt.Errorf("item %s has no field name", item.ID)
	}

	defs, err := r.catalog.CustomFields(ctx)
	if err != nil {
		return err
	}

	fieldID := 0
	for _, def := range defs {
		if strings.EqualFold(def.Name, fieldName) {
			fieldID = def.ID
			break
		}
	}
	if fieldID == 0 {
		return fmt.Errorf("custom field %q does not exist", fieldName)
	}

	doc, err := r.docs.GetDocument(ctx, item.SubjectDocumentID)
	if err != nil {
		return err
	}

	fields := append([]paperless.CustomFieldValue{}, doc.CustomFields...)
	replaced := false
	for i := range fields {
		if fields[i].Field == fieldID {
			fields[i].Value = value
			replaced = true
			break
		}
	}
	if !replaced {
		fields = append(fields, paperless.CustomFieldValue{Field: fieldID, Value: value})
	}

	return r.docs.UpdateFields(ctx, item.SubjectDocumentID, map[string]any{"custom_fields": fields})
}

func (r *Resolver) ensureCorrespondent(ctx context.Context, name string) (int, error) {
	entities, err := r.catalog.Correspondents(ctx)
	if err != nil {
		return 0, err
	}
	if id, ok := entityID(entities, name); ok {
		return id, nil
	}

	created, err := r.writer.CreateCorrespondent(ctx, name)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (r *Resolver) ensureDocumentType(ctx context.Context, name string) (int, error) {
	entities, err := r.catalog.DocumentTypes(ctx)
	if err != nil {
		return 0, err
	}
	if id, ok := entityID(entities, name); ok {
		return id, nil
	}

	created, err := r.writer.CreateDocumentType(ctx, name)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// resume re-applies the step marker once the last pending item gating that
// marker is resolved, and lifts the schema-review park when applicable.
func (r *Resolver) resume(ctx context.Context, item *review.PendingItem) error {
	if item.SubjectDocumentID == 0 || item.ResumeMarker == "" {
		return nil
	}

	remaining, err := r.queue.GetBySubject(ctx, item.SubjectDocumentID)
	if err != nil {
		return err
	}
	for _, other := range remaining {
		if other.ResumeMarker == item.ResumeMarker {
			return nil
		}
	}

	if err := r.docs.AddTag(ctx, item.SubjectDocumentID, item.ResumeMarker); err != nil {
		return err
	}

	if item.ResumeMarker == r.markers.SchemaAnalysisDone {
		if err := r.docs.RemoveTag(ctx, item.SubjectDocumentID, r.markers.SchemaReview); err != nil {
			return err
		}
	}

	logger.Info("document resumed",
		zap.Int("documentId", item.SubjectDocumentID),
		zap.String("marker", item.ResumeMarker))
	return nil
}

func blockable(c review.Category) bool {
	switch c {
	case review.CategoryCorrespondent, review.CategoryDocumentType, review.CategoryTag,
		review.CategorySchemaCorrespondent, review.CategorySchemaDocumentType, review.CategorySchemaTag:
		return true
	default:
		return false
	}
}
