package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/docpilot-ai/docpilot/paperless"
	"github.com/docpilot-ai/docpilot/pipeline"
)

// OCRSource is the document-store surface the bulk OCR job needs.
type OCRSource interface {
	ListDocuments(ctx context.Context) ([]paperless.Document, error)
	Download(ctx context.Context, documentID int) ([]byte, error)
	UpdateFields(ctx context.Context, id int, fields map[string]any) error
	AddTag(ctx context.Context, documentID int, tagName string) error
}

const bulkOCRPrompt = "Extract all text from this document image. Return only the text, no commentary."

// BulkOCR backfills content for every document that has none, one document at
// a time.
type BulkOCR struct {
	docs    OCRSource
	vision  pipeline.ImageRecognizer
	markers pipeline.MarkerMap
	limiter *RateLimiter
}

func NewBulkOCR(docs OCRSource, vision pipeline.ImageRecognizer, markers pipeline.MarkerMap, itemsPerSecond float64) *BulkOCR {
	if markers == (pipeline.MarkerMap{}) {
		markers = pipeline.DefaultMarkerMap()
	}
	return &BulkOCR{
		docs:    docs,
		vision:  vision,
		markers: markers,
		limiter: NewRateLimiter(itemsPerSecond),
	}
}

func (j *BulkOCR) Run(ctx context.Context, tracker *Tracker) error {
	documents, err := j.docs.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	tracker.SetTotal(len(documents))

	for _, doc := range documents {
		if err := ctx.Err(); err != nil {
			return err
		}

		tracker.StartItem(doc.ID, doc.Title)
		if err := j.recognizeOne(ctx, &doc, tracker); err != nil {
			tracker.Count("errors", 1)
			logger.Error("ocr failed for document", zap.Int("documentId", doc.ID), zap.Error(err))
		}
		tracker.ItemDone()

		if err := j.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (j *BulkOCR) recognizeOne(ctx context.Context, doc *paperless.Document, tracker *Tracker) error {
	if strings.TrimSpace(doc.Content) != "" {
		tracker.Count("skipped", 1)
		return nil
	}

	image, err := j.docs.Download(ctx, doc.ID)
	if err != nil {
		return err
	}

	text, err := j.vision.RecognizeImage(ctx, image, bulkOCRPrompt)
	if err != nil {
		return err
	}

	if err := j.docs.UpdateFields(ctx, doc.ID, map[string]any{"content": text}); err != nil {
		return err
	}
	if err := j.docs.AddTag(ctx, doc.ID, j.markers.OcrDone); err != nil {
		return err
	}

	tracker.Count("recognized", 1)
	return nil
}
