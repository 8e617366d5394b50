package pipeline

import (
	"context"

	"github.com/docpilot-ai/docpilot/paperless"
)

// DocumentStore is the narrow view of the document store the pipeline needs.
// Every call is remote and fallible. *paperless.Client satisfies it.
type DocumentStore interface {
	GetDocument(ctx context.Context, id int) (*paperless.Document, error)
	TagNames(ctx context.Context, doc *paperless.Document) ([]string, error)
	AddTag(ctx context.Context, documentID int, tagName string) error
	RemoveTag(ctx context.Context, documentID int, tagName string) error
	UpdateFields(ctx context.Context, id int, fields map[string]any) error
	Download(ctx context.Context, documentID int) ([]byte, error)
}

// EntityCatalog lists the taxonomy entities classification steps choose from.
type EntityCatalog interface {
	Correspondents(ctx context.Context) ([]paperless.Entity, error)
	DocumentTypes(ctx context.Context) ([]paperless.Entity, error)
	Tags(ctx context.Context) ([]paperless.Entity, error)
	CustomFields(ctx context.Context) ([]paperless.CustomField, error)
}

// EntityWriter creates taxonomy entities when a reviewer approves a schema
// suggestion.
type EntityWriter interface {
	CreateCorrespondent(ctx context.Context, name string) (*paperless.Entity, error)
	CreateDocumentType(ctx context.Context, name string) (*paperless.Entity, error)
	CreateTag(ctx context.Context, name string) (*paperless.Entity, error)
	CreateCustomField(ctx context.Context, name, dataType string) (*paperless.CustomField, error)
}

// ContextProvider looks up similar already-classified documents. Lookup
// failures degrade to an empty context and never fail a step.
type ContextProvider interface {
	SimilarContext(ctx context.Context, content string) []string
	Index(ctx context.Context, documentID int, title, content, correspondent, documentType string, tags []string) error
}

// ImageRecognizer extracts text from a scanned document image.
type ImageRecognizer interface {
	RecognizeImage(ctx context.Context, image []byte, prompt string) (string, error)
}
