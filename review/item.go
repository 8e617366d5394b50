package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/odm"

	"github.com/docpilot-ai/docpilot/blocklist"
)

// Category identifies what kind of suggestion a pending item carries.
type Category string

const (
	CategoryCorrespondent Category = "correspondent"
	CategoryDocumentType  Category = "document_type"
	CategoryTag           Category = "tag"
	CategoryTitle         Category = "title"
	CategoryCustomField   Category = "custom_field"

	// Bootstrap schema-scan suggestions. These carry their own dedup and are
	// excluded from similarity grouping.
	CategorySchemaCorrespondent Category = "schema_correspondent"
	CategorySchemaDocumentType  Category = "schema_document_type"
	CategorySchemaTag           Category = "schema_tag"
	CategorySchemaCustomField   Category = "schema_custom_field"

	CategoryMetadataDescription Category = "metadata_description"
	CategorySchemaCleanup       Category = "schema_cleanup"
)

// IsSchemaCategory reports whether c is a bootstrap schema category.
func IsSchemaCategory(c Category) bool {
	return strings.HasPrefix(string(c), "schema_") && c != CategorySchemaCleanup
}

// PendingItem is a suggested classification awaiting human approval.
type PendingItem struct {
	ID                string            `json:"id" bson:"_id"`
	SubjectDocumentID int               `json:"subjectDocumentId" bson:"subjectDocumentId"` // 0 = not tied to one document
	SubjectTitle      string            `json:"subjectTitle" bson:"subjectTitle"`
	Category          Category          `json:"category" bson:"category"`
	SuggestedValue    string            `json:"suggestedValue" bson:"suggestedValue"`
	Reasoning         string            `json:"reasoning" bson:"reasoning"`
	Alternatives      []string          `json:"alternatives" bson:"alternatives"`
	Attempts          int               `json:"attempts" bson:"attempts"`
	LastFeedback      string            `json:"lastFeedback" bson:"lastFeedback"`
	Confidence        float64           `json:"confidence" bson:"confidence"`
	CreatedAt         time.Time         `json:"createdAt" bson:"createdAt"`
	Metadata          map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	ResumeMarker      string            `json:"resumeMarker,omitempty" bson:"resumeMarker,omitempty"`
}

func (m PendingItem) Id() string { return m.ID }

func (m PendingItem) CollectionName() string { return "pending_review" }

// ItemID derives the stable identity of a suggestion. Re-submitting the same
// value for the same subject and category always lands on the same id, which
// turns duplicate submissions into in-place updates.
func ItemID(subjectDocumentID int, category Category, suggestedValue string) string {
	key := fmt.Sprintf("%d|%s|%s", subjectDocumentID, category, strings.ToLower(strings.TrimSpace(suggestedValue)))
	id, _ := odm.HashedKey(key)
	return id
}

// SchemaSuggestion is an ephemeral suggestion produced by a schema analysis
// call, consumed by the blocklist filter before it may become a PendingItem.
type SchemaSuggestion struct {
	Category   Category `json:"category"`
	Name       string   `json:"name"`
	Reasoning  string   `json:"reasoning"`
	Confidence float64  `json:"confidence"`
	SimilarTo  []string `json:"similar_to,omitempty"`
}

func (s SchemaSuggestion) SuggestionName() string { return s.Name }

func (s SchemaSuggestion) SuggestionScope() blocklist.Scope { return ScopeFor(s.Category) }

// ScopeFor maps a suggestion category to its blocklist scope. Categories
// without an entity scope of their own fall back to the global list.
func ScopeFor(c Category) blocklist.Scope {
	switch c {
	case CategoryCorrespondent, CategorySchemaCorrespondent:
		return blocklist.ScopeCorrespondent
	case CategoryDocumentType, CategorySchemaDocumentType:
		return blocklist.ScopeDocumentType
	case CategoryTag, CategorySchemaTag:
		return blocklist.ScopeTag
	default:
		return blocklist.ScopeGlobal
	}
}
