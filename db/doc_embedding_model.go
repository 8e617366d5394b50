package db

import (
	"strconv"

	"github.com/SaiNageswarS/go-api-boot/odm"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/docpilot-ai/docpilot/llm"
)

// DocEmbeddingModel holds one document's embedding plus the fields the
// similar-context lookup surfaces to classification prompts.
type DocEmbeddingModel struct {
	DocID         string      `json:"docId" bson:"_id"`
	DocumentID    int         `json:"documentId" bson:"documentId"`
	Title         string      `json:"title" bson:"title"`
	Correspondent string      `json:"correspondent,omitempty" bson:"correspondent,omitempty"`
	DocumentType  string      `json:"documentType,omitempty" bson:"documentType,omitempty"`
	Tags          []string    `json:"tags,omitempty" bson:"tags,omitempty"`
	Embedding     bson.Vector `json:"-" bson:"embedding"`
}

func (m DocEmbeddingModel) Id() string { return m.DocID }

func (m DocEmbeddingModel) CollectionName() string { return "doc_embeddings" }

// Indexes
func (m DocEmbeddingModel) VectorIndexSpecs() []odm.VectorIndexSpec {
	return []odm.VectorIndexSpec{
		{
			Name:          "docEmbeddingIndex",
			Path:          "embedding",
			Type:          "vector",
			NumDimensions: llm.EmbeddingDimensions,
			Similarity:    "cosine",
			Quantization:  "scalar",
		},
	}
}

// DocKey converts a paperless document id to the model's string key.
func DocKey(documentID int) string { return strconv.Itoa(documentID) }
