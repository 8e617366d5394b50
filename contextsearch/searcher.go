package contextsearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/docpilot-ai/docpilot/db"
	"github.com/docpilot-ai/docpilot/llm"
	"github.com/docpilot-ai/docpilot/prompts"
)

const (
	defaultK      = 5
	numCandidates = 100
)

// Searcher looks up already-classified documents similar to the one being
// processed. Its output is advisory context for classification prompts; every
// failure degrades to an empty result instead of failing the pipeline.
type Searcher struct {
	embedder   llm.Embedder
	repository odm.OdmCollectionInterface[db.DocEmbeddingModel]
}

func NewSearcher(repository odm.OdmCollectionInterface[db.DocEmbeddingModel], embedder llm.Embedder) *Searcher {
	return &Searcher{embedder: embedder, repository: repository}
}

// SimilarContext returns one summary line per similar document, nearest first.
func (s *Searcher) SimilarContext(ctx context.Context, content string) []string {
	emb, err := s.embedder.Embed(ctx, prompts.Excerpt(content))
	if err != nil {
		logger.Log.Warn("context embed failed, continuing without context", zap.Error(err))
		return nil
	}

	hits, err := async.Await(s.repository.VectorSearch(ctx, emb, odm.VectorSearchParams{
		IndexName:     "docEmbeddingIndex",
		Path:          "embedding",
		K:             defaultK,
		NumCandidates: numCandidates,
	}))
	if err != nil {
		logger.Log.Warn("vector search failed, continuing without context", zap.Error(err))
		return nil
	}

	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		lines = append(lines, summaryLine(h.Doc))
	}
	return lines
}

// Index upserts one finished document into the similarity store.
func (s *Searcher) Index(ctx context.Context, documentID int, title, content, correspondent, documentType string, tags []string) error {
	emb, err := s.embedder.Embed(ctx, prompts.Excerpt(content))
	if err != nil {
		return fmt.Errorf("embed document %d: %w", documentID, err)
	}

	model := db.DocEmbeddingModel{
		DocID:         db.DocKey(documentID),
		DocumentID:    documentID,
		Title:         title,
		Correspondent: correspondent,
		DocumentType:  documentType,
		Tags:          tags,
		Embedding:     bson.NewVector(emb),
	}

	_, err = async.Await(s.repository.Save(ctx, model))
	return err
}

func summaryLine(doc db.DocEmbeddingModel) string {
	var sb strings.Builder
	sb.WriteString(doc.Title)

	var attrs []string
	if doc.Correspondent != "" {
		attrs = append(attrs, "correspondent: "+doc.Correspondent)
	}
	if doc.DocumentType != "" {
		attrs = append(attrs, "type: "+doc.DocumentType)
	}
	if len(doc.Tags) > 0 {
		attrs = append(attrs, "tags: "+strings.Join(doc.Tags, ", "))
	}
	if len(attrs) > 0 {
		sb.WriteString(" (" + strings.Join(attrs, "; ") + ")")
	}
	return sb.String()
}
