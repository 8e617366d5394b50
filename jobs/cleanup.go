package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/docpilot-ai/docpilot/pipeline"
	"github.com/docpilot-ai/docpilot/review"
	"github.com/docpilot-ai/docpilot/similarity"
)

// DefaultCleanupThreshold is the similarity ratio above which two entity
// names are proposed for a merge.
const DefaultCleanupThreshold = 0.75

// Cleanup clusters near-duplicate entity names across the live taxonomy and
// the pending review queue, and turns each cluster into one merge suggestion.
type Cleanup struct {
	catalog   pipeline.EntityCatalog
	queue     *review.Queue
	threshold float64
}

func NewCleanup(catalog pipeline.EntityCatalog, queue *review.Queue, threshold float64) *Cleanup {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultCleanupThreshold
	}
	return &Cleanup{catalog: catalog, queue: queue, threshold: threshold}
}

func (c *Cleanup) Run(ctx context.Context, tracker *Tracker) error {
	items, err := c.collect(ctx)
	if err != nil {
		return err
	}

	groups := similarity.FindGroups(items, c.threshold)
	tracker.SetTotal(len(groups))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		tracker.StartItem(0, group.RecommendedName)

		item := review.PendingItem{
			Category:       review.CategorySchemaCleanup,
			SuggestedValue: group.RecommendedName,
			Reasoning: fmt.Sprintf("%d near-duplicate %s names: %s",
				len(group.MemberNames), group.Category, strings.Join(group.MemberNames, ", ")),
			Metadata: map[string]string{
				"category": group.Category,
				"members":  strings.Join(group.MemberNames, "|"),
			},
		}
		if len(group.MemberItemIDs) > 0 {
			item.Metadata["memberItems"] = strings.Join(group.MemberItemIDs, "|")
		}

		if _, err := c.queue.Add(ctx, item); err != nil {
			return err
		}
		tracker.Count(group.Category, 1)
		tracker.ItemDone()
	}
	return nil
}

// collect gathers every groupable name: live taxonomy entities plus pending
// suggestions. Schema bootstrap categories are excluded by the grouper itself.
func (c *Cleanup) collect(ctx context.Context) ([]similarity.Item, error) {
	var items []similarity.Item

	correspondents, err := c.catalog.Correspondents(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range correspondents {
		items = append(items, similarity.Item{Name: e.Name, Category: "correspondent"})
	}

	documentTypes, err := c.catalog.DocumentTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range documentTypes {
		items = append(items, similarity.Item{Name: e.Name, Category: "document_type"})
	}

	tags, err := c.catalog.Tags(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range tags {
		items = append(items, similarity.Item{Name: e.Name, Category: "tag"})
	}

	pending, err := c.queue.GetAll(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		items = append(items, similarity.Item{
			Name:      p.SuggestedValue,
			ItemID:    p.ID,
			Category:  string(p.Category),
			SubjectID: p.SubjectDocumentID,
		})
	}

	return items, nil
}
