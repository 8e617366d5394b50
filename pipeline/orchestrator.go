package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/docpilot-ai/docpilot/blocklist"
	"github.com/docpilot-ai/docpilot/llm"
	"github.com/docpilot-ai/docpilot/paperless"
	"github.com/docpilot-ai/docpilot/review"
)

// Orchestrator drives one document through the classification pipeline. It
// re-derives the stage from the document's markers after every step, so the
// external marker set is the only pipeline state.
type Orchestrator struct {
	docs        DocumentStore
	catalog     EntityCatalog
	analyzer    llm.LLMClient
	verifier    llm.LLMClient
	queue       *review.Queue
	blocks      blocklist.Store
	context     ContextProvider
	vision      ImageRecognizer
	markers     MarkerMap
	maxAttempts int
}

// OrchestratorConfig wires the orchestrator's collaborators. Context and
// Vision are optional; zero Markers and MaxAttempts take defaults.
type OrchestratorConfig struct {
	Docs        DocumentStore
	Catalog     EntityCatalog
	Analyzer    llm.LLMClient
	Verifier    llm.LLMClient
	Queue       *review.Queue
	Blocks      blocklist.Store
	Context     ContextProvider
	Vision      ImageRecognizer
	Markers     MarkerMap
	MaxAttempts int
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	markers := cfg.Markers
	if markers == (MarkerMap{}) {
		markers = DefaultMarkerMap()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Orchestrator{
		docs:        cfg.Docs,
		catalog:     cfg.Catalog,
		analyzer:    cfg.Analyzer,
		verifier:    cfg.Verifier,
		queue:       cfg.Queue,
		blocks:      cfg.Blocks,
		context:     cfg.Context,
		vision:      cfg.Vision,
		markers:     markers,
		maxAttempts: maxAttempts,
	}
}

// Markers returns the marker map the orchestrator operates with.
func (o *Orchestrator) Markers() MarkerMap { return o.markers }

// ProcessDocument runs the document from its current stage to completion, a
// review pause, or an error. Progress is streamed to reporter as an ordered
// event sequence.
func (o *Orchestrator) ProcessDocument(ctx context.Context, documentID int, reporter Reporter) error {
	if reporter == nil {
		reporter = NoOpReporter{}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, err := o.docs.GetDocument(ctx, documentID)
		if err != nil {
			reporter.Send(NewError("", fmt.Sprintf("load document %d: %v", documentID, err)))
			return err
		}

		markers, err := o.docs.TagNames(ctx, doc)
		if err != nil {
			reporter.Send(NewError("", fmt.Sprintf("load markers for document %d: %v", documentID, err)))
			return err
		}

		stage := StageFor(markers, o.markers)
		logger.Info("processing document",
			zap.Int("documentId", documentID),
			zap.String("stage", stage.String()))

		switch stage {
		case StageProcessed:
			reporter.Send(NewPipelineComplete())
			return nil
		case StageSchemaReview:
			reporter.Send(NewPipelinePaused(fmt.Sprintf("document %d is waiting on schema review", documentID)))
			return nil
		}

		proceed, err := o.runStage(ctx, stage, doc, reporter)
		if err != nil {
			return err
		}
		if !proceed {
			return nil
		}
	}
}

func (o *Orchestrator) runStage(ctx context.Context, stage Stage, doc *paperless.Document, reporter Reporter) (bool, error) {
	switch stage {
	case StagePending:
		return o.stepOCR(ctx, doc, reporter)
	case StageOcrDone:
		return o.stepSchemaAnalysis(ctx, doc, reporter)
	case StageSchemaAnalysisDone:
		return o.stepCorrespondent(ctx, doc, reporter)
	case StageCorrespondentDone:
		return o.stepDocumentType(ctx, doc, reporter)
	case StageDocumentTypeDone:
		return o.stepTitle(ctx, doc, reporter)
	case StageTitleDone:
		return o.stepTags(ctx, doc, reporter)
	case StageTagsDone:
		return o.stepCustomFields(ctx, doc, reporter)
	case StageCustomFieldsDone:
		return o.stepFinalize(ctx, doc, reporter)
	default:
		return false, fmt.Errorf("no step for stage %s", stage)
	}
}

// loadLists snapshots the blocklist. A failed load degrades to empty lists so
// a storage hiccup never blocks classification.
func (o *Orchestrator) loadLists(ctx context.Context, reporter Reporter, step string) blocklist.Lists {
	blocks, err := o.blocks.List(ctx)
	if err != nil {
		logger.Log.Warn("blocklist load failed, filtering disabled for this step", zap.Error(err))
		reporter.Send(NewWarning(step, "blocklist unavailable, continuing unfiltered"))
		return blocklist.BuildLists(nil)
	}
	return blocklist.BuildLists(blocks)
}

// similarContext is a nil-safe wrapper around the optional context provider.
func (o *Orchestrator) similarContext(ctx context.Context, content string) []string {
	if o.context == nil {
		return nil
	}
	return o.context.SimilarContext(ctx, content)
}

// visibleTags strips workflow markers out of a tag name list.
func (o *Orchestrator) visibleTags(names []string) []string {
	markerSet := make(map[string]bool)
	for _, m := range o.markers.All() {
		markerSet[m] = true
	}

	var out []string
	for _, name := range names {
		if !markerSet[name] {
			out = append(out, name)
		}
	}
	return out
}

func entityID(entities []paperless.Entity, name string) (int, bool) {
	for _, e := range entities {
		if strings.EqualFold(e.Name, name) {
			return e.ID, true
		}
	}
	return 0, false
}

func entityNames(entities []paperless.Entity) []string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	return names
}
