package pipeline

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
	"github.com/docpilot-ai/docpilot/prompts"
	"github.com/docpilot-ai/docpilot/review"
)

const ocrPrompt = "Extract all text from this document image. Return only the text, no commentary."

func (o *Orchestrator) fail(reporter Reporter, step string, err error) (bool, error) {
	reporter.Send(NewError(step, err.Error()))
	return false, err
}

func (o *Orchestrator) stepOCR(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	reporter.Send(NewStepStart(StepNameOCR))

	if strings.TrimSpace(doc.Content) != "" {
		if err := o.docs.AddTag(ctx, doc.ID, o.markers.OcrDone); err != nil {
			return o.fail(reporter, StepNameOCR, err)
		}
		reporter.Send(NewStepComplete(StepNameOCR, StepOutcome{Step: StepNameOCR, Status: StepSkipped}))
		return true, nil
	}

	if o.vision == nil {
		reporter.Send(NewWarning(StepNameOCR, "no vision model configured, leaving content empty"))
		if err := o.docs.AddTag(ctx, doc.ID, o.markers.OcrDone); err != nil {
			return o.fail(reporter, StepNameOCR, err)
		}
		reporter.Send(NewStepComplete(StepNameOCR, StepOutcome{Step: StepNameOCR, Status: StepSkipped}))
		return true, nil
	}

	image, err := o.docs.Download(ctx, doc.ID)
	if err != nil {
		return o.fail(reporter, StepNameOCR, err)
	}

	text, err := o.vision.RecognizeImage(ctx, image, ocrPrompt)
	if err != nil {
		return o.fail(reporter, StepNameOCR, err)
	}

	if err := o.docs.UpdateFields(ctx, doc.ID, map[string]any{"content": text}); err != nil {
		return o.fail(reporter, StepNameOCR, err)
	}
	if err := o.docs.AddTag(ctx, doc.ID, o.markers.OcrDone); err != nil {
		return o.fail(reporter, StepNameOCR, err)
	}

	reporter.Send(NewStepComplete(StepNameOCR, StepOutcome{Step: StepNameOCR, Status: StepConfirmed}))
	return true, nil
}

func (o *Orchestrator) stepSchemaAnalysis(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	reporter.Send(NewStepStart(StepNameSchemaAnalysis))

	existing, err := o.existingEntities(ctx)
	if err != nil {
		return o.fail(reporter, StepNameSchemaAnalysis, err)
	}

	already, err := o.pendingSchemaNames(ctx)
	if err != nil {
		return o.fail(reporter, StepNameSchemaAnalysis, err)
	}

	res, err := async.Await(prompts.ScanSchema(ctx, o.analyzer, prompts.SchemaScanInput{
		Title:            doc.Title,
		Content:          doc.Content,
		Existing:         existing,
		AlreadySuggested: already,
	}))
	if err != nil {
		return o.fail(reporter, StepNameSchemaAnalysis, err)
	}

	lists := o.loadLists(ctx, reporter, StepNameSchemaAnalysis)

	var suggestions []review.SchemaSuggestion
	for _, s := range res.Suggestions {
		category, ok := schemaCategory(s.Category)
		if !ok {
			continue
		}
		if nameExists(existing[s.Category], s.Name) {
			continue
		}
		suggestions = append(suggestions, review.SchemaSuggestion{
			Category:   category,
			Name:       s.Name,
			Reasoning:  s.Reasoning,
			Confidence: s.Confidence,
			SimilarTo:  s.SimilarTo,
		})
	}
	suggestions = blocklist.Filter(suggestions, lists)

	if res.Description != "" {
		_, err := o.queue.Add(ctx, review.PendingItem{
			SubjectDocumentID: doc.ID,
			SubjectTitle:      doc.Title,
			Category:          review.CategoryMetadataDescription,
			SuggestedValue:    res.Description,
		})
		if err != nil {
			return o.fail(reporter, StepNameSchemaAnalysis, err)
		}
	}

	if len(suggestions) == 0 {
		if err := o.docs.AddTag(ctx, doc.ID, o.markers.SchemaAnalysisDone); err != nil {
			return o.fail(reporter, StepNameSchemaAnalysis, err)
		}
		reporter.Send(NewStepComplete(StepNameSchemaAnalysis,
			StepOutcome{Step: StepNameSchemaAnalysis, Status: StepConfirmed}))
		return true, nil
	}

	names := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		item := review.PendingItem{
			SubjectDocumentID: doc.ID,
			SubjectTitle:      doc.Title,
			Category:          s.Category,
			SuggestedValue:    s.Name,
			Reasoning:         s.Reasoning,
			Confidence:        s.Confidence,
			ResumeMarker:      o.markers.SchemaAnalysisDone,
		}
		if len(s.SimilarTo) > 0 {
			item.Metadata = map[string]string{"similarTo": strings.Join(s.SimilarTo, ", ")}
		}
		if _, err := o.queue.Add(ctx, item); err != nil {
			return o.fail(reporter, StepNameSchemaAnalysis, err)
		}
		names = append(names, s.Name)
	}

	if err := o.docs.AddTag(ctx, doc.ID, o.markers.SchemaReview); err != nil {
		return o.fail(reporter, StepNameSchemaAnalysis, err)
	}

	outcome := StepOutcome{Step: StepNameSchemaAnalysis, Status: StepNeedsReview, Values: names}
	reporter.Send(NewNeedsReview(StepNameSchemaAnalysis, outcome))
	reporter.Send(NewPipelinePaused(fmt.Sprintf("document %d parked for schema review (%d suggestions)", doc.ID, len(names))))
	return false, nil
}

// classifyParams drives one single-valued classification step through the
// confirmation loop.
type classifyParams struct {
	step       string
	category   review.Category
	marker     string
	scope      blocklist.Scope // ScopeGlobal disables the pre-confirm block check
	candidates []string
	suggest    func(context.Context, llm.LLMClient, prompts.ClassifyInput) <-chan async.Result[*prompts.ClassificationResult]
	// apply commits the confirmed value. applied=false defers a novel value
	// to review instead.
	apply func(ctx context.Context, value string) (applied bool, err error)
}

func (o *Orchestrator) classifyStep(ctx context.Context, doc *paperless.Document, reporter Reporter, p classifyParams) (bool, error) {
	reporter.Send(NewStepStart(p.step))

	lists := o.loadLists(ctx, reporter, p.step)
	similar := o.similarContext(ctx, doc.Content)

	analyze := func(ctx context.Context, feedback string) (*prompts.ClassificationResult, error) {
		return async.Await(p.suggest(ctx, o.analyzer, prompts.ClassifyInput{
			Title:          doc.Title,
			Content:        doc.Content,
			Candidates:     p.candidates,
			Feedback:       feedback,
			SimilarContext: similar,
		}))
	}

	confirm := func(ctx context.Context, result *prompts.ClassificationResult) (Verdict, error) {
		if p.scope != blocklist.ScopeGlobal && lists.Blocked(result.Value, p.scope) {
			return Verdict{Feedback: fmt.Sprintf("%q was rejected before; pick a different value", result.Value)}, nil
		}

		verdict, err := async.Await(prompts.ConfirmSuggestion(ctx, o.verifier, prompts.ConfirmInput{
			Step:      p.step,
			Title:     doc.Title,
			Content:   doc.Content,
			Proposed:  result.Value,
			Reasoning: result.Reasoning,
		}))
		if err != nil {
			return Verdict{}, err
		}
		return Verdict{Confirmed: verdict.Confirmed, Feedback: verdict.Feedback}, nil
	}

	out, err := RunLoop(ctx, o.maxAttempts, analyze, confirm)
	if err != nil {
		return o.fail(reporter, p.step, err)
	}

	outcome := StepOutcome{
		Step:       p.step,
		Status:     StepNeedsReview,
		Value:      out.Result.Value,
		Reasoning:  out.Result.Reasoning,
		Confidence: out.Result.Confidence,
		Attempts:   out.Attempts,
		Feedback:   out.LastFeedback,
	}

	if out.Confirmed {
		applied, err := p.apply(ctx, out.Result.Value)
		if err != nil {
			return o.fail(reporter, p.step, err)
		}
		if applied {
			if err := o.docs.AddTag(ctx, doc.ID, p.marker); err != nil {
				return o.fail(reporter, p.step, err)
			}
			outcome.Status = StepConfirmed
			outcome.Feedback = ""
			reporter.Send(NewStepComplete(p.step, outcome))
			return true, nil
		}
		outcome.Feedback = fmt.Sprintf("%q is not an existing entity", out.Result.Value)
	}

	item := review.PendingItem{
		SubjectDocumentID: doc.ID,
		SubjectTitle:      doc.Title,
		Category:          p.category,
		SuggestedValue:    out.Result.Value,
		Reasoning:         out.Result.Reasoning,
		Alternatives:      out.Result.Alternatives,
		Attempts:          out.Attempts,
		LastFeedback:      outcome.Feedback,
		Confidence:        out.Result.Confidence,
		ResumeMarker:      p.marker,
	}
	if _, err := o.queue.Add(ctx, item); err != nil {
		return o.fail(reporter, p.step, err)
	}

	reporter.Send(NewNeedsReview(p.step, outcome))
	reporter.Send(NewPipelinePaused(fmt.Sprintf("%s for document %d needs review", p.step, doc.ID)))
	return false, nil
}

func (o *Orchestrator) stepCorrespondent(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	entities, err := o.catalog.Correspondents(ctx)
	if err != nil {
		return o.fail(reporter, StepNameCorrespondent, err)
	}

	return o.classifyStep(ctx, doc, reporter, classifyParams{
		step:       StepNameCorrespondent,
		category:   review.CategoryCorrespondent,
		marker:     o.markers.CorrespondentDone,
		scope:      blocklist.ScopeCorrespondent,
		candidates: entityNames(entities),
		suggest:    prompts.SuggestCorrespondent,
		apply: func(ctx context.Context, value string) (bool, error) {
			id, ok := entityID(entities, value)
			if !ok {
				return false, nil
			}
			return true, o.docs.UpdateFields(ctx, doc.ID, map[string]any{"correspondent": id})
		},
	})
}

func (o *Orchestrator) stepDocumentType(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	entities, err := o.catalog.DocumentTypes(ctx)
	if err != nil {
		return o.fail(reporter, StepNameDocumentType, err)
	}

	return o.classifyStep(ctx, doc, reporter, classifyParams{
		step:       StepNameDocumentType,
		category:   review.CategoryDocumentType,
		marker:     o.markers.DocumentTypeDone,
		scope:      blocklist.ScopeDocumentType,
		candidates: entityNames(entities),
		suggest:    prompts.SuggestDocumentType,
		apply: func(ctx context.Context, value string) (bool, error) {
			id, ok := entityID(entities, value)
			if !ok {
				return false, nil
			}
			return true, o.docs.UpdateFields(ctx, doc.ID, map[string]any{"document_type": id})
		},
	})
}

func (o *Orchestrator) stepTitle(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	return o.classifyStep(ctx, doc, reporter, classifyParams{
		step:     StepNameTitle,
		category: review.CategoryTitle,
		marker:   o.markers.TitleDone,
		scope:    blocklist.ScopeGlobal,
		suggest:  prompts.SuggestTitle,
		apply: func(ctx context.Context, value string) (bool, error) {
			return true, o.docs.UpdateFields(ctx, doc.ID, map[string]any{"title": value})
		},
	})
}

func (o *Orchestrator) stepTags(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	reporter.Send(NewStepStart(StepNameTags))

	tagEntities, err := o.catalog.Tags(ctx)
	if err != nil {
		return o.fail(reporter, StepNameTags, err)
	}
	candidates := o.visibleTags(entityNames(tagEntities))
	lists := o.loadLists(ctx, reporter, StepNameTags)

	analyze := func(ctx context.Context, feedback string) (*prompts.TagsResult, error) {
		res, err := async.Await(prompts.SuggestTags(ctx, o.analyzer, prompts.ClassifyInput{
			Title:      doc.Title,
			Content:    doc.Content,
			Candidates: candidates,
			Feedback:   feedback,
		}))
		if err != nil {
			return nil, err
		}
		res.Tags = filterBlockedTags(res.Tags, lists)
		return res, nil
	}

	confirm := func(ctx context.Context, res *prompts.TagsResult) (Verdict, error) {
		if len(res.Tags) == 0 {
			return Verdict{Confirmed: true}, nil
		}

		verdict, err := async.Await(prompts.ConfirmSuggestion(ctx, o.verifier, prompts.ConfirmInput{
			Step:      StepNameTags,
			Title:     doc.Title,
			Content:   doc.Content,
			Proposed:  strings.Join(suggestedTagNames(res.Tags), ", "),
			Reasoning: tagReasonings(res.Tags),
		}))
		if err != nil {
			return Verdict{}, err
		}
		return Verdict{Confirmed: verdict.Confirmed, Feedback: verdict.Feedback}, nil
	}

	out, err := RunLoop(ctx, o.maxAttempts, analyze, confirm)
	if err != nil {
		return o.fail(reporter, StepNameTags, err)
	}

	names := suggestedTagNames(out.Result.Tags)
	outcome := StepOutcome{
		Step:     StepNameTags,
		Status:   StepNeedsReview,
		Values:   names,
		Attempts: out.Attempts,
		Feedback: out.LastFeedback,
	}

	deferred := out.Result.Tags
	if out.Confirmed {
		deferred = nil
		for _, t := range out.Result.Tags {
			if _, ok := entityID(tagEntities, t.Name); !ok {
				deferred = append(deferred, t)
				continue
			}
			if err := o.docs.AddTag(ctx, doc.ID, t.Name); err != nil {
				return o.fail(reporter, StepNameTags, err)
			}
		}

		if len(deferred) == 0 {
			if err := o.docs.AddTag(ctx, doc.ID, o.markers.TagsDone); err != nil {
				return o.fail(reporter, StepNameTags, err)
			}
			outcome.Status = StepConfirmed
			if len(names) == 0 {
				outcome.Status = StepSkipped
			}
			outcome.Feedback = ""
			reporter.Send(NewStepComplete(StepNameTags, outcome))
			return true, nil
		}
	}

	for _, t := range deferred {
		item := review.PendingItem{
			SubjectDocumentID: doc.ID,
			SubjectTitle:      doc.Title,
			Category:          review.CategoryTag,
			SuggestedValue:    t.Name,
			Reasoning:         t.Reasoning,
			Attempts:          out.Attempts,
			LastFeedback:      out.LastFeedback,
			Confidence:        t.Confidence,
			ResumeMarker:      o.markers.TagsDone,
		}
		if _, err := o.queue.Add(ctx, item); err != nil {
			return o.fail(reporter, StepNameTags, err)
		}
	}

	reporter.Send(NewNeedsReview(StepNameTags, outcome))
	reporter.Send(NewPipelinePaused(fmt.Sprintf("tags for document %d need review", doc.ID)))
	return false, nil
}

func (o *Orchestrator) stepCustomFields(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	reporter.Send(NewStepStart(StepNameCustomFields))

	fields, err := o.catalog.CustomFields(ctx)
	if err != nil {
		return o.fail(reporter, StepNameCustomFields, err)
	}

	if len(fields) == 0 {
		if err := o.docs.AddTag(ctx, doc.ID, o.markers.CustomFieldsDone); err != nil {
			return o.fail(reporter, StepNameCustomFields, err)
		}
		reporter.Send(NewStepComplete(StepNameCustomFields,
			StepOutcome{Step: StepNameCustomFields, Status: StepSkipped}))
		return true, nil
	}

	fieldNames := make([]string, 0, len(fields))
	for _, f := range fields {
		fieldNames = append(fieldNames, f.Name)
	}

	analyze := func(ctx context.Context, feedback string) (*prompts.CustomFieldsResult, error) {
		return async.Await(prompts.SuggestCustomFields(ctx, o.analyzer, prompts.ClassifyInput{
			Title:    doc.Title,
			Content:  doc.Content,
			Fields:   fieldNames,
			Feedback: feedback,
		}))
	}

	confirm := func(ctx context.Context, res *prompts.CustomFieldsResult) (Verdict, error) {
		if len(res.Fields) == 0 {
			return Verdict{Confirmed: true}, nil
		}

		verdict, err := async.Await(prompts.ConfirmSuggestion(ctx, o.verifier, prompts.ConfirmInput{
			Step:      StepNameCustomFields,
			Title:     doc.Title,
			Content:   doc.Content,
			Proposed:  formatFieldValues(res.Fields),
			Reasoning: res.Reasoning,
		}))
		if err != nil {
			return Verdict{}, err
		}
		return Verdict{Confirmed: verdict.Confirmed, Feedback: verdict.Feedback}, nil
	}

	out, err := RunLoop(ctx, o.maxAttempts, analyze, confirm)
	if err != nil {
		return o.fail(reporter, StepNameCustomFields, err)
	}

	outcome := StepOutcome{
		Step:       StepNameCustomFields,
		Status:     StepNeedsReview,
		Value:      formatFieldValues(out.Result.Fields),
		Reasoning:  out.Result.Reasoning,
		Confidence: out.Result.Confidence,
		Attempts:   out.Attempts,
		Feedback:   out.LastFeedback,
	}

	if out.Confirmed {
		if len(out.Result.Fields) > 0 {
			payload := mergeCustomFields(doc.CustomFields, out.Result.Fields, fields)
			if err := o.docs.UpdateFields(ctx, doc.ID, map[string]any{"custom_fields": payload}); err != nil {
				return o.fail(reporter, StepNameCustomFields, err)
			}
		}
		if err := o.docs.AddTag(ctx, doc.ID, o.markers.CustomFieldsDone); err != nil {
			return o.fail(reporter, StepNameCustomFields, err)
		}
		outcome.Status = StepConfirmed
		if len(out.Result.Fields) == 0 {
			outcome.Status = StepSkipped
		}
		outcome.Feedback = ""
		reporter.Send(NewStepComplete(StepNameCustomFields, outcome))
		return true, nil
	}

	for name, value := range out.Result.Fields {
		item := review.PendingItem{
			ID:                review.ItemID(doc.ID, review.CategoryCustomField, name+"|"+value),
			SubjectDocumentID: doc.ID,
			SubjectTitle:      doc.Title,
			Category:          review.CategoryCustomField,
			SuggestedValue:    value,
			Reasoning:         out.Result.Reasoning,
			Attempts:          out.Attempts,
			LastFeedback:      out.LastFeedback,
			Confidence:        out.Result.Confidence,
			Metadata:          map[string]string{"field": name},
			ResumeMarker:      o.markers.CustomFieldsDone,
		}
		if _, err := o.queue.Add(ctx, item); err != nil {
			return o.fail(reporter, StepNameCustomFields, err)
		}
	}

	reporter.Send(NewNeedsReview(StepNameCustomFields, outcome))
	reporter.Send(NewPipelinePaused(fmt.Sprintf("custom fields for document %d need review", doc.ID)))
	return false, nil
}

func (o *Orchestrator) stepFinalize(ctx context.Context, doc *paperless.Document, reporter Reporter) (bool, error) {
	reporter.Send(NewStepStart(StepNameFinalize))

	if o.context != nil {
		correspondent, documentType := o.resolveEntityNames(ctx, doc)
		tagNames, err := o.docs.TagNames(ctx, doc)
		if err != nil {
			tagNames = nil
		}

		err = o.context.Index(ctx, doc.ID, doc.Title, doc.Content, correspondent, documentType, o.visibleTags(tagNames))
		if err != nil {
			logger.Log.Warn("similarity index update failed", zap.Int("documentId", doc.ID), zap.Error(err))
			reporter.Send(NewWarning(StepNameFinalize, "similarity index update failed"))
		}
	}

	if err := o.docs.AddTag(ctx, doc.ID, o.markers.Processed); err != nil {
		return o.fail(reporter, StepNameFinalize, err)
	}

	reporter.Send(NewStepComplete(StepNameFinalize,
		StepOutcome{Step: StepNameFinalize, Status: StepConfirmed}))
	return true, nil
}

func (o *Orchestrator) resolveEntityNames(ctx context.Context, doc *paperless.Document) (correspondent, documentType string) {
	if doc.Correspondent != nil {
		if entities, err := o.catalog.Correspondents(ctx); err == nil {
			for _, e := range entities {
				if e.ID == *doc.Correspondent {
					correspondent = e.Name
					break
				}
			}
		}
	}
	if doc.DocumentType != nil {
		if entities, err := o.catalog.DocumentTypes(ctx); err == nil {
			for _, e := range entities {
				if e.ID == *doc.DocumentType {
					documentType = e.Name
					break
				}
			}
		}
	}
	return correspondent, documentType
}

func (o *Orchestrator) existingEntities(ctx context.Context) (map[string][]string, error) {
	correspondents, err := o.catalog.Correspondents(ctx)
	if err != nil {
		return nil, err
	}
	documentTypes, err := o.catalog.DocumentTypes(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := o.catalog.Tags(ctx)
	if err != nil {
		return nil, err
	}
	fields, err := o.catalog.CustomFields(ctx)
	if err != nil {
		return nil, err
	}

	fieldNames := make([]string, 0, len(fields))
	for _, f := range fields {
		fieldNames = append(fieldNames, f.Name)
	}

	return map[string][]string{
		"correspondent": entityNames(correspondents),
		"document_type": entityNames(documentTypes),
		"tag":           o.visibleTags(entityNames(tags)),
		"custom_field":  fieldNames,
	}, nil
}

func (o *Orchestrator) pendingSchemaNames(ctx context.Context) ([]string, error) {
	items, err := o.queue.GetAll(ctx, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, item := range items {
		if review.IsSchemaCategory(item.Category) {
			names = append(names, item.SuggestedValue)
		}
	}
	return names, nil
}

func schemaCategory(category string) (review.Category, bool) {
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

func nameExists(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func filterBlockedTags(tags []prompts.TagSuggestion, lists blocklist.Lists) []prompts.TagSuggestion {
	var out []prompts.TagSuggestion
	for _, t := range tags {
		if lists.Blocked(t.Name, blocklist.ScopeTag) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func suggestedTagNames(tags []prompts.TagSuggestion) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func tagReasonings(tags []prompts.TagSuggestion) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, t.Name+": "+t.Reasoning)
	}
	return strings.Join(parts, "; ")
}

func formatFieldValues(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for name, value := range fields {
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, ", ")
}

// mergeCustomFields overlays suggested values on a document's existing field
// instances, matching field definitions by name. Unknown field names are
// dropped.
func mergeCustomFields(existing []paperless.CustomFieldValue, suggested map[string]string, defs []paperless.CustomField) []paperless.CustomFieldValue {
	idByName := make(map[string]int, len(defs))
	for _, def := range defs {
		idByName[strings.ToLower(def.Name)] = def.ID
	}

	merged := append([]paperless.CustomFieldValue{}, existing...)
	for name, value := range suggested {
		id, ok := idByName[strings.ToLower(name)]
		if !ok {
			continue
		}

		replaced := false
		for i := range merged {
			if merged[i].Field == id {
				merged[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, paperless.CustomFieldValue{Field: id, Value: value})
		}
	}
	return merged
}
