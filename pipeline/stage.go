package pipeline

// Stage is the derived position of a document in the classification pipeline.
// It is recomputed from the document's marker set on every read and never
// stored on its own.
type Stage int

const (
	StagePending Stage = iota
	StageOcrDone
	// StageSchemaReview is a fork off the main path: the document is parked
	// until its schema suggestions are resolved, after which it resumes at
	// StageSchemaAnalysisDone.
	StageSchemaReview
	StageSchemaAnalysisDone
	StageCorrespondentDone
	StageDocumentTypeDone
	StageTitleDone
	StageTagsDone
	StageCustomFieldsDone
	StageProcessed
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageOcrDone:
		return "ocr_done"
	case StageSchemaReview:
		return "schema_review"
	case StageSchemaAnalysisDone:
		return "schema_analysis_done"
	case StageCorrespondentDone:
		return "correspondent_done"
	case StageDocumentTypeDone:
		return "document_type_done"
	case StageTitleDone:
		return "title_done"
	case StageTagsDone:
		return "tags_done"
	case StageCustomFieldsDone:
		return "custom_fields_done"
	case StageProcessed:
		return "processed"
	default:
		return "unknown"
	}
}

// MarkerMap names the workflow marker that signals each stage transition.
// Markers live as plain tags on the external document store.
type MarkerMap struct {
	OcrDone            string
	SchemaReview       string
	SchemaAnalysisDone string
	CorrespondentDone  string
	DocumentTypeDone   string
	TitleDone          string
	TagsDone           string
	CustomFieldsDone   string
	Processed          string
}

func DefaultMarkerMap() MarkerMap {
	return MarkerMap{
		OcrDone:            "docpilot:ocr",
		SchemaReview:       "docpilot:schema-review",
		SchemaAnalysisDone: "docpilot:schema",
		CorrespondentDone:  "docpilot:correspondent",
		DocumentTypeDone:   "docpilot:doctype",
		TitleDone:          "docpilot:title",
		TagsDone:           "docpilot:tags",
		CustomFieldsDone:   "docpilot:custom-fields",
		Processed:          "docpilot:processed",
	}
}

// All returns every marker name, useful for excluding markers from the
// document's visible tag set.
func (m MarkerMap) All() []string {
	return []string{
		m.OcrDone, m.SchemaReview, m.SchemaAnalysisDone, m.CorrespondentDone,
		m.DocumentTypeDone, m.TitleDone, m.TagsDone, m.CustomFieldsDone, m.Processed,
	}
}

// StageFor derives the pipeline stage from an unordered marker set. Markers
// are checked from the latest stage backwards so stale intermediate markers
// left on a document cannot mask its real position. The schema-review fork is
// checked after the fully-resolved schema marker, since a document carries
// only one of the two at a time.
func StageFor(markers []string, m MarkerMap) Stage {
	set := make(map[string]bool, len(markers))
	for _, marker := range markers {
		set[marker] = true
	}

	switch {
	case set[m.Processed]:
		return StageProcessed
	case set[m.CustomFieldsDone]:
		return StageCustomFieldsDone
	case set[m.TagsDone]:
		return StageTagsDone
	case set[m.TitleDone]:
		return StageTitleDone
	case set[m.DocumentTypeDone]:
		return StageDocumentTypeDone
	case set[m.CorrespondentDone]:
		return StageCorrespondentDone
	case set[m.SchemaAnalysisDone]:
		return StageSchemaAnalysisDone
	case set[m.SchemaReview]:
		return StageSchemaReview
	case set[m.OcrDone]:
		return StageOcrDone
	default:
		return StagePending
	}
}
