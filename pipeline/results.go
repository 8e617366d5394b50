package pipeline

// StepStatus is the closed set of classification step outcomes. Callers
// switch over it instead of probing loosely-shaped maps.
type StepStatus int

const (
	StepConfirmed StepStatus = iota
	StepNeedsReview
	StepSkipped
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepConfirmed:
		return "confirmed"
	case StepNeedsReview:
		return "needs_review"
	case StepSkipped:
		return "skipped"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepOutcome summarizes one pipeline step run.
type StepOutcome struct {
	Step       string     `json:"step"`
	Status     StepStatus `json:"status"`
	Value      string     `json:"value,omitempty"`
	Values     []string   `json:"values,omitempty"`
	Reasoning  string     `json:"reasoning,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Attempts   int        `json:"attempts,omitempty"`
	Feedback   string     `json:"feedback,omitempty"`
}

// Step names as they appear in progress events.
const (
	StepNameOCR            = "ocr"
	StepNameSchemaAnalysis = "schema_analysis"
	StepNameCorrespondent  = "correspondent"
	StepNameDocumentType   = "document_type"
	StepNameTitle          = "title"
	StepNameTags           = "tags"
	StepNameCustomFields   = "custom_fields"
	StepNameFinalize       = "finalize"
)
