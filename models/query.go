package models

// QueryType labels an incoming question and drives retrieval parameters
type QueryType string

const (
	QueryTypeFactualLookup QueryType = "factual_lookup"
	QueryTypeNumeric       QueryType = "numeric"
	QueryTypeProcedural    QueryType = "procedural"
	QueryTypeComparative   QueryType = "comparative"
)

// QueryClassification is the result of classifying a question. TopK is the
// retrieval count recommended for the detected query type.
type QueryClassification struct {
	QueryType QueryType `json:"query_type"`
	TopK      int       `json:"top_k"`
	Reason    string    `json:"reason"`
}

// AnswerMode selects between free-form answering and compliance verdicts
type AnswerMode string

const (
	AnswerModeQA         AnswerMode = "qa"
	AnswerModeCompliance AnswerMode = "compliance"
)

// Confidence is a three-level grading of how well an answer is grounded
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Citation substantiates a claim in a generated answer with a real chunk
type Citation struct {
	Page    int    `json:"page"`
	Excerpt string `json:"excerpt"`
}

// GroundedResult is an answer or verdict constrained to retrieved evidence.
// GapDetected=true is a valid successful result meaning no grounding evidence
// exists; it is never an error.
type GroundedResult struct {
	AnswerOrOutcome string     `json:"answer"`
	Confidence      Confidence `json:"confidence"`
	Citations       []Citation `json:"citations"`
	GapDetected     bool       `json:"gap_detected"`
	Suggestion      string     `json:"suggestion,omitempty"`
	QueryType       QueryType  `json:"query_type,omitempty"`
}
