package types

// ValidationResult is the validation stage's judgment on an incoming request:
// safety screening first, then well-formedness, each with model confidence.
type ValidationResult struct {
	IsSafe          bool     `json:"is_safe"`
	RiskFlags       []string `json:"risk_flags"`
	IsValid         bool     `json:"is_valid"`
	InvalidReason   string   `json:"invalid_reason,omitempty"`
	ConfidenceScore float64  `json:"confidence_score"`
	Reasoning       string   `json:"reasoning"`
}

// Accepted reports whether the request may proceed past validation at the
// given confidence threshold.
func (r ValidationResult) Accepted(threshold float64) bool {
	return r.IsSafe && r.IsValid && r.ConfidenceScore >= threshold
}

// ClassificationResult is the classification stage's intent judgment: whether
// the text carries an actionable calendar intent, which operation it names,
// and whether it addresses every event in a window rather than one.
type ClassificationResult struct {
	HasIntent       bool        `json:"has_intent"`
	RequestType     RequestType `json:"request_type"`
	IsBulkOperation bool        `json:"is_bulk_operation"`
	ConfidenceScore float64     `json:"confidence_score"`
	Reasoning       string      `json:"reasoning"`
}

// Accepted reports whether the classification clears the confidence gate with
// an actionable intent.
func (r ClassificationResult) Accepted(threshold float64) bool {
	return r.HasIntent && r.RequestType.Actionable() && r.ConfidenceScore >= threshold
}
