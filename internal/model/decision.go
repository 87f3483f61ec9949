package model

// LoanStatus is the tri-state outcome of a loan decision.
type LoanStatus string

// Loan status constants.
const (
	StatusApproved   LoanStatus = "approved"
	StatusProcessing LoanStatus = "processing"
	StatusRejected   LoanStatus = "rejected"
)

// StatusForRate derives the decision status from an acceptance rate.
func StatusForRate(rate float64) LoanStatus {
	switch {
	case rate >= 70:
		return StatusApproved
	case rate >= 50:
		return StatusProcessing
	default:
		return StatusRejected
	}
}

// BehaviorNote summarizes how stored transaction behavior influenced a
// decision, or explains that no history was available.
type BehaviorNote struct {
	Rating  string `json:"rating"`
	Impact  string `json:"impact,omitempty"`
	Message string `json:"message,omitempty"`
	Score   int    `json:"score,omitempty"`
}

// Feedback is the structured, human-readable explanation attached to a
// decision.
type Feedback struct {
	Overall           string        `json:"overall"`
	Strengths         []string      `json:"strengths"`
	Concerns          []string      `json:"concerns"`
	Recommendations   []string      `json:"recommendations"`
	FinancialBehavior *BehaviorNote `json:"financial_behavior,omitempty"`
}

// ScoreResult is the final decision for one application. It is computed
// per request and never mutated after creation.
type ScoreResult struct {
	Feedback       Feedback   `json:"feedback"`
	MLProbability  float64    `json:"ml_probability"`
	AcceptanceRate float64    `json:"acceptance_rate"`
	Status         LoanStatus `json:"status"`
}
