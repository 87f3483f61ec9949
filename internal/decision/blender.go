package decision

import (
	"github.com/verdict-finance/verdict/internal/model"
)

// Behavior-driven adjustments to the acceptance rate.
const (
	goodBehaviorBonus  = 10.0
	badBehaviorPenalty = 15.0
)

// Overall feedback messages, keyed by the same 70/50 breakpoints as the
// decision status.
const (
	overallStrong = "Your loan application shows strong financial health and has a high probability of approval."
	overallReview = "Your application is under review. Some improvements could increase approval chances."
	overallWeak   = "Your application needs significant improvement before approval can be considered."
)

// DecisionMessages are the user-facing summaries per final status.
var DecisionMessages = map[model.LoanStatus]string{
	model.StatusApproved:   "Congratulations! Your loan application has high approval chances.",
	model.StatusProcessing: "Your application is under review. We may need additional information.",
	model.StatusRejected:   "Unfortunately, your application does not meet current criteria. Please review feedback.",
}

// Blender merges the heuristic acceptance rate with the applicant's most
// recent behavior analysis into a final ScoreResult.
type Blender struct{}

// NewBlender creates a decision blender.
func NewBlender() *Blender {
	return &Blender{}
}

// Decide produces the final decision. Feedback is generated from the raw
// features, the model probability, and the PRE-behavior acceptance rate;
// the behavior adjustment then moves the rate, and the status is derived
// from the post-adjustment value.
func (b *Blender) Decide(features model.ApplicantFeatures, mlProbability, acceptanceRate float64, behavior *model.BehaviorResult) model.ScoreResult {
	feedback := b.generateFeedback(features, mlProbability, acceptanceRate)

	finalRate := acceptanceRate
	if behavior != nil {
		switch behavior.Rating {
		case model.RatingGood:
			finalRate += goodBehaviorBonus
		case model.RatingBad:
			finalRate -= badBehaviorPenalty
		case model.RatingAverage:
			// No adjustment.
		}

		impact := "negative"
		if behavior.Rating == model.RatingGood {
			impact = "positive"
		} else if behavior.Rating == model.RatingAverage {
			impact = "neutral"
		}
		feedback.FinancialBehavior = &model.BehaviorNote{
			Rating: string(behavior.Rating),
			Score:  behavior.TotalScore,
			Impact: impact,
		}
	} else {
		feedback.FinancialBehavior = &model.BehaviorNote{
			Rating:  "not_available",
			Message: "Upload transaction history for better evaluation",
		}
	}

	finalRate = round2(clampRate(finalRate))

	return model.ScoreResult{
		MLProbability:  mlProbability,
		AcceptanceRate: finalRate,
		Status:         model.StatusForRate(finalRate),
		Feedback:       feedback,
	}
}

func (b *Blender) generateFeedback(features model.ApplicantFeatures, mlProbability, acceptanceRate float64) model.Feedback {
	feedback := model.Feedback{
		Strengths:       []string{},
		Concerns:        []string{},
		Recommendations: []string{},
	}

	annualIncome := features.MonthlyIncome * 12
	if annualIncome < 1 {
		annualIncome = 1
	}
	monthlyIncome := features.MonthlyIncome
	if monthlyIncome < 1 {
		monthlyIncome = 1
	}

	debtToIncome := features.TotalDebtAmount / annualIncome
	emiToIncome := features.MonthlyEMIs / monthlyIncome

	switch {
	case acceptanceRate >= 70:
		feedback.Overall = overallStrong
	case acceptanceRate >= 50:
		feedback.Overall = overallReview
	default:
		feedback.Overall = overallWeak
	}

	if features.TotalAssets > features.TotalDebtAmount {
		feedback.Strengths = append(feedback.Strengths, "Strong asset-to-debt ratio")
	}
	if emiToIncome < 0.3 {
		feedback.Strengths = append(feedback.Strengths, "Manageable EMI obligations")
	}
	if features.NumDebts <= 2 {
		feedback.Strengths = append(feedback.Strengths, "Low number of existing debts")
	}

	if debtToIncome > 0.5 {
		feedback.Concerns = append(feedback.Concerns, "High debt-to-income ratio")
	}
	if emiToIncome > 0.4 {
		feedback.Concerns = append(feedback.Concerns, "EMI burden is too high relative to income")
	}
	if features.NumDebts > 3 {
		feedback.Concerns = append(feedback.Concerns, "Multiple existing debt obligations")
	}

	if debtToIncome > 0.5 {
		feedback.Recommendations = append(feedback.Recommendations, "Consider reducing existing debt before applying")
	}
	if emiToIncome > 0.4 {
		feedback.Recommendations = append(feedback.Recommendations, "Try to consolidate or reduce EMI payments")
	}
	if mlProbability < 60 {
		feedback.Recommendations = append(feedback.Recommendations, "Build a stronger transaction history and maintain regular income")
	}

	return feedback
}
