package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-finance/verdict/internal/model"
)

func strongFeatures() model.ApplicantFeatures {
	return model.ApplicantFeatures{
		NumDebts:        2,
		TotalDebtAmount: 50000,
		MonthlyEMIs:     5000,
		TotalAssets:     200000,
		MonthlyIncome:   50000,
		CityTier:        model.TierOne,
	}
}

func TestBlender_NoBehaviorHistory(t *testing.T) {
	result := NewBlender().Decide(strongFeatures(), 55, 80, nil)

	assert.InDelta(t, 80.0, result.AcceptanceRate, 1e-9)
	assert.Equal(t, model.StatusApproved, result.Status)
	require.NotNil(t, result.Feedback.FinancialBehavior)
	assert.Equal(t, "not_available", result.Feedback.FinancialBehavior.Rating)
	assert.NotEmpty(t, result.Feedback.FinancialBehavior.Message)
}

func TestBlender_GoodBehaviorBonus(t *testing.T) {
	behavior := &model.BehaviorResult{Rating: model.RatingGood, TotalScore: 8}

	result := NewBlender().Decide(strongFeatures(), 55, 62, behavior)

	assert.InDelta(t, 72.0, result.AcceptanceRate, 1e-9)
	assert.Equal(t, model.StatusApproved, result.Status)
	assert.Equal(t, "positive", result.Feedback.FinancialBehavior.Impact)
	assert.Equal(t, 8, result.Feedback.FinancialBehavior.Score)
}

func TestBlender_BadBehaviorRecomputesStatus(t *testing.T) {
	behavior := &model.BehaviorResult{Rating: model.RatingBad, TotalScore: 2}

	// 80 pre-behavior would be approved; −15 lands at 65 → processing.
	result := NewBlender().Decide(strongFeatures(), 55, 80, behavior)

	assert.InDelta(t, 65.0, result.AcceptanceRate, 1e-9)
	assert.Equal(t, model.StatusProcessing, result.Status)
	assert.Equal(t, "negative", result.Feedback.FinancialBehavior.Impact)

	// Feedback overall still reflects the pre-behavior tier.
	assert.Equal(t, overallStrong, result.Feedback.Overall)
}

func TestBlender_AverageBehaviorNoChange(t *testing.T) {
	behavior := &model.BehaviorResult{Rating: model.RatingAverage, TotalScore: 5}

	result := NewBlender().Decide(strongFeatures(), 55, 60, behavior)

	assert.InDelta(t, 60.0, result.AcceptanceRate, 1e-9)
	assert.Equal(t, model.StatusProcessing, result.Status)
	assert.Equal(t, "neutral", result.Feedback.FinancialBehavior.Impact)
}

func TestBlender_ReclampAfterAdjustment(t *testing.T) {
	good := &model.BehaviorResult{Rating: model.RatingGood}
	result := NewBlender().Decide(strongFeatures(), 90, 95, good)
	assert.InDelta(t, 95.0, result.AcceptanceRate, 1e-9)

	bad := &model.BehaviorResult{Rating: model.RatingBad}
	result = NewBlender().Decide(strongFeatures(), 10, 12, bad)
	assert.InDelta(t, 10.0, result.AcceptanceRate, 1e-9)
	assert.Equal(t, model.StatusRejected, result.Status)
}

func TestBlender_FeedbackContents(t *testing.T) {
	weak := model.ApplicantFeatures{
		NumDebts:        5,
		TotalDebtAmount: 500000, // debt/income 10.4 annualized
		MonthlyEMIs:     20000,  // emi/income 0.5
		TotalAssets:     100000,
		MonthlyIncome:   40000,
		CityTier:        model.TierTwo,
	}

	result := NewBlender().Decide(weak, 45, 30, nil)

	assert.Equal(t, overallWeak, result.Feedback.Overall)
	assert.Empty(t, result.Feedback.Strengths)
	assert.Contains(t, result.Feedback.Concerns, "High debt-to-income ratio")
	assert.Contains(t, result.Feedback.Concerns, "EMI burden is too high relative to income")
	assert.Contains(t, result.Feedback.Concerns, "Multiple existing debt obligations")
	assert.Contains(t, result.Feedback.Recommendations, "Consider reducing existing debt before applying")
	assert.Contains(t, result.Feedback.Recommendations, "Try to consolidate or reduce EMI payments")
	assert.Contains(t, result.Feedback.Recommendations, "Build a stronger transaction history and maintain regular income")
}

func TestBlender_FeedbackStrengths(t *testing.T) {
	result := NewBlender().Decide(strongFeatures(), 75, 80, nil)

	assert.Equal(t, overallStrong, result.Feedback.Overall)
	assert.Contains(t, result.Feedback.Strengths, "Strong asset-to-debt ratio")
	assert.Contains(t, result.Feedback.Strengths, "Manageable EMI obligations")
	assert.Contains(t, result.Feedback.Strengths, "Low number of existing debts")
	assert.Empty(t, result.Feedback.Concerns)
	assert.Empty(t, result.Feedback.Recommendations)
}

func TestStatusForRate(t *testing.T) {
	assert.Equal(t, model.StatusApproved, model.StatusForRate(70))
	assert.Equal(t, model.StatusProcessing, model.StatusForRate(69.99))
	assert.Equal(t, model.StatusProcessing, model.StatusForRate(50))
	assert.Equal(t, model.StatusRejected, model.StatusForRate(49.99))
}
