// Package decision turns a model probability into a final, explained loan
// decision by applying financial-ratio heuristics and stored behavior.
package decision

import (
	"math"

	"github.com/verdict-finance/verdict/internal/model"
)

// Acceptance rate business bounds.
const (
	MinAcceptanceRate = 10.0
	MaxAcceptanceRate = 95.0
)

// Calculator adjusts a raw model probability with deterministic
// financial-ratio heuristics. The five adjustment groups are independent
// of each other; the bands within each group are mutually exclusive. The
// band thresholds and deltas are part of the scoring contract and must not
// drift.
type Calculator struct{}

// NewCalculator creates an acceptance rate calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Adjust computes the pre-behavior acceptance rate from the applicant's
// features and the model probability, clamped to [10, 95].
func (c *Calculator) Adjust(features model.ApplicantFeatures, mlProbability float64) float64 {
	rate := mlProbability

	monthlyIncome := math.Max(features.MonthlyIncome, 1) // division guard
	annualIncome := monthlyIncome * 12
	totalDebt := math.Max(features.TotalDebtAmount, 0)

	// 1. Debt-to-income ratio, annualized.
	debtToIncome := totalDebt / annualIncome
	switch {
	case debtToIncome > 0.5:
		rate -= 15
	case debtToIncome > 0.3:
		rate -= 8
	case debtToIncome < 0.2:
		rate += 5
	}

	// 2. EMI-to-income ratio.
	emiToIncome := features.MonthlyEMIs / monthlyIncome
	switch {
	case emiToIncome > 0.5:
		rate -= 20
	case emiToIncome > 0.4:
		rate -= 12
	case emiToIncome < 0.25:
		rate += 5
	}

	// 3. Asset-to-debt ratio.
	if totalDebt > 0 {
		assetRatio := features.TotalAssets / totalDebt
		switch {
		case assetRatio > 2.0:
			rate += 15
		case assetRatio > 1.5:
			rate += 10
		case assetRatio < 0.5:
			rate -= 10
		}
	} else if features.TotalAssets > 0 {
		// Debt free with assets.
		rate += 10
	}

	// 4. Existing debt count.
	switch {
	case features.NumDebts > 5:
		rate -= 12
	case features.NumDebts > 3:
		rate -= 6
	case features.NumDebts == 0:
		rate += 5
	}

	// 5. City tier cost-of-living adjustment.
	switch features.CityTier {
	case model.TierOne:
		if monthlyIncome < 30000 {
			rate -= 5
		}
	case model.TierThree:
		rate += 3
	}

	return round2(clampRate(rate))
}

func clampRate(rate float64) float64 {
	return math.Max(MinAcceptanceRate, math.Min(MaxAcceptanceRate, rate))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
