// Package behavior scores spending discipline from raw bank-statement
// transactions.
package behavior

import (
	"math"

	"github.com/verdict-finance/verdict/internal/category"
	"github.com/verdict-finance/verdict/internal/model"
)

// Rating breakpoints over the 0..8 category score.
const (
	goodScoreMin    = 7
	averageScoreMin = 4
)

// Analyzer computes a BehaviorResult from a transaction batch and the
// applicant's declared monthly income. It is stateless across calls; two
// invocations with identical input produce identical output.
type Analyzer struct {
	classifier *category.Classifier
	thresholds map[model.Category]float64
}

// NewAnalyzer creates an analyzer with the given per-category thresholds.
// The threshold map is copied; later mutation by the caller has no effect.
func NewAnalyzer(classifier *category.Classifier, thresholds map[model.Category]float64) *Analyzer {
	copied := make(map[model.Category]float64, len(thresholds))
	for cat, threshold := range thresholds {
		copied[cat] = threshold
	}
	return &Analyzer{
		classifier: classifier,
		thresholds: copied,
	}
}

// Analyze categorizes debits, scores each category against its threshold,
// and derives the inflow and liquidity metrics. An empty transaction list
// yields a well-defined zero result, never an error.
func (a *Analyzer) Analyze(transactions []model.Transaction, monthlyIncome float64) model.BehaviorResult {
	categorySpending := make(map[model.Category]float64, len(model.Categories))
	for _, cat := range model.Categories {
		categorySpending[cat] = 0
	}

	var totalDebits, totalCredits float64
	var creditCount int

	for i := range transactions {
		txn := &transactions[i]
		switch {
		case txn.IsDebit():
			if txn.Category == "" {
				txn.Category = a.classifier.Classify(txn.Description)
			}
			cat := txn.Category
			if !cat.Valid() {
				cat = model.CategoryOthers
			}
			amount := math.Abs(txn.Amount)
			categorySpending[cat] += amount
			totalDebits += amount
		case txn.IsCredit():
			totalCredits += txn.Amount
			creditCount++
		}
	}

	scores := make(map[model.Category]model.CategoryScore, len(model.Categories))
	totalScore := 0

	for _, cat := range model.Categories {
		spending := categorySpending[cat]
		percentage := 0.0
		if monthlyIncome > 0 {
			percentage = spending / monthlyIncome
		}
		threshold := a.thresholds[cat]
		within := percentage <= threshold
		if within {
			totalScore++
		}

		scores[cat] = model.CategoryScore{
			Spending:        round2(spending),
			Percentage:      round2(percentage * 100),
			Threshold:       round2(threshold * 100),
			WithinThreshold: within,
		}
	}

	return model.BehaviorResult{
		CategoryScores:          scores,
		TotalScore:              totalScore,
		Rating:                  ratingForScore(totalScore),
		CashInflowPattern:       inflowPattern(creditCount),
		LiquidityResilienceDays: liquidityResilienceDays(totalCredits, totalDebits),
		TransactionDepthDays:    transactionDepthDays(transactions),
		HasStableInflow:         creditCount >= 2,
	}
}

func ratingForScore(score int) model.BehaviorRating {
	switch {
	case score >= goodScoreMin:
		return model.RatingGood
	case score >= averageScoreMin:
		return model.RatingAverage
	default:
		return model.RatingBad
	}
}

func inflowPattern(creditCount int) model.InflowPattern {
	if creditCount >= 3 {
		return model.InflowRecurring
	}
	return model.InflowIrregular
}

// liquidityResilienceDays estimates how long the net balance would sustain
// current spending. Average daily spend is approximated as the total debit
// sum over 30 days regardless of the actual statement span; zero spending
// yields zero resilience rather than infinity. Both are deliberate,
// documented behaviors of the scoring contract.
func liquidityResilienceDays(totalCredits, totalDebits float64) int {
	if totalDebits <= 0 {
		return 0
	}
	dailySpend := totalDebits / 30
	days := int(math.Floor((totalCredits - totalDebits) / dailySpend))
	if days < 0 {
		return 0
	}
	return days
}

func transactionDepthDays(transactions []model.Transaction) int {
	if len(transactions) == 0 {
		return 0
	}

	minDate := transactions[0].Date
	maxDate := transactions[0].Date
	for _, txn := range transactions[1:] {
		if txn.Date.Before(minDate) {
			minDate = txn.Date
		}
		if txn.Date.After(maxDate) {
			maxDate = txn.Date
		}
	}

	return int(maxDate.Sub(minDate).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
