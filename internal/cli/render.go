package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verdict-finance/verdict/internal/model"
	"github.com/verdict-finance/verdict/internal/scoring"
)

func statusStyle(status model.LoanStatus) func(string) string {
	switch status {
	case model.StatusApproved:
		return FormatSuccess
	case model.StatusProcessing:
		return FormatWarning
	default:
		return FormatError
	}
}

// RenderDecision formats a score result for terminal display.
func RenderDecision(result model.ScoreResult, pred scoring.Prediction) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Credit Decision"))
	b.WriteString("\n")
	b.WriteString(statusStyle(result.Status)(strings.ToUpper(string(result.Status))))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %.2f%%\n", BoldStyle.Render("Acceptance rate:"), result.AcceptanceRate))
	b.WriteString(fmt.Sprintf("%s %.2f%%", BoldStyle.Render("Model score:"), pred.Probability))
	if pred.Degraded() {
		b.WriteString(" " + WarningStyle.Render(fmt.Sprintf("(%s: %s)", pred.Source, pred.Reason)))
	}
	b.WriteString("\n\n")

	b.WriteString(SubtitleStyle.Render(result.Feedback.Overall))
	b.WriteString("\n")
	for _, s := range result.Feedback.Strengths {
		b.WriteString(FormatSuccess(s) + "\n")
	}
	for _, c := range result.Feedback.Concerns {
		b.WriteString(FormatWarning(c) + "\n")
	}
	for _, r := range result.Feedback.Recommendations {
		b.WriteString(FormatInfo(r) + "\n")
	}

	if note := result.Feedback.FinancialBehavior; note != nil {
		b.WriteString("\n")
		if note.Message != "" {
			b.WriteString(SubtleStyle.Render(note.Message))
		} else {
			b.WriteString(SubtleStyle.Render(fmt.Sprintf(
				"Financial behavior: %s (score %d, impact %s)", note.Rating, note.Score, note.Impact)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderBehavior formats a behavior analysis for terminal display.
func RenderBehavior(result model.BehaviorResult) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(ChartIcon + " Financial Behavior"))
	b.WriteString("\n")

	ratingFormat := FormatError
	switch result.Rating {
	case model.RatingGood:
		ratingFormat = FormatSuccess
	case model.RatingAverage:
		ratingFormat = FormatWarning
	}
	b.WriteString(ratingFormat(fmt.Sprintf("Rating: %s (score %d/8)", result.Rating, result.TotalScore)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n", BoldStyle.Render("Cash inflow:"), result.CashInflowPattern))
	b.WriteString(fmt.Sprintf("%s %d days\n", BoldStyle.Render("Liquidity resilience:"), result.LiquidityResilienceDays))
	b.WriteString(fmt.Sprintf("%s %d days\n", BoldStyle.Render("Transaction depth:"), result.TransactionDepthDays))
	b.WriteString("\n")

	categories := make([]model.Category, 0, len(result.CategoryScores))
	for category := range result.CategoryScores {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	b.WriteString(TableHeaderStyle.Render("Category spending vs threshold"))
	b.WriteString("\n")
	for _, category := range categories {
		score := result.CategoryScores[category]
		line := fmt.Sprintf("%-16s %10.2f  %5.1f%% of income (limit %.0f%%)",
			category, score.Spending, score.Percentage, score.Threshold)
		if score.WithinThreshold {
			b.WriteString(SuccessStyle.Render(SuccessIcon+" ") + line)
		} else {
			b.WriteString(ErrorStyle.Render(ErrorIcon+" ") + line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderBanks formats the partner bank catalog as a table.
func RenderBanks(banks []model.Bank) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(BankIcon + " Partner Banks"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-16s %9s %7s %12s %8s",
		"Bank", "Success", "Trust", "Rate", "Approval")))
	b.WriteString("\n")

	for _, bank := range banks {
		b.WriteString(TableCellStyle.Render(fmt.Sprintf("%-16s %8.1f%% %7.1f %5.1f-%.1f%% %9s",
			bank.Name, bank.SuccessRate, bank.TrustScore,
			bank.InterestRateMin, bank.InterestRateMax, bank.AvgApprovalTime)))
		b.WriteString("\n")
	}

	return b.String()
}
