package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdict-finance/verdict/internal/cli"
	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an applicant from the command line",
		Long: `Run the decision pipeline for a single applicant described by
flags. With --user, the user's latest analyzed behavior is blended into
the decision; otherwise the score is computed from features alone.

Nothing is persisted; this is an inspection tool.`,
		RunE: runScore,
	}

	cmd.Flags().Int("debts", 0, "number of existing debts")
	cmd.Flags().Float64("debt-amount", 0, "total outstanding debt")
	cmd.Flags().Float64("emis", 0, "total monthly EMI payments")
	cmd.Flags().Float64("assets", 0, "total asset value")
	cmd.Flags().Float64("income", 0, "monthly income")
	cmd.Flags().String("tier", "tier_2", "city tier (tier_1, tier_2, tier_3)")
	cmd.Flags().String("user", "", "email of a registered user whose behavior history to include")

	_ = cmd.MarkFlagRequired("income")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	debts, _ := cmd.Flags().GetInt("debts")
	debtAmount, _ := cmd.Flags().GetFloat64("debt-amount")
	emis, _ := cmd.Flags().GetFloat64("emis")
	assets, _ := cmd.Flags().GetFloat64("assets")
	income, _ := cmd.Flags().GetFloat64("income")
	tier, _ := cmd.Flags().GetString("tier")
	userEmail, _ := cmd.Flags().GetString("user")

	if income <= 0 {
		return fmt.Errorf("--income must be positive")
	}
	cityTier := model.CityTier(tier)
	if !cityTier.Valid() {
		return fmt.Errorf("--tier must be tier_1, tier_2 or tier_3")
	}

	features := model.ApplicantFeatures{
		NumDebts:        debts,
		TotalDebtAmount: debtAmount,
		MonthlyEMIs:     emis,
		TotalAssets:     assets,
		MonthlyIncome:   income,
		CityTier:        cityTier,
	}

	eng, store, _, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var behaviorResult *model.BehaviorResult
	if userEmail != "" {
		user, err := lookupUser(ctx, store, userEmail)
		if err != nil {
			return err
		}
		stored, err := eng.GetBehavior(ctx, user.ID)
		switch {
		case err == nil:
			behaviorResult = &stored.Result
		case errors.Is(err, common.ErrNotFound):
			fmt.Println(cli.FormatWarning("No behavior history for " + userEmail + "; scoring on features alone"))
		default:
			return err
		}
	}

	dec := eng.Score(features, behaviorResult)
	fmt.Println(cli.RenderDecision(dec.Result, dec.Prediction))
	return nil
}
