package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verdict-finance/verdict/internal/cli"
)

func behaviorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "behavior",
		Short: "Show or compute a financial behavior analysis",
		Long: `With --user, print the user's most recent stored behavior analysis.
With --file, parse and analyze a statement file ad hoc without storing
anything.`,
		RunE: runBehavior,
	}

	cmd.Flags().String("user", "", "email of a registered user")
	cmd.Flags().String("file", "", "statement file to analyze ad hoc")
	cmd.Flags().Float64("income", 0, "monthly income (required with --file)")

	return cmd
}

func runBehavior(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userEmail, _ := cmd.Flags().GetString("user")
	file, _ := cmd.Flags().GetString("file")
	income, _ := cmd.Flags().GetFloat64("income")

	if (userEmail == "") == (file == "") {
		return fmt.Errorf("exactly one of --user or --file is required")
	}

	eng, store, _, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if file != "" {
		if income <= 0 {
			return fmt.Errorf("--income must be positive when analyzing a file")
		}
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer func() { _ = f.Close() }()

		transactions, err := eng.ParseStatement(filepath.Base(file), f)
		if err != nil {
			return err
		}
		fmt.Println(cli.RenderBehavior(eng.AnalyzeTransactions(transactions, income)))
		return nil
	}

	user, err := lookupUser(ctx, store, userEmail)
	if err != nil {
		return err
	}

	stored, err := eng.GetBehavior(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("no behavior history for %s: %w", userEmail, err)
	}

	fmt.Println(cli.SubtitleStyle.Render(fmt.Sprintf("Analyzed %s", stored.CreatedAt.Format("2006-01-02 15:04"))))
	fmt.Println(cli.RenderBehavior(stored.Result))
	return nil
}
