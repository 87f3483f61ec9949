package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/verdict-finance/verdict/internal/cli"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import and analyze bank statements",
		Long: `Ingest statement files (CSV, XLSX, OFX/QFX), run the behavior
analyzer over them, and store the results for the given user.

With --dry-run the statements are parsed and analyzed but nothing is
written; the behavior summary is printed instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("user", "", "email of the user the statements belong to")
	cmd.Flags().Float64("income", 0, "applicant's monthly income")
	cmd.Flags().Bool("dry-run", false, "analyze without writing to the database")

	_ = cmd.MarkFlagRequired("income")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userEmail, _ := cmd.Flags().GetString("user")
	income, _ := cmd.Flags().GetFloat64("income")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if income <= 0 {
		return fmt.Errorf("--income must be positive")
	}

	// Expand globs so shells without globbing still work.
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}

	eng, store, _, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if dryRun {
		for _, file := range files {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			transactions, err := eng.ParseStatement(filepath.Base(file), f)
			_ = f.Close()
			if err != nil {
				return err
			}

			result := eng.AnalyzeTransactions(transactions, income)
			fmt.Println(cli.SubtitleStyle.Render(file))
			fmt.Println(cli.RenderBehavior(result))
		}
		fmt.Println(cli.FormatInfo("Dry run: nothing was written"))
		return nil
	}

	user, err := lookupUser(ctx, store, userEmail)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing statements..."),
	)

	imported := 0
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		upload, stored, err := eng.ProcessTransactionUpload(ctx, user.ID, filepath.Base(file), f, income)
		_ = f.Close()
		if err != nil {
			slog.Error("import failed", "file", file, "error", err)
			_ = bar.Add(1)
			continue
		}

		imported++
		_ = bar.Add(1)
		slog.Info("statement imported",
			"file", file,
			"transactions", len(upload.Transactions),
			"rating", stored.Result.Rating)
	}
	_ = bar.Finish()
	fmt.Println()

	if imported == 0 {
		return fmt.Errorf("no statements imported")
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d statements for %s", imported, len(files), user.Email)))
	return nil
}
