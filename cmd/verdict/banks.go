package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdict-finance/verdict/internal/cli"
	"github.com/verdict-finance/verdict/internal/config"
	"github.com/verdict-finance/verdict/internal/model"
)

func banksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "List partner banks",
		RunE:  runBanks,
	}

	cmd.Flags().Bool("top", false, "order by approval success rate")
	cmd.Flags().Bool("trusted", false, "order by trust score")
	cmd.Flags().Int("limit", 10, "maximum number of banks to show")

	return cmd
}

func runBanks(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	top, _ := cmd.Flags().GetBool("top")
	trusted, _ := cmd.Flags().GetBool("trusted")
	limit, _ := cmd.Flags().GetInt("limit")

	if top && trusted {
		return fmt.Errorf("--top and --trusted are mutually exclusive")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var banks []model.Bank
	switch {
	case top:
		banks, err = store.GetTopBanks(ctx, limit)
	case trusted:
		banks, err = store.GetTrustedBanks(ctx, limit)
	default:
		banks, err = store.GetAllBanks(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderBanks(banks))
	return nil
}
