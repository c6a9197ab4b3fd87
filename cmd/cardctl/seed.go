package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed default categories and, optionally, demo purchases",
		Long: `Create the default categories for an owner. Running it twice is safe.

With --transactions it also creates twelve demo purchases spread over the
last six months. The owner needs at least one card, person and category.`,
		RunE: runSeed,
	}
	cmd.Flags().Bool("transactions", false, "also create demo purchases")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	owner, err := requireOwner()
	if err != nil {
		return err
	}
	withTransactions, _ := cmd.Flags().GetBool("transactions")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	created, err := a.seed.SeedCategories(ctx, owner)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("✓ %d categories created", created)))

	if !withTransactions {
		return nil
	}
	result, err := a.seed.SeedTransactions(ctx, owner)
	if err != nil {
		return fmt.Errorf("seed transactions: %w", err)
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("✓ %d purchases created (%d rows)", len(result.Purchases), result.Rows)))
	return nil
}
