package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute invoice totals from their transactions",
		Long: `Recompute every invoice bucket known from transactions or existing
invoices. Without --owner every owner is reconciled.`,
		RunE: runReconcile,
	}
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	owner := strings.TrimSpace(viper.GetString("owner"))
	result, err := a.reconciler.Reconcile(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	cmd.Println(successStyle.Render(fmt.Sprintf("✓ %d owners, %d buckets, %d invoices changed",
		result.Owners, result.Buckets, result.Changed)))
	cmd.Println(mutedStyle.Render("took " + result.Duration.String()))
	return nil
}
