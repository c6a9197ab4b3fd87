package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/werioliveira/card-management/internal/core"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List an owner's invoices",
		RunE:  runInvoices,
	}
	cmd.Flags().String("card", "", "only invoices of this card")
	return cmd
}

func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Mark an invoice as paid",
		Args:  cobra.ExactArgs(1),
		RunE:  runPay,
	}
}

func usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show used and available credit per card",
		RunE:  runUsage,
	}
}

func runInvoices(cmd *cobra.Command, _ []string) error {
	owner, err := requireOwner()
	if err != nil {
		return err
	}
	cardID, _ := cmd.Flags().GetString("card")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	invoices, err := a.invoices.List(cmd.Context(), owner, cardID)
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}
	if len(invoices) == 0 {
		cmd.Println(mutedStyle.Render("No invoices."))
		return nil
	}
	return renderInvoices(cmd.OutOrStdout(), invoices)
}

func runPay(cmd *cobra.Command, args []string) error {
	owner, err := requireOwner()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	inv, err := a.invoices.Pay(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("pay invoice %s: %w", args[0], err)
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("✓ Invoice %s is %s (%s)", inv.ID, inv.Status, inv.TotalAmount)))
	return nil
}

func runUsage(cmd *cobra.Command, _ []string) error {
	owner, err := requireOwner()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	usage, err := a.invoices.CardUsage(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("card usage: %w", err)
	}
	if len(usage) == 0 {
		cmd.Println(mutedStyle.Render("No cards."))
		return nil
	}
	return renderUsage(cmd.OutOrStdout(), usage)
}

func renderInvoices(out io.Writer, invoices []core.Invoice) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Card"),
		headerStyle.Render("Month"),
		headerStyle.Render("Total"),
		headerStyle.Render("Status"),
	); err != nil {
		return err
	}
	for _, inv := range invoices {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%04d-%02d\t%s\t%s\n",
			inv.ID, inv.CardID, inv.Year, inv.Month, inv.TotalAmount, inv.Status); err != nil {
			return err
		}
	}
	return nil
}

func renderUsage(out io.Writer, usage []core.CardUsage) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Card"),
		headerStyle.Render("Limit"),
		headerStyle.Render("Used"),
		headerStyle.Render("Available"),
		headerStyle.Render("Open"),
	); err != nil {
		return err
	}
	for _, u := range usage {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.Card.Name, u.Card.Limit, u.UsedCredit, u.Available, strconv.Itoa(u.OpenInvoices)); err != nil {
			return err
		}
	}
	return nil
}
