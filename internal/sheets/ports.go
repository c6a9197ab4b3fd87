package sheets

import (
	"context"

	"github.com/werioliveira/card-management/internal/core"
)

// Ports for outbound adapters.
type (
	// InvoiceExporter mirrors invoices into an external spreadsheet. Exporting
	// the same invoice twice overwrites the first copy.
	InvoiceExporter interface {
		UpsertInvoice(ctx context.Context, inv core.Invoice) error
	}
)

// Header is the first row of the invoice sheet, matching Row.
var Header = []any{"ID", "Owner", "Card", "Year", "Month", "Total", "Status", "Due date"}

// Row renders inv as one spreadsheet row in Header order.
func Row(inv core.Invoice) []any {
	return []any{
		inv.ID,
		inv.Owner,
		inv.CardID,
		inv.Year,
		inv.Month,
		inv.TotalAmount.String(),
		string(inv.Status),
		inv.DueDate.String(),
	}
}
