package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/werioliveira/card-management/internal/amqp"
	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/sheets"
)

// InvoiceSource reads invoices regardless of owner. *storage.Queries satisfies it.
type InvoiceSource interface {
	GetInvoiceByID(ctx context.Context, id string) (core.Invoice, error)
	ListAllInvoices(ctx context.Context) ([]core.Invoice, error)
}

// SyncWorker mirrors invoices from SQLite into the configured exporter.
type SyncWorker struct {
	source   InvoiceSource
	exporter sheets.InvoiceExporter
}

func NewSyncWorker(source InvoiceSource, exporter sheets.InvoiceExporter) *SyncWorker {
	return &SyncWorker{source: source, exporter: exporter}
}

// HandleInvoiceChanged processes a single invoice-changed message from AMQP.
// The invoice is re-read so the exported row reflects the committed state,
// not the state at publish time.
func (w *SyncWorker) HandleInvoiceChanged(ctx context.Context, msg *amqp.InvoiceChangedMessage) error {
	slog.InfoContext(ctx, "Processing invoice message",
		"invoice_id", msg.InvoiceID,
		"owner", msg.Owner,
		"status", msg.Status)

	inv, err := w.source.GetInvoiceByID(ctx, msg.InvoiceID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Invoice no longer exists, skipping export",
			"invoice_id", msg.InvoiceID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get invoice from storage: %w", err)
	}

	if err := w.exporter.UpsertInvoice(ctx, inv); err != nil {
		return fmt.Errorf("export invoice: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported invoice",
		"invoice_id", inv.ID,
		"total_cents", inv.TotalAmount.Cents,
		"status", inv.Status)
	return nil
}

// ExportAll pushes every stored invoice to the exporter. It is used at
// startup to recover from messages lost while the worker was down.
func (w *SyncWorker) ExportAll(ctx context.Context) (int, error) {
	invoices, err := w.source.ListAllInvoices(ctx)
	if err != nil {
		return 0, fmt.Errorf("list invoices: %w", err)
	}
	if len(invoices) == 0 {
		slog.InfoContext(ctx, "No invoices found on startup")
		return 0, nil
	}

	exported, failed := 0, 0
	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if err := w.exporter.UpsertInvoice(ctx, inv); err != nil {
			slog.ErrorContext(ctx, "Failed to export invoice during startup",
				"invoice_id", inv.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(invoices),
		"exported", exported,
		"errors", failed)
	return exported, nil
}

// InvoicesChanged lets the worker act as an in-process listener when no
// broker is configured.
func (w *SyncWorker) InvoicesChanged(ctx context.Context, owner string, invoices []core.Invoice) {
	for _, inv := range invoices {
		if err := w.exporter.UpsertInvoice(ctx, inv); err != nil {
			slog.ErrorContext(ctx, "Failed to export invoice",
				"invoice_id", inv.ID, "owner", owner, "error", err)
		}
	}
}
