package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

// InvoiceAggregator derives invoice totals from the transactions of a bucket.
// Totals are always recomputed from source rows, never adjusted incrementally.
type InvoiceAggregator struct {
	dueDay int
}

func NewInvoiceAggregator(dueDay int) *InvoiceAggregator {
	if dueDay < 1 || dueDay > 28 {
		dueDay = core.DefaultInvoiceDueDay
	}
	return &InvoiceAggregator{dueDay: dueDay}
}

// Recompute stores the current total of bucket b. It is idempotent.
func (a *InvoiceAggregator) Recompute(ctx context.Context, q *storage.Queries, owner string, b core.InvoiceBucket) (core.Invoice, error) {
	total, err := q.SumBucket(ctx, owner, b)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("sum bucket %s: %w", b, err)
	}

	inv, err := q.UpsertInvoiceTotal(ctx, owner, b, total, a.dueDay)
	if err != nil {
		return core.Invoice{}, err
	}

	slog.DebugContext(ctx, "Invoice recomputed",
		"owner", owner,
		"invoice_id", inv.ID,
		"total_cents", inv.TotalAmount.Cents,
		"status", inv.Status)

	return inv, nil
}

// RecomputeAll recomputes each distinct bucket once, in card, year, month order.
func (a *InvoiceAggregator) RecomputeAll(ctx context.Context, q *storage.Queries, owner string, buckets []core.InvoiceBucket) ([]core.Invoice, error) {
	unique := core.UniqueBuckets(buckets)
	out := make([]core.Invoice, 0, len(unique))
	for _, b := range unique {
		inv, err := a.Recompute(ctx, q, owner, b)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}
