package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Owners   int
	Buckets  int
	Changed  int
	Duration time.Duration
}

// ReconcileProcessor recomputes every known invoice bucket from its
// transactions, repairing totals that no longer match their rows.
type ReconcileProcessor struct {
	repo       *storage.SQLiteRepository
	aggregator *InvoiceAggregator
	listeners  []InvoiceListener
}

func NewReconcileProcessor(repo *storage.SQLiteRepository, aggregator *InvoiceAggregator, listeners ...InvoiceListener) *ReconcileProcessor {
	return &ReconcileProcessor{
		repo:       repo,
		aggregator: aggregator,
		listeners:  listeners,
	}
}

// Reconcile recomputes the buckets of owner, or of every owner when owner is
// empty. Each owner is reconciled in its own database transaction; a failing
// owner is logged and skipped.
func (p *ReconcileProcessor) Reconcile(ctx context.Context, owner string) (ReconcileResult, error) {
	if p.repo == nil || p.aggregator == nil {
		return ReconcileResult{}, fmt.Errorf("processor not properly initialized")
	}
	start := time.Now()

	known, err := p.repo.Queries().ListKnownBuckets(ctx, owner)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list invoice buckets: %w", err)
	}

	byOwner := map[string][]core.InvoiceBucket{}
	var owners []string
	for _, b := range known {
		if _, ok := byOwner[b.Owner]; !ok {
			owners = append(owners, b.Owner)
		}
		byOwner[b.Owner] = append(byOwner[b.Owner], b.InvoiceBucket)
	}

	slog.InfoContext(ctx, "Reconciling invoices",
		"owners", len(owners),
		"buckets", len(known))

	result := ReconcileResult{Owners: len(owners), Buckets: len(known)}
	for _, o := range owners {
		changed, err := p.reconcileOwner(ctx, o, byOwner[o])
		if err != nil {
			slog.ErrorContext(ctx, "Failed to reconcile owner invoices",
				"owner", o,
				"error", err)
			continue
		}
		result.Changed += len(changed)
		notify(ctx, p.listeners, o, changed)
	}
	result.Duration = time.Since(start)

	slog.InfoContext(ctx, "Invoice reconciliation complete",
		"owners", result.Owners,
		"buckets", result.Buckets,
		"changed", result.Changed,
		"duration", result.Duration)

	return result, nil
}

// reconcileOwner returns the invoices whose total was different before.
func (p *ReconcileProcessor) reconcileOwner(ctx context.Context, owner string, buckets []core.InvoiceBucket) ([]core.Invoice, error) {
	var changed []core.Invoice
	err := p.repo.WithTx(ctx, func(q *storage.Queries) error {
		for _, b := range core.UniqueBuckets(buckets) {
			before, err := q.GetInvoice(ctx, owner, b.InvoiceID())
			existed := err == nil
			if err != nil && !errors.Is(err, core.ErrNotFound) {
				return err
			}

			inv, err := p.aggregator.Recompute(ctx, q, owner, b)
			if err != nil {
				return err
			}
			if !existed || before.TotalAmount != inv.TotalAmount {
				changed = append(changed, inv)
			}
		}
		return nil
	})
	return changed, err
}

// Start runs Reconcile for every owner on each tick until ctx is cancelled.
func (p *ReconcileProcessor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Invoice reconciliation scheduled", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Invoice reconciliation stopped")
			return
		case <-ticker.C:
			if _, err := p.Reconcile(ctx, ""); err != nil {
				slog.ErrorContext(ctx, "Invoice reconciliation failed", "error", err)
			}
		}
	}
}
