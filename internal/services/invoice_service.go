package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/werioliveira/card-management/internal/cache"
	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

// InvoiceService covers the invoice lifecycle: listing, paying and the credit
// each card has committed to unpaid invoices.
type InvoiceService struct {
	repo      *storage.SQLiteRepository
	cache     cache.Cache[[]core.Invoice]
	listeners []InvoiceListener
}

// NewInvoiceService wires the service. invoiceCache may be nil to disable caching.
func NewInvoiceService(repo *storage.SQLiteRepository, invoiceCache cache.Cache[[]core.Invoice], listeners ...InvoiceListener) *InvoiceService {
	return &InvoiceService{
		repo:      repo,
		cache:     invoiceCache,
		listeners: listeners,
	}
}

func cacheKey(owner, cardID string) string {
	return owner + "|" + cardID
}

// List returns the owner's invoices, newest month first. An empty cardID
// lists every card.
func (s *InvoiceService) List(ctx context.Context, owner, cardID string) ([]core.Invoice, error) {
	key := cacheKey(owner, cardID)
	if s.cache != nil {
		if invoices, ok := s.cache.Get(key); ok {
			return invoices, nil
		}
	}

	invoices, err := s.repo.Queries().ListInvoices(ctx, owner, cardID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if invoices == nil {
		invoices = []core.Invoice{}
	}

	if s.cache != nil {
		s.cache.Set(key, invoices)
	}
	return invoices, nil
}

// InvoicesChanged drops every cached listing of owner.
func (s *InvoiceService) InvoicesChanged(ctx context.Context, owner string, invoices []core.Invoice) {
	if s.cache == nil {
		return
	}
	if n := s.cache.DeletePrefix(owner + "|"); n > 0 {
		slog.DebugContext(ctx, "Invoice cache invalidated", "owner", owner, "entries", n)
	}
}

// Pay marks the invoice paid. Paying is one-way; paying a paid invoice
// changes nothing. Another owner's invoice is reported as not found.
func (s *InvoiceService) Pay(ctx context.Context, owner, id string) (core.Invoice, error) {
	var (
		inv     core.Invoice
		changed bool
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		current, err := q.GetInvoice(ctx, owner, id)
		if err != nil {
			return err
		}
		if current.IsPaid() {
			inv = current
			return nil
		}
		if err := q.MarkInvoicePaid(ctx, owner, id); err != nil {
			return err
		}
		inv, err = q.GetInvoice(ctx, owner, id)
		changed = true
		return err
	})
	if err != nil {
		return core.Invoice{}, err
	}
	if !changed {
		return inv, nil
	}

	s.InvoicesChanged(ctx, owner, []core.Invoice{inv})
	notify(ctx, s.listeners, owner, []core.Invoice{inv})

	slog.InfoContext(ctx, "Invoice paid",
		"owner", owner,
		"invoice_id", inv.ID,
		"total_cents", inv.TotalAmount.Cents)

	return inv, nil
}

// UsedCredit is the sum of the card's invoices that are not paid, across all months.
func (s *InvoiceService) UsedCredit(ctx context.Context, owner, cardID string) (core.Money, error) {
	used, _, err := s.repo.Queries().SumUnpaid(ctx, owner, cardID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum unpaid invoices for card %s: %w", cardID, err)
	}
	return used, nil
}

// CardUsage reports limit, used and available credit for each of the owner's cards.
func (s *InvoiceService) CardUsage(ctx context.Context, owner string) ([]core.CardUsage, error) {
	q := s.repo.Queries()
	cards, err := q.ListCards(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	out := make([]core.CardUsage, 0, len(cards))
	for _, c := range cards {
		used, open, err := q.SumUnpaid(ctx, owner, c.ID)
		if err != nil {
			return nil, fmt.Errorf("sum unpaid invoices for card %s: %w", c.ID, err)
		}
		out = append(out, core.NewCardUsage(c, used, open))
	}
	return out, nil
}
