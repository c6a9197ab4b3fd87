package storage

import (
	"context"
	"fmt"

	"github.com/werioliveira/card-management/internal/core"
)

const invoiceColumns = `id, card_id, month, year, total_cents, status, due_date, owner_id`

func scanInvoice(row rowScanner) (core.Invoice, error) {
	var (
		inv core.Invoice
		due string
	)
	err := row.Scan(&inv.ID, &inv.CardID, &inv.Month, &inv.Year, &inv.TotalAmount.Cents, &inv.Status, &due, &inv.Owner)
	if err != nil {
		return core.Invoice{}, err
	}
	inv.DueDate, err = core.ParseDate(due)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, err)
	}
	return inv, nil
}

func (q *Queries) collectInvoices(ctx context.Context, query string, args ...any) ([]core.Invoice, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// An existing invoice only has its total refreshed. Status and due date are
// set once, when the bucket is first seen. The WHERE guard keeps an owner from
// touching an invoice id that belongs to somebody else.
const upsertInvoiceTotal = `INSERT INTO invoices (` + invoiceColumns + `)
VALUES (?, ?, ?, ?, ?, 'open', ?, ?)
ON CONFLICT(id) DO UPDATE SET total_cents = excluded.total_cents
WHERE invoices.owner_id = excluded.owner_id
RETURNING ` + invoiceColumns

// UpsertInvoiceTotal stores total as the bucket's invoice total.
func (q *Queries) UpsertInvoiceTotal(ctx context.Context, owner string, b core.InvoiceBucket, total core.Money, dueDay int) (core.Invoice, error) {
	inv, err := scanInvoice(q.db.QueryRowContext(ctx, upsertInvoiceTotal,
		b.InvoiceID(), b.CardID, b.Month, b.Year, total.Cents, b.DueDate(dueDay).String(), owner))
	if err != nil {
		// no row comes back when the guard rejects the update
		return core.Invoice{}, fmt.Errorf("upsert invoice %s: %w", b.InvoiceID(), notFound(err))
	}
	return inv, nil
}

func (q *Queries) GetInvoice(ctx context.Context, owner, id string) (core.Invoice, error) {
	inv, err := scanInvoice(q.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ? AND owner_id = ?`, id, owner))
	return inv, notFound(err)
}

// GetInvoiceByID looks an invoice up without an owner scope. Only background
// workers acting on already-scoped events use it.
func (q *Queries) GetInvoiceByID(ctx context.Context, id string) (core.Invoice, error) {
	inv, err := scanInvoice(q.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	return inv, notFound(err)
}

// ListInvoices returns the owner's invoices, newest month first. An empty
// cardID lists every card.
func (q *Queries) ListInvoices(ctx context.Context, owner, cardID string) ([]core.Invoice, error) {
	return q.collectInvoices(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE owner_id = ? AND (? = '' OR card_id = ?)
ORDER BY year DESC, month DESC, card_id`, owner, cardID, cardID)
}

// ListAllInvoices returns every invoice of every owner.
func (q *Queries) ListAllInvoices(ctx context.Context) ([]core.Invoice, error) {
	return q.collectInvoices(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY owner_id, card_id, year, month`)
}

func (q *Queries) MarkInvoicePaid(ctx context.Context, owner, id string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE invoices SET status = 'paid' WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return err
	}
	return affected(res)
}

// SumUnpaid totals the card's invoices that are not paid and counts them.
func (q *Queries) SumUnpaid(ctx context.Context, owner, cardID string) (core.Money, int, error) {
	var (
		cents int64
		n     int
	)
	err := q.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_cents), 0), COUNT(*) FROM invoices
WHERE owner_id = ? AND card_id = ? AND status <> 'paid'`, owner, cardID).Scan(&cents, &n)
	return core.Money{Cents: cents}, n, err
}
