package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/werioliveira/card-management/internal/core"
)

const transactionColumns = `id, group_id, description, amount_cents, date, card_id, person_id, category_id, installments, current_installment, owner_id`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		date string
	)
	err := row.Scan(&t.ID, &t.GroupID, &t.Description, &t.Amount.Cents, &date, &t.CardID,
		&t.PersonID, &t.CategoryID, &t.Installments, &t.CurrentInstallment, &t.Owner)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return t, nil
}

func (q *Queries) collectTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const insertTransaction = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		t.ID, t.GroupID, t.Description, t.Amount.Cents, t.Date.String(), t.CardID,
		t.PersonID, t.CategoryID, t.Installments, t.CurrentInstallment, t.Owner)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: transaction id %s already exists", core.ErrValidation, t.ID)
	}
	return err
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND owner_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, owner, id string) (core.Transaction, error) {
	t, err := scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, owner))
	return t, notFound(err)
}

const listGroup = `SELECT ` + transactionColumns + ` FROM transactions
WHERE owner_id = ? AND group_id = ?
ORDER BY current_installment, id`

func (q *Queries) ListGroup(ctx context.Context, owner, groupID string) ([]core.Transaction, error) {
	return q.collectTransactions(ctx, listGroup, owner, groupID)
}

const groupInUse = `SELECT EXISTS (
	SELECT 1 FROM transactions WHERE owner_id = ? AND (group_id = ? OR id = ?)
)`

// GroupInUse reports whether groupID already names a purchase or a row of the owner.
func (q *Queries) GroupInUse(ctx context.Context, owner, groupID string) (bool, error) {
	var used bool
	err := q.db.QueryRowContext(ctx, groupInUse, owner, groupID, groupID).Scan(&used)
	return used, err
}

// UpdateTransactionParams are the caller-editable columns of one row.
type UpdateTransactionParams struct {
	ID          string
	Owner       string
	Description string
	Amount      core.Money
	Date        core.Date
	CardID      string
	PersonID    string
	CategoryID  string
}

const updateTransaction = `UPDATE transactions
SET description = ?, amount_cents = ?, date = ?, card_id = ?, person_id = ?, category_id = ?
WHERE id = ? AND owner_id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, p UpdateTransactionParams) error {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		p.Description, p.Amount.Cents, p.Date.String(), p.CardID, p.PersonID, p.CategoryID, p.ID, p.Owner)
	if err != nil {
		return err
	}
	return affected(res)
}

func (q *Queries) DeleteTransaction(ctx context.Context, owner, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return err
	}
	return affected(res)
}

func (q *Queries) DeleteGroup(ctx context.Context, owner, groupID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE group_id = ? AND owner_id = ?`, groupID, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTransactions returns one page of the owner's transactions, newest first,
// together with the number of rows matching the filter.
func (q *Queries) ListTransactions(ctx context.Context, owner string, f core.TransactionFilter) ([]core.Transaction, int, error) {
	where := []string{"owner_id = ?"}
	args := []any{owner}

	if f.Month != "" {
		where = append(where, "date LIKE ?")
		args = append(args, f.Month+"%")
	}
	if f.Search != "" {
		where = append(where, `description LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}
	if f.PersonID != "" && f.PersonID != "all" {
		where = append(where, "person_id = ?")
		args = append(args, f.PersonID)
	}
	if f.CardID != "" && f.CardID != "all" {
		where = append(where, "card_id = ?")
		args = append(args, f.CardID)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + clause +
		` ORDER BY date DESC, id LIMIT ? OFFSET ?`
	offset := (f.Page - 1) * f.PageSize
	items, err := q.collectTransactions(ctx, query, append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return items, total, nil
}

const sumBucket = `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
WHERE owner_id = ? AND card_id = ? AND date LIKE ?`

// SumBucket adds up every transaction of the owner in the bucket.
func (q *Queries) SumBucket(ctx context.Context, owner string, b core.InvoiceBucket) (core.Money, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx, sumBucket, owner, b.CardID, b.MonthPrefix()+"%").Scan(&cents)
	return core.Money{Cents: cents}, err
}

// OwnedBucket is an invoice bucket together with the owner it belongs to.
type OwnedBucket struct {
	Owner string
	core.InvoiceBucket
}

// ListKnownBuckets returns every bucket referenced by a transaction or an
// existing invoice. An empty owner lists buckets of every owner.
func (q *Queries) ListKnownBuckets(ctx context.Context, owner string) ([]OwnedBucket, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT owner_id, card_id, CAST(substr(date, 1, 4) AS INTEGER), CAST(substr(date, 6, 2) AS INTEGER)
FROM transactions WHERE (? = '' OR owner_id = ?)
UNION
SELECT owner_id, card_id, year, month
FROM invoices WHERE (? = '' OR owner_id = ?)
ORDER BY 1, 2, 3, 4`, owner, owner, owner, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OwnedBucket
	for rows.Next() {
		var b OwnedBucket
		if err := rows.Scan(&b.Owner, &b.CardID, &b.Year, &b.Month); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
