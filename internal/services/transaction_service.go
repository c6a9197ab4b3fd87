package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TransactionService owns every write to the transactions table. Each write
// and the recompute of the invoices it touches share one database transaction.
type TransactionService struct {
	repo       *storage.SQLiteRepository
	aggregator *InvoiceAggregator
	schedule   core.Schedule
	listeners  []InvoiceListener
	newID      func() string
}

func NewTransactionService(repo *storage.SQLiteRepository, aggregator *InvoiceAggregator, schedule core.Schedule, listeners ...InvoiceListener) *TransactionService {
	return &TransactionService{
		repo:       repo,
		aggregator: aggregator,
		schedule:   schedule,
		listeners:  listeners,
		newID:      func() string { return "tx-" + uuid.NewString() },
	}
}

// Create stores a purchase, split into one row per remaining installment.
func (s *TransactionService) Create(ctx context.Context, owner string, in core.TransactionInput) ([]core.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.schedule.Compute(in.Date, in.Installments, in.StartInstallment, in.Amount)
	if err != nil {
		return nil, err
	}

	baseID := strings.TrimSpace(in.ID)
	if baseID == "" {
		baseID = s.newID()
	}
	rows := buildRows(owner, baseID, in, plan)

	if err := s.insert(ctx, owner, rows); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"owner", owner,
		"group_id", baseID,
		"card_id", in.CardID,
		"installments", in.Installments,
		"rows", len(rows))

	return rows, nil
}

func buildRows(owner, baseID string, in core.TransactionInput, plan []core.Installment) []core.Transaction {
	rows := make([]core.Transaction, 0, len(plan))
	for _, inst := range plan {
		id := baseID
		if in.Installments > 1 {
			id = fmt.Sprintf("%s-%d", baseID, inst.Index)
		}
		rows = append(rows, core.Transaction{
			ID:                 id,
			GroupID:            baseID,
			Description:        in.Description,
			Amount:             inst.Amount,
			Date:               inst.DueDate,
			CardID:             in.CardID,
			PersonID:           in.PersonID,
			CategoryID:         in.CategoryID,
			Installments:       in.Installments,
			CurrentInstallment: inst.Index,
			Owner:              owner,
		})
	}
	return rows
}

// insert writes rows and recomputes their buckets atomically. Every row must
// be charged to a card the owner has.
func (s *TransactionService) insert(ctx context.Context, owner string, rows []core.Transaction) error {
	var invoices []core.Invoice
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		buckets := make([]core.InvoiceBucket, 0, len(rows))
		checked := map[string]bool{}
		groups := map[string]bool{}
		for _, row := range rows {
			if !groups[row.GroupID] {
				if err := requireNewGroup(ctx, q, owner, row.GroupID); err != nil {
					return err
				}
				groups[row.GroupID] = true
			}
			if !checked[row.CardID] {
				if err := requireCard(ctx, q, owner, row.CardID); err != nil {
					return err
				}
				checked[row.CardID] = true
			}
			if err := q.InsertTransaction(ctx, row); err != nil {
				return err
			}
			buckets = append(buckets, row.Bucket())
		}

		var err error
		invoices, err = s.aggregator.RecomputeAll(ctx, q, owner, buckets)
		return err
	})
	if err != nil {
		return err
	}

	notify(ctx, s.listeners, owner, invoices)
	return nil
}

// requireNewGroup rejects a group id already used by the owner as a group or
// as a row id.
func requireNewGroup(ctx context.Context, q *storage.Queries, owner, groupID string) error {
	used, err := q.GroupInUse(ctx, owner, groupID)
	if err != nil {
		return fmt.Errorf("check group %s: %w", groupID, err)
	}
	if used {
		return fmt.Errorf("%w: transaction id %s already exists", core.ErrValidation, groupID)
	}
	return nil
}

func requireCard(ctx context.Context, q *storage.Queries, owner, cardID string) error {
	_, err := q.GetCard(ctx, owner, cardID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %s", core.ErrUnknownCard, cardID)
	}
	if err != nil {
		return fmt.Errorf("get card %s: %w", cardID, err)
	}
	return nil
}

// Update edits the transaction id. With updateAll on a multi-installment row,
// every row of the group takes the new description, amount, card, person and
// category while keeping its own date; only row id moves to the new date.
// Both the old and the new bucket of every touched row are recomputed.
func (s *TransactionService) Update(ctx context.Context, owner, id string, in core.TransactionInput, updateAll bool) (core.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var (
		updated  core.Transaction
		invoices []core.Invoice
		touched  int
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		current, err := q.GetTransaction(ctx, owner, id)
		if err != nil {
			return err
		}
		if err := requireCard(ctx, q, owner, in.CardID); err != nil {
			return err
		}

		targets := []core.Transaction{current}
		if updateAll && current.IsGrouped() {
			if targets, err = q.ListGroup(ctx, owner, current.GroupID); err != nil {
				return fmt.Errorf("list installment group %s: %w", current.GroupID, err)
			}
		}

		buckets := make([]core.InvoiceBucket, 0, 2*len(targets))
		for _, t := range targets {
			date := t.Date
			if t.ID == id {
				date = in.Date
			}
			err := q.UpdateTransaction(ctx, storage.UpdateTransactionParams{
				ID:          t.ID,
				Owner:       owner,
				Description: in.Description,
				Amount:      in.Amount,
				Date:        date,
				CardID:      in.CardID,
				PersonID:    in.PersonID,
				CategoryID:  in.CategoryID,
			})
			if err != nil {
				return fmt.Errorf("update transaction %s: %w", t.ID, err)
			}
			buckets = append(buckets, t.Bucket(), core.BucketFor(in.CardID, date))
		}
		touched = len(targets)

		if invoices, err = s.aggregator.RecomputeAll(ctx, q, owner, buckets); err != nil {
			return err
		}
		updated, err = q.GetTransaction(ctx, owner, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	notify(ctx, s.listeners, owner, invoices)

	slog.InfoContext(ctx, "Transaction updated",
		"owner", owner,
		"transaction_id", id,
		"update_all", updateAll,
		"rows", touched,
		"invoices", len(invoices))

	return updated, nil
}

// Delete removes the transaction id, or its whole installment group when
// deleteAll is set, and recomputes the buckets the rows were in. It returns
// the number of rows removed.
func (s *TransactionService) Delete(ctx context.Context, owner, id string, deleteAll bool) (int, error) {
	var (
		invoices []core.Invoice
		removed  int
	)
	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		current, err := q.GetTransaction(ctx, owner, id)
		if err != nil {
			return err
		}

		targets := []core.Transaction{current}
		if deleteAll && current.IsGrouped() {
			if targets, err = q.ListGroup(ctx, owner, current.GroupID); err != nil {
				return fmt.Errorf("list installment group %s: %w", current.GroupID, err)
			}
			n, err := q.DeleteGroup(ctx, owner, current.GroupID)
			if err != nil {
				return fmt.Errorf("delete installment group %s: %w", current.GroupID, err)
			}
			removed = int(n)
		} else {
			if err := q.DeleteTransaction(ctx, owner, id); err != nil {
				return err
			}
			removed = 1
		}

		buckets := make([]core.InvoiceBucket, 0, len(targets))
		for _, t := range targets {
			buckets = append(buckets, t.Bucket())
		}
		invoices, err = s.aggregator.RecomputeAll(ctx, q, owner, buckets)
		return err
	})
	if err != nil {
		return 0, err
	}

	notify(ctx, s.listeners, owner, invoices)

	slog.InfoContext(ctx, "Transaction deleted",
		"owner", owner,
		"transaction_id", id,
		"delete_all", deleteAll,
		"rows", removed)

	return removed, nil
}

func (s *TransactionService) Get(ctx context.Context, owner, id string) (core.Transaction, error) {
	return s.repo.Queries().GetTransaction(ctx, owner, id)
}

// List returns one page of the owner's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, owner string, f core.TransactionFilter) (core.TransactionPage, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return core.TransactionPage{}, err
	}

	items, total, err := s.repo.Queries().ListTransactions(ctx, owner, f)
	if err != nil {
		return core.TransactionPage{}, err
	}
	if items == nil {
		items = []core.Transaction{}
	}

	return core.TransactionPage{
		Data:       items,
		Pagination: core.NewPagination(total, f.Page, f.PageSize),
	}, nil
}

func normalizeFilter(f core.TransactionFilter) (core.TransactionFilter, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.Month = strings.TrimSpace(f.Month)
	if f.Month != "" {
		if _, err := time.Parse("2006-01", f.Month); err != nil {
			return f, fmt.Errorf("%w: month must be YYYY-MM", core.ErrValidation)
		}
	}
	f.Search = strings.TrimSpace(f.Search)
	return f, nil
}
