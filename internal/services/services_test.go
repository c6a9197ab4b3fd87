package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

// recordingListener keeps every batch of changed invoices it is told about.
type recordingListener struct {
	mu      sync.Mutex
	batches [][]core.Invoice
}

func (l *recordingListener) InvoicesChanged(_ context.Context, _ string, invoices []core.Invoice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, invoices)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.batches)
}

type testEnv struct {
	repo         *storage.SQLiteRepository
	listener     *recordingListener
	aggregator   *InvoiceAggregator
	transactions *TransactionService
	invoices     *InvoiceService
	directory    *DirectoryService
	card         core.Card
}

func createTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// newTestEnv wires the services on a fresh database with one card for alice.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := createTestStorage(t)
	env := &testEnv{
		repo:       repo,
		listener:   &recordingListener{},
		aggregator: NewInvoiceAggregator(core.DefaultInvoiceDueDay),
		directory:  NewDirectoryService(repo),
	}
	env.invoices = NewInvoiceService(repo, nil, env.listener)
	env.transactions = NewTransactionService(repo, env.aggregator, core.DefaultSchedule(), env.listener)

	card, err := env.directory.CreateCard(context.Background(), "alice", core.Card{
		Name:       "Nubank",
		Brand:      core.BrandMastercard,
		Limit:      core.Money{Cents: 500000},
		ClosingDay: 3,
		DueDay:     10,
	})
	require.NoError(t, err)
	env.card = card
	return env
}

func (e *testEnv) purchase(desc string, date core.Date, cents int64, installments int) core.TransactionInput {
	return core.TransactionInput{
		Description:  desc,
		Amount:       core.Money{Cents: cents},
		Date:         date,
		CardID:       e.card.ID,
		Installments: installments,
	}
}

func (e *testEnv) invoice(t *testing.T, owner string, year, month int) core.Invoice {
	t.Helper()
	inv, err := e.repo.Queries().GetInvoice(context.Background(), owner, core.InvoiceID(e.card.ID, year, month))
	require.NoError(t, err)
	return inv
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
