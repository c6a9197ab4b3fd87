package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werioliveira/card-management/internal/cache"
	"github.com/werioliveira/card-management/internal/core"
)

func TestPayInvoice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.transactions.Create(ctx, "alice", env.purchase("x", core.NewDate(2024, 1, 5), 12000, 1))
	require.NoError(t, err)
	id := core.InvoiceID(env.card.ID, 2024, 1)
	before := env.listener.count()

	inv, err := env.invoices.Pay(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, core.InvoicePaid, inv.Status)
	assert.Equal(t, int64(12000), inv.TotalAmount.Cents)
	assert.Equal(t, before+1, env.listener.count())

	// paying again changes nothing and announces nothing
	inv, err = env.invoices.Pay(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, core.InvoicePaid, inv.Status)
	assert.Equal(t, before+1, env.listener.count())

	_, err = env.invoices.Pay(ctx, "bob", id)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = env.invoices.Pay(ctx, "alice", "inv-missing-2024-01")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPaidInvoiceKeepsStatusWhenRecomputed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.transactions.Create(ctx, "alice", env.purchase("a", core.NewDate(2024, 1, 5), 1000, 1))
	require.NoError(t, err)
	_, err = env.invoices.Pay(ctx, "alice", core.InvoiceID(env.card.ID, 2024, 1))
	require.NoError(t, err)

	_, err = env.transactions.Create(ctx, "alice", env.purchase("b", core.NewDate(2024, 1, 20), 500, 1))
	require.NoError(t, err)

	inv := env.invoice(t, "alice", 2024, 1)
	assert.Equal(t, core.InvoicePaid, inv.Status)
	assert.Equal(t, int64(1500), inv.TotalAmount.Cents)
}

func TestUsedCreditAndCardUsage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.transactions.Create(ctx, "alice", env.purchase("Geladeira", core.NewDate(2024, 1, 5), 300000, 3))
	require.NoError(t, err)
	_, err = env.invoices.Pay(ctx, "alice", core.InvoiceID(env.card.ID, 2024, 1))
	require.NoError(t, err)

	used, err := env.invoices.UsedCredit(ctx, "alice", env.card.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), used.Cents)

	usage, err := env.invoices.CardUsage(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, env.card.ID, usage[0].Card.ID)
	assert.Equal(t, int64(200000), usage[0].UsedCredit.Cents)
	assert.Equal(t, int64(300000), usage[0].Available.Cents)
	assert.Equal(t, 2, usage[0].OpenInvoices)

	usage, err = env.invoices.CardUsage(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, usage)
}

func TestListInvoicesNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.transactions.Create(ctx, "alice", env.purchase("x", core.NewDate(2023, 11, 5), 30000, 3))
	require.NoError(t, err)

	invoices, err := env.invoices.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, core.InvoiceID(env.card.ID, 2024, 1), invoices[0].ID)
	assert.Equal(t, core.InvoiceID(env.card.ID, 2023, 11), invoices[2].ID)

	invoices, err = env.invoices.List(ctx, "alice", "other-card")
	require.NoError(t, err)
	assert.Empty(t, invoices)
	assert.NotNil(t, invoices)
}

func TestInvoiceCacheIsInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	lru := cache.NewLRUCache[[]core.Invoice](10, time.Minute)
	invoices := NewInvoiceService(env.repo, lru)
	transactions := NewTransactionService(env.repo, env.aggregator, core.DefaultSchedule(), invoices)

	list, err := invoices.List(ctx, "alice", "")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 1, lru.Size())

	_, err = transactions.Create(ctx, "alice", env.purchase("x", core.NewDate(2024, 2, 1), 100, 1))
	require.NoError(t, err)
	assert.Zero(t, lru.Size())

	list, err = invoices.List(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAggregatorDueDayFallsBackToDefault(t *testing.T) {
	assert.Equal(t, core.DefaultInvoiceDueDay, NewInvoiceAggregator(0).dueDay)
	assert.Equal(t, core.DefaultInvoiceDueDay, NewInvoiceAggregator(31).dueDay)
	assert.Equal(t, 28, NewInvoiceAggregator(28).dueDay)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.transactions.Create(ctx, "alice", env.purchase("x", core.NewDate(2024, 6, 1), 4200, 1))
	require.NoError(t, err)

	b := core.BucketFor(env.card.ID, core.NewDate(2024, 6, 1))
	q := env.repo.Queries()
	first, err := env.aggregator.Recompute(ctx, q, "alice", b)
	require.NoError(t, err)
	second, err := env.aggregator.Recompute(ctx, q, "alice", b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(4200), second.TotalAmount.Cents)
}

func TestReconcileRepairsDriftedTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.transactions.Create(ctx, "alice", env.purchase("x", core.NewDate(2024, 6, 1), 4200, 1))
	require.NoError(t, err)

	b := core.BucketFor(env.card.ID, core.NewDate(2024, 6, 1))
	_, err = env.repo.Queries().UpsertInvoiceTotal(ctx, "alice", b, core.Money{Cents: 1}, core.DefaultInvoiceDueDay)
	require.NoError(t, err)

	listener := &recordingListener{}
	result, err := NewReconcileProcessor(env.repo, env.aggregator, listener).Reconcile(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Owners)
	assert.Equal(t, 1, result.Buckets)
	assert.Equal(t, 1, result.Changed)
	assert.Equal(t, 1, listener.count())
	assert.Equal(t, int64(4200), env.invoice(t, "alice", 2024, 6).TotalAmount.Cents)

	result, err = NewReconcileProcessor(env.repo, env.aggregator, listener).Reconcile(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, result.Changed)
	assert.Equal(t, 1, listener.count())
}

func TestReconcileRequiresDependencies(t *testing.T) {
	_, err := NewReconcileProcessor(nil, nil).Reconcile(context.Background(), "")
	assert.Error(t, err)
}
