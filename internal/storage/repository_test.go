package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werioliveira/card-management/internal/core"
)

func createTestStorage(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func tx(id, owner, card string, date core.Date, cents int64) core.Transaction {
	return core.Transaction{
		ID: id, GroupID: id, Description: "purchase " + id, Amount: core.Money{Cents: cents},
		Date: date, CardID: card, Installments: 1, CurrentInstallment: 1, Owner: owner,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(context.Background()))
	require.NoError(t, repo.Close())
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()

	in := tx("t1", "alice", "card-1", core.NewDate(2024, 3, 5), 1999)
	in.PersonID = "p1"
	require.NoError(t, q.InsertTransaction(ctx, in))

	got, err := q.GetTransaction(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = q.GetTransaction(ctx, "bob", "t1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = q.InsertTransaction(ctx, in)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestUpdateAndDeleteAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()
	require.NoError(t, q.InsertTransaction(ctx, tx("t1", "alice", "c", core.NewDate(2024, 1, 1), 100)))

	err := q.UpdateTransaction(ctx, UpdateTransactionParams{ID: "t1", Owner: "bob", Description: "x", Date: core.NewDate(2024, 1, 2), CardID: "c"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, q.DeleteTransaction(ctx, "bob", "t1"), core.ErrNotFound)

	require.NoError(t, q.UpdateTransaction(ctx, UpdateTransactionParams{
		ID: "t1", Owner: "alice", Description: "edited", Amount: core.Money{Cents: 250}, Date: core.NewDate(2024, 2, 2), CardID: "c",
	}))
	got, err := q.GetTransaction(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Description)
	assert.Equal(t, core.NewDate(2024, 2, 2), got.Date)

	require.NoError(t, q.DeleteTransaction(ctx, "alice", "t1"))
	assert.ErrorIs(t, q.DeleteTransaction(ctx, "alice", "t1"), core.ErrNotFound)
}

func TestGroupQueries(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()
	for i := 1; i <= 3; i++ {
		row := tx("g-"+string(rune('0'+i)), "alice", "c", core.NewDate(2024, i, 10), 3333)
		row.GroupID = "g"
		row.Installments = 3
		row.CurrentInstallment = i
		require.NoError(t, q.InsertTransaction(ctx, row))
	}

	group, err := q.ListGroup(ctx, "alice", "g")
	require.NoError(t, err)
	require.Len(t, group, 3)
	assert.Equal(t, 1, group[0].CurrentInstallment)
	assert.Equal(t, 3, group[2].CurrentInstallment)

	n, err := q.DeleteGroup(ctx, "bob", "g")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = q.DeleteGroup(ctx, "alice", "g")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGroupInUse(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()
	require.NoError(t, q.InsertTransaction(ctx, tx("x", "alice", "c", core.NewDate(2024, 1, 1), 100)))
	row := tx("y-1", "alice", "c", core.NewDate(2024, 1, 1), 100)
	row.GroupID = "y"
	require.NoError(t, q.InsertTransaction(ctx, row))

	tests := []struct {
		owner, group string
		want         bool
	}{
		{"alice", "x", true},
		{"alice", "y", true},
		{"alice", "y-1", true},
		{"alice", "z", false},
		{"bob", "x", false},
	}
	for _, tt := range tests {
		used, err := q.GroupInUse(ctx, tt.owner, tt.group)
		require.NoError(t, err)
		assert.Equal(t, tt.want, used, "%s/%s", tt.owner, tt.group)
	}
}

func TestTransactionIDsAreScopedPerOwner(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()
	require.NoError(t, q.InsertTransaction(ctx, tx("shared", "alice", "c", core.NewDate(2024, 1, 1), 100)))
	require.NoError(t, q.InsertTransaction(ctx, tx("shared", "bob", "c", core.NewDate(2024, 2, 1), 200)))

	got, err := q.GetTransaction(ctx, "bob", "shared")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Amount.Cents)

	require.NoError(t, q.DeleteTransaction(ctx, "bob", "shared"))
	got, err = q.GetTransaction(ctx, "alice", "shared")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Amount.Cents)
}

func TestListTransactionsFilters(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()

	rows := []core.Transaction{
		tx("a", "alice", "c1", core.NewDate(2024, 1, 5), 100),
		tx("b", "alice", "c1", core.NewDate(2024, 1, 20), 200),
		tx("c", "alice", "c2", core.NewDate(2024, 2, 1), 300),
		tx("d", "bob", "c1", core.NewDate(2024, 1, 7), 400),
	}
	rows[1].Description = "100%_off"
	for _, r := range rows {
		require.NoError(t, q.InsertTransaction(ctx, r))
	}

	items, total, err := q.ListTransactions(ctx, "alice", core.TransactionFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"c", "b", "a"}, ids(items))

	items, total, err = q.ListTransactions(ctx, "alice", core.TransactionFilter{Page: 1, PageSize: 10, Month: "2024-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"b", "a"}, ids(items))

	items, _, err = q.ListTransactions(ctx, "alice", core.TransactionFilter{Page: 1, PageSize: 10, Search: "%_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(items))

	items, _, err = q.ListTransactions(ctx, "alice", core.TransactionFilter{Page: 1, PageSize: 10, CardID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(items))

	items, total, err = q.ListTransactions(ctx, "alice", core.TransactionFilter{Page: 2, PageSize: 2, CardID: "all"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"a"}, ids(items))
}

func ids(ts []core.Transaction) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestSumBucketAndUpsertInvoice(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()

	require.NoError(t, q.InsertTransaction(ctx, tx("a", "alice", "c1", core.NewDate(2024, 1, 5), 1000)))
	require.NoError(t, q.InsertTransaction(ctx, tx("b", "alice", "c1", core.NewDate(2024, 1, 31), 2500)))
	require.NoError(t, q.InsertTransaction(ctx, tx("c", "alice", "c1", core.NewDate(2024, 2, 1), 700)))
	require.NoError(t, q.InsertTransaction(ctx, tx("d", "bob", "c1", core.NewDate(2024, 1, 9), 9999)))

	bucket := core.InvoiceBucket{CardID: "c1", Year: 2024, Month: 1}
	sum, err := q.SumBucket(ctx, "alice", bucket)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), sum.Cents)

	inv, err := q.UpsertInvoiceTotal(ctx, "alice", bucket, sum, core.DefaultInvoiceDueDay)
	require.NoError(t, err)
	assert.Equal(t, "inv-c1-2024-01", inv.ID)
	assert.Equal(t, core.InvoiceOpen, inv.Status)
	assert.Equal(t, core.NewDate(2024, 1, 10), inv.DueDate)
	assert.Equal(t, int64(3500), inv.TotalAmount.Cents)

	require.NoError(t, q.MarkInvoicePaid(ctx, "alice", inv.ID))
	inv, err = q.UpsertInvoiceTotal(ctx, "alice", bucket, core.Money{Cents: 42}, 25)
	require.NoError(t, err)
	assert.Equal(t, core.InvoicePaid, inv.Status, "status survives a recompute")
	assert.Equal(t, core.NewDate(2024, 1, 10), inv.DueDate, "due date survives a recompute")
	assert.Equal(t, int64(42), inv.TotalAmount.Cents)

	// bob shares the card id but cannot overwrite alice's invoice
	_, err = q.UpsertInvoiceTotal(ctx, "bob", bucket, core.Money{Cents: 1}, 10)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	inv, err = q.GetInvoice(ctx, "alice", "inv-c1-2024-01")
	require.NoError(t, err)
	assert.Equal(t, int64(42), inv.TotalAmount.Cents)
}

func TestInvoiceListingAndUnpaidSum(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()

	for _, b := range []core.InvoiceBucket{
		{CardID: "c1", Year: 2023, Month: 12},
		{CardID: "c1", Year: 2024, Month: 1},
		{CardID: "c2", Year: 2024, Month: 1},
	} {
		_, err := q.UpsertInvoiceTotal(ctx, "alice", b, core.Money{Cents: 1000}, 10)
		require.NoError(t, err)
	}

	all, err := q.ListInvoices(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "inv-c1-2023-12", all[2].ID)

	c1, err := q.ListInvoices(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.Len(t, c1, 2)

	none, err := q.ListInvoices(ctx, "bob", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, q.MarkInvoicePaid(ctx, "alice", "inv-c1-2023-12"))
	assert.ErrorIs(t, q.MarkInvoicePaid(ctx, "bob", "inv-c1-2024-01"), core.ErrNotFound)

	used, n, err := q.SumUnpaid(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), used.Cents)
	assert.Equal(t, 1, n)
}

func TestListKnownBuckets(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()

	require.NoError(t, q.InsertTransaction(ctx, tx("a", "alice", "c1", core.NewDate(2024, 1, 5), 1)))
	require.NoError(t, q.InsertTransaction(ctx, tx("b", "alice", "c1", core.NewDate(2024, 1, 6), 1)))
	require.NoError(t, q.InsertTransaction(ctx, tx("c", "bob", "c9", core.NewDate(2024, 11, 6), 1)))
	_, err := q.UpsertInvoiceTotal(ctx, "alice", core.InvoiceBucket{CardID: "c1", Year: 2023, Month: 7}, core.Money{Cents: 5}, 10)
	require.NoError(t, err)

	all, err := q.ListKnownBuckets(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []OwnedBucket{
		{Owner: "alice", InvoiceBucket: core.InvoiceBucket{CardID: "c1", Year: 2023, Month: 7}},
		{Owner: "alice", InvoiceBucket: core.InvoiceBucket{CardID: "c1", Year: 2024, Month: 1}},
		{Owner: "bob", InvoiceBucket: core.InvoiceBucket{CardID: "c9", Year: 2024, Month: 11}},
	}, all)

	bobs, err := q.ListKnownBuckets(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := createTestStorage(t)
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(q *Queries) error {
		require.NoError(t, q.InsertTransaction(ctx, tx("a", "alice", "c1", core.NewDate(2024, 1, 5), 1)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.Queries().GetTransaction(ctx, "alice", "a")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDirectoryAndUsers(t *testing.T) {
	ctx := context.Background()
	q := createTestStorage(t).Queries()

	card := core.Card{ID: "c1", Name: "Nubank", Brand: core.BrandMastercard, Limit: core.Money{Cents: 500000}, ClosingDay: 3, DueDay: 10, Active: true, Owner: "alice"}
	require.NoError(t, q.InsertCard(ctx, card))
	got, err := q.GetCard(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.Equal(t, card, got)
	_, err = q.GetCard(ctx, "bob", "c1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	card.Active = false
	require.NoError(t, q.UpdateCard(ctx, card))
	cards, err := q.ListCards(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.False(t, cards[0].Active)

	cat := core.Category{ID: "cat", Name: "Food", Owner: "alice"}
	inserted, err := q.InsertCategoryIgnore(ctx, cat)
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = q.InsertCategoryIgnore(ctx, cat)
	require.NoError(t, err)
	assert.False(t, inserted)

	require.NoError(t, q.InsertPerson(ctx, core.Person{ID: "p", Name: "Ana", Owner: "alice"}))
	assert.ErrorIs(t, q.DeletePerson(ctx, "bob", "p"), core.ErrNotFound)
	require.NoError(t, q.DeletePerson(ctx, "alice", "p"))

	u := core.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, q.CreateUser(ctx, u))
	assert.ErrorIs(t, q.CreateUser(ctx, core.User{ID: "u2", Email: "alice@example.com"}), core.ErrDuplicateEmail)

	found, err := q.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
	_, err = q.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
