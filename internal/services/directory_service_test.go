package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/werioliveira/card-management/internal/amqp"
	"github.com/werioliveira/card-management/internal/auth"
	"github.com/werioliveira/card-management/internal/core"
)

func TestDirectoryPeople(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	p, err := env.directory.CreatePerson(ctx, "alice", core.Person{Name: "  Ana  ", Color: "#fff"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.NotEmpty(t, p.ID)

	_, err = env.directory.CreatePerson(ctx, "alice", core.Person{Name: " "})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = env.directory.UpdatePerson(ctx, "alice", p.ID, core.Person{Name: "Ana Maria"})
	require.NoError(t, err)
	_, err = env.directory.UpdatePerson(ctx, "bob", p.ID, core.Person{Name: "Hijack"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	people, err := env.directory.ListPeople(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Ana Maria", people[0].Name)

	assert.ErrorIs(t, env.directory.DeletePerson(ctx, "bob", p.ID), core.ErrNotFound)
	require.NoError(t, env.directory.DeletePerson(ctx, "alice", p.ID))

	people, err = env.directory.ListPeople(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, people)
	assert.NotNil(t, people)
}

func TestDirectoryCards(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	assert.Equal(t, core.BrandMastercard, env.card.Brand)
	assert.True(t, env.card.Active)

	_, err := env.directory.CreateCard(ctx, "alice", core.Card{Name: "X", Brand: "diners", ClosingDay: 1, DueDay: 1})
	assert.ErrorIs(t, err, core.ErrInvalidBrand)
	_, err = env.directory.CreateCard(ctx, "alice", core.Card{Name: "X", Brand: "VISA", ClosingDay: 0, DueDay: 1})
	assert.ErrorIs(t, err, core.ErrInvalidDay)

	c, err := env.directory.CreateCard(ctx, "alice", core.Card{Name: "Inter", Brand: "VISA", ClosingDay: 5, DueDay: 12})
	require.NoError(t, err)
	assert.Equal(t, core.BrandVisa, c.Brand)

	c.Active = false
	_, err = env.directory.UpdateCard(ctx, "alice", c.ID, c)
	require.NoError(t, err)

	cards, err := env.directory.ListCards(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, cards, 2)

	for _, got := range cards {
		if got.ID == c.ID {
			assert.False(t, got.Active)
		}
	}

	require.NoError(t, env.directory.DeleteCard(ctx, "alice", c.ID))
	assert.ErrorIs(t, env.directory.DeleteCard(ctx, "alice", c.ID), core.ErrNotFound)
}

func TestDirectoryCategories(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	c, err := env.directory.CreateCategory(ctx, "alice", core.Category{Name: "Lazer", Icon: "gamepad-2"})
	require.NoError(t, err)

	_, err = env.directory.UpdateCategory(ctx, "alice", c.ID, core.Category{Name: ""})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = env.directory.UpdateCategory(ctx, "alice", "missing", core.Category{Name: "x"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	cats, err := env.directory.ListCategories(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, cats)

	require.NoError(t, env.directory.DeleteCategory(ctx, "alice", c.ID))
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	s := NewAuthService(createTestStorage(t), issuer)
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newAuthService(t)

	u, err := s.Register(ctx, "Ana", " Ana@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	_, err = s.Register(ctx, "Other", "ana@example.com", "secret123")
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	got, token, err := s.Login(ctx, "ANA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := s.issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, time.Hour, s.SessionTTL())
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	s := newAuthService(t)

	tests := []struct {
		name, email, password string
	}{
		{"", "a@b.c", "secret123"},
		{"Ana", "", "secret123"},
		{"Ana", "a@b.c", ""},
		{"Ana", "not-an-email", "secret123"},
		{"Ana", "a@b.c", "123"},
	}
	for _, tt := range tests {
		_, err := s.Register(ctx, tt.name, tt.email, tt.password)
		assert.ErrorIs(t, err, core.ErrValidation, "%+v", tt)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	s := newAuthService(t)

	_, err := s.Register(ctx, "Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seed := NewSeedService(env.repo, env.transactions)

	created, err := seed.SeedCategories(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCategories), created)

	created, err = seed.SeedCategories(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, created)

	created, err = seed.SeedCategories(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCategories), created, "ids are scoped per owner")
}

func TestSeedTransactions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seed := NewSeedService(env.repo, env.transactions)
	seed.now = fixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	seed.intn = func(int) int { return 0 }

	_, err := seed.SeedTransactions(ctx, "alice")
	assert.ErrorIs(t, err, core.ErrValidation, "needs a person and a category")

	_, err = env.directory.CreatePerson(ctx, "alice", core.Person{Name: "Ana"})
	require.NoError(t, err)
	_, err = seed.SeedCategories(ctx, "alice")
	require.NoError(t, err)

	result, err := seed.SeedTransactions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, result.Purchases, 12)
	assert.Equal(t, 4*(3+12+1), result.Rows)
	assert.Equal(t, 3, result.Purchases[0].Installments)
	assert.Equal(t, 12, result.Purchases[1].Installments)
	assert.Equal(t, 1, result.Purchases[2].Installments)

	// the first purchase lands on January 15th, five months back
	first, err := env.transactions.Get(ctx, "alice", result.Purchases[0].ID+"-1")
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 1, 15), first.Date)
	assert.Equal(t, int64(10000), first.Amount.Cents)

	page, err := env.transactions.List(ctx, "alice", core.TransactionFilter{PageSize: MaxPageSize})
	require.NoError(t, err)
	assert.Equal(t, result.Rows, page.Pagination.TotalItems)
}

func TestResolveSchedule(t *testing.T) {
	s, err := ResolveSchedule("", "")
	require.NoError(t, err)
	assert.Equal(t, core.RolloverAdvancer{}, s.Advancer)
	assert.Equal(t, core.DropRemainder{}, s.Split)

	s, err = ResolveSchedule("CLAMP", "last-absorbs")
	require.NoError(t, err)
	assert.Equal(t, core.ClampAdvancer{}, s.Advancer)
	assert.Equal(t, core.LastAbsorbsRemainder{}, s.Split)

	_, err = ResolveSchedule("weekly", "")
	assert.Error(t, err)
	_, err = ResolveSchedule("", "round-robin")
	assert.Error(t, err)

	RegisterMonthAdvancer("end-of-month", core.ClampAdvancer{})
	RegisterSplitPolicy("even", core.DropRemainder{})
	t.Cleanup(func() {
		delete(dateStrategies, "end-of-month")
		delete(splitStrategies, "even")
	})
	s, err = ResolveSchedule("end-of-month", "even")
	require.NoError(t, err)
	assert.Equal(t, core.ClampAdvancer{}, s.Advancer)
}

type fakePublisher struct {
	messages []amqp.InvoiceChangedMessage
	err      error
}

func (f *fakePublisher) PublishInvoiceChanged(_ context.Context, msg amqp.InvoiceChangedMessage) error {
	f.messages = append(f.messages, msg)
	return f.err
}

func TestEventPublisher(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	invoices := []core.Invoice{
		{ID: "inv-c1-2024-01", CardID: "c1", Year: 2024, Month: 1, TotalAmount: core.Money{Cents: 100}, Status: core.InvoiceOpen, Owner: "alice"},
		{ID: "inv-c1-2024-02", CardID: "c1", Year: 2024, Month: 2, Status: core.InvoicePaid, Owner: "alice"},
	}

	pub := &fakePublisher{}
	events := NewEventPublisher(pub)
	events.now = fixedClock(at)
	events.InvoicesChanged(ctx, "alice", invoices)

	require.Len(t, pub.messages, 2)
	assert.Equal(t, "inv-c1-2024-01", pub.messages[0].InvoiceID)
	assert.Equal(t, int64(100), pub.messages[0].TotalCents)
	assert.Equal(t, "paid", pub.messages[1].Status)
	assert.Equal(t, at, pub.messages[1].Timestamp)

	// publish failures never reach the caller
	failing := &fakePublisher{err: assert.AnError}
	NewEventPublisher(failing).InvoicesChanged(ctx, "alice", invoices)
	assert.Len(t, failing.messages, 2)

	NewEventPublisher(nil).InvoicesChanged(ctx, "alice", invoices)
}
