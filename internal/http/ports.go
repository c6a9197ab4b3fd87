package http

import (
	"context"
	"time"

	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/services"
)

// Services the handlers depend on. The concrete implementations live in
// internal/services.
type (
	TransactionService interface {
		Create(ctx context.Context, owner string, in core.TransactionInput) ([]core.Transaction, error)
		Update(ctx context.Context, owner, id string, in core.TransactionInput, updateAll bool) (core.Transaction, error)
		Delete(ctx context.Context, owner, id string, deleteAll bool) (int, error)
		Get(ctx context.Context, owner, id string) (core.Transaction, error)
		List(ctx context.Context, owner string, f core.TransactionFilter) (core.TransactionPage, error)
	}

	InvoiceService interface {
		List(ctx context.Context, owner, cardID string) ([]core.Invoice, error)
		Pay(ctx context.Context, owner, id string) (core.Invoice, error)
		CardUsage(ctx context.Context, owner string) ([]core.CardUsage, error)
	}

	DirectoryService interface {
		ListPeople(ctx context.Context, owner string) ([]core.Person, error)
		CreatePerson(ctx context.Context, owner string, p core.Person) (core.Person, error)
		UpdatePerson(ctx context.Context, owner, id string, p core.Person) (core.Person, error)
		DeletePerson(ctx context.Context, owner, id string) error

		ListCards(ctx context.Context, owner string) ([]core.Card, error)
		CreateCard(ctx context.Context, owner string, c core.Card) (core.Card, error)
		UpdateCard(ctx context.Context, owner, id string, c core.Card) (core.Card, error)
		DeleteCard(ctx context.Context, owner, id string) error

		ListCategories(ctx context.Context, owner string) ([]core.Category, error)
		CreateCategory(ctx context.Context, owner string, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, owner, id string, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, owner, id string) error
	}

	AuthService interface {
		Register(ctx context.Context, name, email, password string) (core.User, error)
		Login(ctx context.Context, email, password string) (core.User, string, error)
		SessionTTL() time.Duration
	}

	SeedService interface {
		SeedCategories(ctx context.Context, owner string) (int, error)
		SeedTransactions(ctx context.Context, owner string) (services.SeedResult, error)
	}

	// Pinger reports whether the database is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Compile-time checks against the concrete services.
var (
	_ TransactionService = (*services.TransactionService)(nil)
	_ InvoiceService     = (*services.InvoiceService)(nil)
	_ DirectoryService   = (*services.DirectoryService)(nil)
	_ AuthService        = (*services.AuthService)(nil)
	_ SeedService        = (*services.SeedService)(nil)
)
