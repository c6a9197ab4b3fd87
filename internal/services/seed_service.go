package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

// DefaultCategories is the starter set created by SeedCategories.
var DefaultCategories = []core.Category{
	{Name: "Alimentação", Icon: "utensils", Color: "#f97316"},
	{Name: "Transporte", Icon: "car", Color: "#3b82f6"},
	{Name: "Moradia", Icon: "home", Color: "#8b5cf6"},
	{Name: "Saúde", Icon: "heart-pulse", Color: "#ef4444"},
	{Name: "Lazer", Icon: "gamepad-2", Color: "#10b981"},
	{Name: "Educação", Icon: "graduation-cap", Color: "#0ea5e9"},
	{Name: "Compras", Icon: "shopping-bag", Color: "#ec4899"},
	{Name: "Serviços", Icon: "wrench", Color: "#64748b"},
}

var categoryNamespace = uuid.MustParse("6f1c3a52-2d0e-4b8e-9a57-3c2f1d7e9b40")

const seedPurchases = 12

// SeededPurchase is one purchase created by SeedTransactions.
type SeededPurchase struct {
	ID           string `json:"id"`
	Installments int    `json:"installments"`
}

// SeedResult summarizes a SeedTransactions run.
type SeedResult struct {
	Purchases []SeededPurchase `json:"transactions"`
	Rows      int              `json:"rows"`
}

// SeedService fills an account with starter categories and demo purchases.
type SeedService struct {
	repo         *storage.SQLiteRepository
	transactions *TransactionService
	now          func() time.Time
	intn         func(int) int
}

func NewSeedService(repo *storage.SQLiteRepository, transactions *TransactionService) *SeedService {
	return &SeedService{
		repo:         repo,
		transactions: transactions,
		now:          time.Now,
		intn:         rand.IntN,
	}
}

// SeedCategories creates DefaultCategories for owner. Ids are derived from
// owner and name, so running it again inserts nothing. It returns how many
// categories were created.
func (s *SeedService) SeedCategories(ctx context.Context, owner string) (int, error) {
	q := s.repo.Queries()
	created := 0
	for _, c := range DefaultCategories {
		c.ID = uuid.NewSHA1(categoryNamespace, []byte(owner+"/"+c.Name)).String()
		c.Owner = owner
		ok, err := q.InsertCategoryIgnore(ctx, c)
		if err != nil {
			return created, fmt.Errorf("insert category %s: %w", c.Name, err)
		}
		if ok {
			created++
		}
	}

	slog.InfoContext(ctx, "Categories seeded", "owner", owner, "created", created)
	return created, nil
}

// SeedTransactions creates twelve demo purchases over the last six months,
// two per month on days 15 and 25, cycling through 3, 12 and 1 installments.
// Every installment row gets its own random amount between 100 and 2099.
// The owner needs at least one card, person and category.
func (s *SeedService) SeedTransactions(ctx context.Context, owner string) (SeedResult, error) {
	q := s.repo.Queries()
	cards, err := q.ListCards(ctx, owner)
	if err != nil {
		return SeedResult{}, fmt.Errorf("list cards: %w", err)
	}
	people, err := q.ListPeople(ctx, owner)
	if err != nil {
		return SeedResult{}, fmt.Errorf("list people: %w", err)
	}
	categories, err := q.ListCategories(ctx, owner)
	if err != nil {
		return SeedResult{}, fmt.Errorf("list categories: %w", err)
	}
	if len(cards) == 0 || len(people) == 0 || len(categories) == 0 {
		return SeedResult{}, fmt.Errorf("%w: at least one card, person and category must exist", core.ErrValidation)
	}

	now := s.now()
	stamp := now.UnixMilli()
	var (
		rows   []core.Transaction
		result SeedResult
	)
	for i := range seedPurchases {
		installments := []int{3, 12, 1}[i%3]
		// month offsets below January roll back into the previous year
		base := core.NewDate(now.Year(), int(now.Month())+i/2-5, 15+(i%2)*10)

		plan, err := s.transactions.schedule.Compute(base, installments, 1, core.Money{})
		if err != nil {
			return SeedResult{}, err
		}

		baseID := fmt.Sprintf("test-%d-%d", stamp, i)
		in := core.TransactionInput{
			Description:  fmt.Sprintf("Test transaction %d", i+1),
			CardID:       cards[0].ID,
			PersonID:     people[0].ID,
			CategoryID:   categories[0].ID,
			Installments: installments,
		}
		group := buildRows(owner, baseID, in, plan)
		for j := range group {
			group[j].Amount = core.Money{Cents: int64(s.intn(2000)+100) * 100}
			if installments > 1 {
				group[j].Description = fmt.Sprintf("Test transaction %d - installment %d/%d", i+1, group[j].CurrentInstallment, installments)
			}
		}

		rows = append(rows, group...)
		result.Purchases = append(result.Purchases, SeededPurchase{ID: baseID, Installments: installments})
	}

	if err := s.transactions.insert(ctx, owner, rows); err != nil {
		return SeedResult{}, err
	}
	result.Rows = len(rows)

	slog.InfoContext(ctx, "Transactions seeded", "owner", owner, "purchases", len(result.Purchases), "rows", result.Rows)
	return result, nil
}
