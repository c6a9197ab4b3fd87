package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

// DirectoryService manages the people, cards and categories transactions refer to.
type DirectoryService struct {
	repo  *storage.SQLiteRepository
	newID func() string
}

func NewDirectoryService(repo *storage.SQLiteRepository) *DirectoryService {
	return &DirectoryService{repo: repo, newID: uuid.NewString}
}

// People

func (s *DirectoryService) ListPeople(ctx context.Context, owner string) ([]core.Person, error) {
	people, err := s.repo.Queries().ListPeople(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	if people == nil {
		people = []core.Person{}
	}
	return people, nil
}

func (s *DirectoryService) CreatePerson(ctx context.Context, owner string, p core.Person) (core.Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Person{}, err
	}
	p.ID, p.Owner = s.newID(), owner
	if err := s.repo.Queries().InsertPerson(ctx, p); err != nil {
		return core.Person{}, fmt.Errorf("insert person: %w", err)
	}
	slog.InfoContext(ctx, "Person created", "owner", owner, "id", p.ID)
	return p, nil
}

func (s *DirectoryService) UpdatePerson(ctx context.Context, owner, id string, p core.Person) (core.Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return core.Person{}, err
	}
	p.ID, p.Owner = id, owner
	if err := s.repo.Queries().UpdatePerson(ctx, p); err != nil {
		return core.Person{}, err
	}
	return p, nil
}

func (s *DirectoryService) DeletePerson(ctx context.Context, owner, id string) error {
	return s.repo.Queries().DeletePerson(ctx, owner, id)
}

// Cards

func (s *DirectoryService) ListCards(ctx context.Context, owner string) ([]core.Card, error) {
	cards, err := s.repo.Queries().ListCards(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if cards == nil {
		cards = []core.Card{}
	}
	return cards, nil
}

// CreateCard stores a new card. Cards start active.
func (s *DirectoryService) CreateCard(ctx context.Context, owner string, c core.Card) (core.Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Brand = core.Brand(strings.ToLower(string(c.Brand)))
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	c.ID, c.Owner, c.Active = s.newID(), owner, true
	if err := s.repo.Queries().InsertCard(ctx, c); err != nil {
		return core.Card{}, fmt.Errorf("insert card: %w", err)
	}
	slog.InfoContext(ctx, "Card created", "owner", owner, "card_id", c.ID, "brand", c.Brand)
	return c, nil
}

func (s *DirectoryService) UpdateCard(ctx context.Context, owner, id string, c core.Card) (core.Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Brand = core.Brand(strings.ToLower(string(c.Brand)))
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	c.ID, c.Owner = id, owner
	if err := s.repo.Queries().UpdateCard(ctx, c); err != nil {
		return core.Card{}, err
	}
	return c, nil
}

// DeleteCard removes the card. Its transactions and invoices are kept.
func (s *DirectoryService) DeleteCard(ctx context.Context, owner, id string) error {
	return s.repo.Queries().DeleteCard(ctx, owner, id)
}

// Categories

func (s *DirectoryService) ListCategories(ctx context.Context, owner string) ([]core.Category, error) {
	cats, err := s.repo.Queries().ListCategories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []core.Category{}
	}
	return cats, nil
}

func (s *DirectoryService) CreateCategory(ctx context.Context, owner string, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID, c.Owner = s.newID(), owner
	if err := s.repo.Queries().InsertCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *DirectoryService) UpdateCategory(ctx context.Context, owner, id string, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID, c.Owner = id, owner
	if err := s.repo.Queries().UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *DirectoryService) DeleteCategory(ctx context.Context, owner, id string) error {
	return s.repo.Queries().DeleteCategory(ctx, owner, id)
}
