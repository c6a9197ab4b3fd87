package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/werioliveira/card-management/internal/auth"
	"github.com/werioliveira/card-management/internal/core"
	"github.com/werioliveira/card-management/internal/storage"
)

const minPasswordLength = 6

// AuthService registers users and exchanges credentials for session tokens.
type AuthService struct {
	repo   *storage.SQLiteRepository
	issuer *auth.Issuer
	cost   int
}

func NewAuthService(repo *storage.SQLiteRepository, issuer *auth.Issuer) *AuthService {
	return &AuthService{repo: repo, issuer: issuer, cost: bcrypt.DefaultCost}
}

// Register creates a user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return core.User{}, fmt.Errorf("%w: name, email and password are required", core.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return core.User{}, fmt.Errorf("%w: invalid email", core.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return core.User{}, fmt.Errorf("%w: password must have at least %d characters", core.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Queries().CreateUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateEmail) {
			return core.User{}, err
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and returns the user with a fresh session token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return core.User{}, "", fmt.Errorf("%w: email and password are required", core.ErrValidation)
	}

	u, err := s.repo.Queries().GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "Login failed", "user_id", u.ID)
		return core.User{}, "", core.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(u)
	if err != nil {
		return core.User{}, "", err
	}
	return u, token, nil
}

// SessionTTL is the lifetime of tokens returned by Login.
func (s *AuthService) SessionTTL() time.Duration {
	return s.issuer.TTL()
}
