// Package auth resolves the owner of every API request.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/werioliveira/card-management/internal/auth"
)

// UserHeader carries the owner id when an authenticating proxy sits in front.
const UserHeader = "X-User-Id"

// Config controls how the owner is resolved.
type Config struct {
	Issuer *auth.Issuer
	// TrustUserHeader accepts UserHeader when no session cookie is present.
	TrustUserHeader bool
	// OnUnauthorized writes the rejection. A plain 401 is used when nil.
	OnUnauthorized func(http.ResponseWriter, *http.Request)
}

type Middleware struct {
	cfg Config
}

func NewMiddleware(cfg Config) *Middleware {
	return &Middleware{cfg: cfg}
}

// Owner resolves the owner from the session cookie, then the trusted header,
// and stores it in the request context. Requests with neither are rejected.
func (m *Middleware) Owner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := m.resolve(r)
		if !ok {
			m.reject(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), owner)))
	})
}

func (m *Middleware) resolve(r *http.Request) (string, bool) {
	if m.cfg.Issuer != nil {
		if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
			claims, err := m.cfg.Issuer.Parse(c.Value)
			if err == nil && claims.Subject != "" {
				return claims.Subject, true
			}
			slog.DebugContext(r.Context(), "Rejected session cookie",
				"component", "auth",
				"error", err)
		}
	}

	if m.cfg.TrustUserHeader {
		if owner := strings.TrimSpace(r.Header.Get(UserHeader)); owner != "" {
			return owner, true
		}
	}
	return "", false
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request) {
	if m.cfg.OnUnauthorized != nil {
		m.cfg.OnUnauthorized(w, r)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
