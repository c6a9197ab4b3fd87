package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/werioliveira/card-management/internal/auth"
	applog "github.com/werioliveira/card-management/internal/log"
	authmw "github.com/werioliveira/card-management/internal/middleware/auth"
	"github.com/werioliveira/card-management/internal/middleware/ratelimit"
	"github.com/werioliveira/card-management/internal/middleware/security"
	"github.com/werioliveira/card-management/internal/middleware/trace"
)

// Deps are the collaborators of the API server.
type Deps struct {
	Transactions TransactionService
	Invoices     InvoiceService
	Directory    DirectoryService
	Auth         AuthService
	Seed         SeedService
	DB           Pinger

	Issuer *auth.Issuer
	Logger *applog.Logger

	TrustUserHeader    bool
	SecureCookies      bool
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	transactions TransactionService
	invoices     InvoiceService
	directory    DirectoryService
	auth         AuthService
	seed         SeedService
	db           Pinger

	secureCookies bool
	limiter       *ratelimit.Limiter
	tracer        *trace.Middleware
	detector      *security.Detector
	shutdownOnce  sync.Once
}

func NewServer(addr string, d Deps) *Server {
	s := &Server{
		transactions:  d.Transactions,
		invoices:      d.Invoices,
		directory:     d.Directory,
		auth:          d.Auth,
		seed:          d.Seed,
		db:            d.DB,
		secureCookies: d.SecureCookies,
		limiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: d.RateLimitPerMinute}),
		detector:      security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(d.Logger, s.detector.ExtractClientIP)

	owners := authmw.NewMiddleware(authmw.Config{
		Issuer:          d.Issuer,
		TrustUserHeader: d.TrustUserHeader,
		OnUnauthorized: func(w http.ResponseWriter, r *http.Request) {
			UnauthorizedError("Unauthorized").Write(w)
		},
	})

	api := http.NewServeMux()
	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("PUT /api/transactions", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/transactions", s.handleDeleteTransaction)
	api.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api.HandleFunc("GET /api/invoices", s.handleListInvoices)
	api.HandleFunc("PATCH /api/invoices/{id}/pay", s.handlePayInvoice)
	api.HandleFunc("POST /api/invoices/{id}/pay", s.handlePayInvoice)
	api.HandleFunc("GET /api/cards/usage", s.handleCardUsage)

	api.HandleFunc("GET /api/people", s.handleListPeople)
	api.HandleFunc("POST /api/people", s.handleCreatePerson)
	api.HandleFunc("PUT /api/people", s.handleUpdatePerson)
	api.HandleFunc("DELETE /api/people", s.handleDeletePerson)

	api.HandleFunc("GET /api/cards", s.handleListCards)
	api.HandleFunc("POST /api/cards", s.handleCreateCard)
	api.HandleFunc("PUT /api/cards", s.handleUpdateCard)
	api.HandleFunc("DELETE /api/cards", s.handleDeleteCard)

	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("PUT /api/categories", s.handleUpdateCategory)
	api.HandleFunc("DELETE /api/categories", s.handleDeleteCategory)

	api.HandleFunc("POST /api/seed/categories", s.handleSeedCategories)
	api.HandleFunc("POST /api/seed/transactions", s.handleSeedTransactions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("/api/", owners.Owner(api))

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})(mux)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(s.detector.Middleware(limited))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "database unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}
