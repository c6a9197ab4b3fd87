package http

import (
	"net/http"
	"strings"

	"github.com/werioliveira/card-management/internal/auth"
)

// owner returns the authenticated owner. The owner middleware guarantees it
// is present on /api routes.
func owner(r *http.Request) string {
	o, _ := auth.OwnerFromContext(r.Context())
	return o
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := s.transactions.List(r.Context(), owner(r), ParseTransactionFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(page).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), owner(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(tx).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.transactions.Create(r.Context(), owner(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Data(map[string]any{"ok": true, "transactions": rows}).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := requireQueryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.transactions.Update(r.Context(), owner(r), id, in, req.UpdateAll)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"ok": true, "transaction": tx}).Write(w)
}

// handleDeleteTransaction serves both DELETE /api/transactions?id= and
// DELETE /api/transactions/{id}?all=true.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		var err error
		if id, err = requireQueryID(r); err != nil {
			writeError(w, r, err)
			return
		}
	}

	deleted, err := s.transactions.Delete(r.Context(), owner(r), id, queryBool(r.URL.Query(), "all"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"ok": true, "deleted": deleted}).Write(w)
}
