package http

import "net/http"

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request) {
	created, err := s.seed.SeedCategories(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"ok": true, "created": created}).Write(w)
}

func (s *Server) handleSeedTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := s.seed.SeedTransactions(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Data(map[string]any{"ok": true, "transactions": result.Purchases, "rows": result.Rows}).
		Write(w)
}
