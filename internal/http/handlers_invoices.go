package http

import (
	"net/http"
	"strings"
)

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	cardID := strings.TrimSpace(r.URL.Query().Get("cardId"))
	if cardID == "all" {
		cardID = ""
	}
	invoices, err := s.invoices.List(r.Context(), owner(r), cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(invoices).Write(w)
}

func (s *Server) handlePayInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invoices.Pay(r.Context(), owner(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"ok": true, "invoice": inv}).Write(w)
}

func (s *Server) handleCardUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := s.invoices.CardUsage(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(usage).Write(w)
}
