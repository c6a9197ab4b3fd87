package http

import (
	"context"
	"net/http"

	"github.com/werioliveira/card-management/internal/core"
)

// People

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.directory.ListPeople(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(people).Write(w)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var p core.Person
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.directory.CreatePerson(r.Context(), owner(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(created).Write(w)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := requireQueryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p core.Person
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.directory.UpdatePerson(r.Context(), owner(r), id, p); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().OK().Write(w)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.directory.DeletePerson)
}

// Cards

// cardRequest accepts numeric fields as numbers or strings. Active defaults
// to true when omitted.
type cardRequest struct {
	Name       string     `json:"name"`
	LastDigits string     `json:"lastDigits"`
	Brand      string     `json:"brand"`
	Limit      core.Money `json:"limit"`
	ClosingDay flexInt    `json:"closingDay"`
	DueDay     flexInt    `json:"dueDay"`
	Color      string     `json:"color"`
	Active     *bool      `json:"active"`
}

func (req cardRequest) Card() core.Card {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return core.Card{
		Name:       sanitizeInput(req.Name),
		LastDigits: sanitizeInput(req.LastDigits),
		Brand:      core.Brand(sanitizeInput(req.Brand)),
		Limit:      req.Limit,
		ClosingDay: int(req.ClosingDay),
		DueDay:     int(req.DueDay),
		Color:      sanitizeInput(req.Color),
		Active:     active,
	}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.directory.ListCards(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(cards).Write(w)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.directory.CreateCard(r.Context(), owner(r), req.Card())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(created).Write(w)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := requireQueryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.directory.UpdateCard(r.Context(), owner(r), id, req.Card()); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().OK().Write(w)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.directory.DeleteCard)
}

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.directory.ListCategories(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.directory.CreateCategory(r.Context(), owner(r), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(created).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := requireQueryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var c core.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.directory.UpdateCategory(r.Context(), owner(r), id, c); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().OK().Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.directory.DeleteCategory)
}

func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, owner, id string) error) {
	id, err := requireQueryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := del(r.Context(), owner(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().OK().Write(w)
}
