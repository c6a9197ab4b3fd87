// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/werioliveira/card-management/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON reads r's body into v. Malformed bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", core.ErrValidation)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body too large", core.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body", core.ErrValidation)
	}
	return nil
}

// flexInt accepts a JSON number or a numeric string. Anything else decodes
// to zero so that callers fall back to defaults.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*n = flexInt(v)
		return nil
	}
	*n = 0
	return nil
}

// transactionRequest is the body of transaction create and update calls.
type transactionRequest struct {
	ID               string     `json:"id"`
	Description      string     `json:"description"`
	Amount           core.Money `json:"amount"`
	Date             string     `json:"date"`
	CardID           string     `json:"cardId"`
	PersonID         string     `json:"personId"`
	CategoryID       string     `json:"categoryId"`
	Installments     flexInt    `json:"installments"`
	StartInstallment flexInt    `json:"startInstallment"`
	UpdateAll        bool       `json:"updateAll"`
}

// Input converts the request to a TransactionInput. A malformed date is
// reported immediately; missing fields are left for the service to reject.
func (req transactionRequest) Input() (core.TransactionInput, error) {
	in := core.TransactionInput{
		ID:               sanitizeInput(req.ID),
		Description:      sanitizeInput(req.Description),
		Amount:           req.Amount,
		CardID:           sanitizeInput(req.CardID),
		PersonID:         sanitizeInput(req.PersonID),
		CategoryID:       sanitizeInput(req.CategoryID),
		Installments:     int(req.Installments),
		StartInstallment: int(req.StartInstallment),
	}
	if strings.TrimSpace(req.Date) != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			return core.TransactionInput{}, err
		}
		in.Date = d
	}
	return in, nil
}

// ParseTransactionFilter reads the listing query. pageSize is also accepted
// as limit. Unparsable numbers fall back to defaults.
func ParseTransactionFilter(query url.Values) core.TransactionFilter {
	f := core.TransactionFilter{
		Page:     atoiOr(query.Get("page"), 0),
		PageSize: atoiOr(query.Get("pageSize"), 0),
		Month:    strings.TrimSpace(query.Get("month")),
		Search:   sanitizeInput(query.Get("search")),
		PersonID: strings.TrimSpace(query.Get("personId")),
		CardID:   strings.TrimSpace(query.Get("cardId")),
	}
	if f.PageSize == 0 {
		f.PageSize = atoiOr(query.Get("limit"), 0)
	}
	return f
}

// requireQueryID returns the id query parameter or a validation error.
func requireQueryID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		return "", fmt.Errorf("%w: ID required", core.ErrValidation)
	}
	return id, nil
}

// queryBool reports whether the named query parameter is "true" or "1".
func queryBool(query url.Values, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(query.Get(name)))
	return err == nil && v
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
