// Package memory is the in-process invoice exporter used when no spreadsheet
// is configured.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/werioliveira/card-management/internal/core"
	ports "github.com/werioliveira/card-management/internal/sheets"
)

type Store struct {
	mu       sync.Mutex
	invoices map[string]core.Invoice
	writes   int
}

var _ ports.InvoiceExporter = (*Store)(nil)

func New() *Store {
	return &Store{invoices: make(map[string]core.Invoice)}
}

// UpsertInvoice keeps the latest copy of inv.
func (s *Store) UpsertInvoice(_ context.Context, inv core.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	s.writes++
	return nil
}

func (s *Store) Get(id string) (core.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	return inv, ok
}

// Rows returns the stored invoices as sheet rows ordered by id, header first.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	all := make([]core.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		all = append(all, inv)
	}
	s.mu.Unlock()

	slices.SortFunc(all, func(a, b core.Invoice) int { return cmp.Compare(a.ID, b.ID) })
	rows := make([][]any, 0, len(all)+1)
	rows = append(rows, ports.Header)
	for _, inv := range all {
		rows = append(rows, ports.Row(inv))
	}
	return rows
}

// Writes counts every UpsertInvoice call, including overwrites.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
