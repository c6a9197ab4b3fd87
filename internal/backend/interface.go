package backend

import (
	"context"

	"github.com/werioliveira/card-management/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the exporter instance and optional cleanup function
type Result struct {
	Exporter sheets.InvoiceExporter
	Type     Type
	Cleanup  CleanupFunc
}

// Factory creates the invoice exporter the worker mirrors into
type Factory interface {
	CreateExporter(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for exporter creation
type Config struct {
	Type Type

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// Type names an exporter implementation
type Type string

const (
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
