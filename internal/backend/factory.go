package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "github.com/werioliveira/card-management/internal/sheets/google"
	"github.com/werioliveira/card-management/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// newSheets is replaced in tests
	newSheets func(ctx context.Context, cfg gsheet.Config) (*gsheet.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:    logger,
		newSheets: gsheet.New,
	}
}

// CreateExporter implements Factory.CreateExporter
func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsBackend:
		return f.createSheetsExporter(ctx, config)
	case MemoryBackend:
		return f.createMemoryExporter()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsExporter(ctx context.Context, config Config) (*Result, error) {
	client, err := f.newSheets(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets exporter", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &Result{Exporter: client, Type: SheetsBackend}, nil
}

func (f *DefaultFactory) createMemoryExporter() (*Result, error) {
	f.logger.Info("Initialized memory exporter")
	store := memory.New()
	cleanup := func() error {
		f.logger.Info("Memory exporter discarded", "writes", store.Writes())
		return nil
	}
	return &Result{Exporter: store, Type: MemoryBackend, Cleanup: cleanup}, nil
}

var _ Factory = (*DefaultFactory)(nil)
