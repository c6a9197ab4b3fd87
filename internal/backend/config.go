package backend

import (
	"errors"
	"fmt"

	"github.com/werioliveira/card-management/internal/config"
)

// FromAppConfig picks the Sheets exporter when a spreadsheet is configured
// and the in-memory one otherwise.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := MemoryBackend
	if appConfig.SheetsEnabled() {
		t = SheetsBackend
	}

	return Config{
		Type:                     t,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	if c.Type == SheetsBackend && c.GoogleSpreadsheetID == "" {
		return errors.New("google spreadsheet ID is required for sheets backend")
	}
	return nil
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{SheetsBackend, MemoryBackend}
}
