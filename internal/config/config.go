package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP. Publishing is disabled when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	SyncInterval time.Duration

	// Auth
	AuthSecret          string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	TrustUserHeader     bool

	// Installments and invoices
	InstallmentSplitPolicy string
	InstallmentDatePolicy  string
	InvoiceDueDay          int

	// Rate limiting
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string
}

var defaults = map[string]any{
	"PORT":                        "8081",
	"SQLITE_DB_PATH":              "./data/card-management.db",
	"AMQP_URL":                    "",
	"AMQP_EXCHANGE":               "card_management",
	"AMQP_QUEUE":                  "invoice_changed",
	"GOOGLE_SPREADSHEET_ID":       "",
	"GOOGLE_SHEET_NAME":           "Invoices",
	"GOOGLE_SERVICE_ACCOUNT_JSON": "",
	"GOOGLE_SERVICE_ACCOUNT_FILE": "",
	"SYNC_INTERVAL":               "5m",
	"AUTH_SECRET":                 "",
	"SESSION_TTL":                 "24h",
	"SESSION_COOKIE_SECURE":       false,
	"TRUST_USER_HEADER":           false,
	"INSTALLMENT_SPLIT_POLICY":    "drop-remainder",
	"INSTALLMENT_DATE_POLICY":     "rollover",
	"INVOICE_DUE_DAY":             10,
	"RATE_LIMIT_PER_MINUTE":       60,
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "text",
}

// Load reads defaults, then the optional file named by CONFIG_FILE, then
// the environment. Environment variables always win.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return &Config{
		Port:         v.GetString("PORT"),
		SQLiteDBPath: v.GetString("SQLITE_DB_PATH"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		GoogleSpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
		GoogleSheetName:          v.GetString("GOOGLE_SHEET_NAME"),
		GoogleServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),

		SyncInterval: v.GetDuration("SYNC_INTERVAL"),

		AuthSecret:          v.GetString("AUTH_SECRET"),
		SessionTTL:          v.GetDuration("SESSION_TTL"),
		SessionCookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		TrustUserHeader:     v.GetBool("TRUST_USER_HEADER"),

		InstallmentSplitPolicy: strings.ToLower(v.GetString("INSTALLMENT_SPLIT_POLICY")),
		InstallmentDatePolicy:  strings.ToLower(v.GetString("INSTALLMENT_DATE_POLICY")),
		InvoiceDueDay:          v.GetInt("INVOICE_DUE_DAY"),

		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
	}, nil
}

// AMQPEnabled reports whether invoice events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether invoices are exported to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); errors.Is(err, os.ErrNotExist) {
			problems = append(problems, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.SyncInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(c.AuthSecret) < 16 {
		problems = append(problems, "AUTH_SECRET must be at least 16 bytes")
	}
	if c.SessionTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	splitPolicies := []string{"drop-remainder", "last-absorbs"}
	if !slices.Contains(splitPolicies, c.InstallmentSplitPolicy) {
		problems = append(problems, fmt.Sprintf("invalid installment split policy '%s': must be one of %v", c.InstallmentSplitPolicy, splitPolicies))
	}
	datePolicies := []string{"rollover", "clamp"}
	if !slices.Contains(datePolicies, c.InstallmentDatePolicy) {
		problems = append(problems, fmt.Sprintf("invalid installment date policy '%s': must be one of %v", c.InstallmentDatePolicy, datePolicies))
	}
	if c.InvoiceDueDay < 1 || c.InvoiceDueDay > 28 {
		problems = append(problems, fmt.Sprintf("invalid invoice due day %d: must be between 1 and 28", c.InvoiceDueDay))
	}

	if c.RateLimitPerMinute < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, levels))
	}
	formats := []string{"text", "json"}
	if !slices.Contains(formats, c.LogFormat) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, formats))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}
