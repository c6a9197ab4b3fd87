package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"github.com/werioliveira/card-management/internal/amqp"
	"github.com/werioliveira/card-management/internal/cli"
	"github.com/werioliveira/card-management/internal/config"
	applog "github.com/werioliveira/card-management/internal/log"
	"github.com/werioliveira/card-management/internal/services"
	"github.com/werioliveira/card-management/internal/storage"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var errOwnerRequired = errors.New("--owner (or CARDCTL_OWNER) is required")

// app bundles the services a command needs. Close releases the database and
// the broker connection.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
	repo   *storage.SQLiteRepository
	amqp   *amqp.Client

	invoices     *services.InvoiceService
	transactions *services.TransactionService
	seed         *services.SeedService
	reconciler   *services.ReconcileProcessor
}

func loadConfig() (*config.Config, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	if db := strings.TrimSpace(viper.GetString("db")); db != "" {
		cfg.SQLiteDBPath = db
	}
	return cfg, nil
}

// openApp wires the services the same way the server does, so totals changed
// from the CLI are published like any other invoice change.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg, applog.ComponentCLI)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schedule, err := services.ResolveSchedule(cfg.InstallmentDatePolicy, cfg.InstallmentSplitPolicy)
	if err != nil {
		repo.Close()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, repo: repo}

	var publisher services.InvoicePublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, invoice events will not be published", applog.FieldError, err)
		} else {
			a.amqp = client
			publisher = client
		}
	}
	events := services.NewEventPublisher(publisher)

	aggregator := services.NewInvoiceAggregator(cfg.InvoiceDueDay)
	a.invoices = services.NewInvoiceService(repo, nil, events)
	a.transactions = services.NewTransactionService(repo, aggregator, schedule, events)
	a.seed = services.NewSeedService(repo, a.transactions)
	a.reconciler = services.NewReconcileProcessor(repo, aggregator, events)
	return a, nil
}

func (a *app) Close() {
	if a.amqp != nil {
		_ = a.amqp.Close()
	}
	_ = a.repo.Close()
}

func requireOwner() (string, error) {
	owner := strings.TrimSpace(viper.GetString("owner"))
	if owner == "" {
		return "", errOwnerRequired
	}
	return owner, nil
}
