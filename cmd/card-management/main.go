package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/werioliveira/card-management/internal/amqp"
	"github.com/werioliveira/card-management/internal/auth"
	"github.com/werioliveira/card-management/internal/cache"
	"github.com/werioliveira/card-management/internal/cli"
	"github.com/werioliveira/card-management/internal/core"
	apphttp "github.com/werioliveira/card-management/internal/http"
	applog "github.com/werioliveira/card-management/internal/log"
	"github.com/werioliveira/card-management/internal/services"
)

const (
	invoiceCacheSize = 1000
	invoiceCacheTTL  = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	schedule, err := services.ResolveSchedule(cfg.InstallmentDatePolicy, cfg.InstallmentSplitPolicy)
	if err != nil {
		logger.Error("Invalid installment policy", applog.FieldError, err)
		os.Exit(1)
	}

	issuer, err := auth.NewIssuer(cfg.AuthSecret, cfg.SessionTTL)
	if err != nil {
		logger.Error("Failed to initialize session issuer", applog.FieldError, err)
		os.Exit(1)
	}

	// Publishing is optional; without a broker invoice events are logged and dropped.
	var publisher services.InvoicePublisher
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - invoice events will not be published")
	}
	events := services.NewEventPublisher(publisher)

	cacheManager := cache.NewManager()
	invoiceCache := cache.NewLRUCache[[]core.Invoice](invoiceCacheSize, invoiceCacheTTL)
	cacheManager.Register(invoiceCache)

	aggregator := services.NewInvoiceAggregator(cfg.InvoiceDueDay)
	invoices := services.NewInvoiceService(repo, invoiceCache, events)
	transactions := services.NewTransactionService(repo, aggregator, schedule, invoices, events)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions:       transactions,
		Invoices:           invoices,
		Directory:          services.NewDirectoryService(repo),
		Auth:               services.NewAuthService(repo, issuer),
		Seed:               services.NewSeedService(repo, transactions),
		DB:                 repo,
		Issuer:             issuer,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
		TrustUserHeader:    cfg.TrustUserHeader,
		SecureCookies:      cfg.SessionCookieSecure,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cacheManager.StartCleanup(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting card-management server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
