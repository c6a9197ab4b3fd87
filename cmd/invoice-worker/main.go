package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/werioliveira/card-management/internal/amqp"
	"github.com/werioliveira/card-management/internal/backend"
	"github.com/werioliveira/card-management/internal/cli"
	applog "github.com/werioliveira/card-management/internal/log"
	"github.com/werioliveira/card-management/internal/services"
	"github.com/werioliveira/card-management/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting invoice-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exporterCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid exporter configuration", applog.FieldError, err)
		os.Exit(1)
	}
	exporter, err := backend.NewFactory(logger.Logger).CreateExporter(context.Background(), exporterCfg)
	if err != nil {
		logger.Error("Failed to initialize invoice exporter", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Invoice exporter ready", "backend", exporter.Type)
	if exporter.Cleanup != nil {
		defer func() {
			if err := exporter.Cleanup(); err != nil {
				logger.Warn("Exporter cleanup failed", applog.FieldError, err)
			}
		}()
	}

	syncWorker := worker.NewSyncWorker(repo.Queries(), exporter.Exporter)
	reconciler := services.NewReconcileProcessor(repo, services.NewInvoiceAggregator(cfg.InvoiceDueDay), syncWorker)

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - relying on periodic reconciliation only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on anything published while the worker was down.
	if exported, err := syncWorker.ExportAll(ctx); err != nil {
		logger.Error("Startup export failed", applog.FieldError, err)
	} else {
		logger.Info("Startup export complete", applog.FieldRows, exported)
	}

	g, gctx := errgroup.WithContext(ctx)
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeWithRetry(gctx, syncWorker.HandleInvoiceChanged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		reconciler.Start(gctx, cfg.SyncInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
