package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/werioliveira/card-management/internal/cli"
	applog "github.com/werioliveira/card-management/internal/log"
	"github.com/werioliveira/card-management/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create the database file if needed and apply every pending migration.

The server and the worker migrate on startup too; this command is for
preparing a database ahead of a deploy.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, applog.ComponentCLI)
	logger.Info("Starting database migration", "database", cfg.SQLiteDBPath)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _ = repo.Close() }()

	cmd.Println(successStyle.Render("✓ Database is up to date: " + cfg.SQLiteDBPath))
	return nil
}
