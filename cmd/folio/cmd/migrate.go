package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/db"
	"github.com/templui/folio/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back local database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(db.RunMigrations)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(db.MigrateDown)
		},
	})
	return cmd
}

func runMigrate(step func(*sql.DB, string) error) error {
	cfg := config.Load()

	logger.Init(os.Stderr, cfg.IsDevelopment(), cfg.SentryDSN)
	defer logger.Flush()

	if cfg.Backend != config.BackendLocal {
		slog.Warn("migrating the local database while BACKEND is not local", "backend", cfg.Backend)
	}

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close(database)

	return step(database.DB, cfg.DBDriver)
}
