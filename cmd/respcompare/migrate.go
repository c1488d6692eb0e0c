package main

import (
	"fmt"

	"github.com/jonathan/respcompare/internal/config"
	"github.com/jonathan/respcompare/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Creates the benchmark_results and comparisons tables. Migrations are idempotent and safe to re-run.",
	RunE:  runMigrate,
}

var migrateDatabaseURL string

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "database-url", "", "PostgreSQL connection URL (default: DATABASE_URL env)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, func(cfg *config.Config, changed func(string) bool) {
		if changed("database-url") {
			cfg.DatabaseURL = migrateDatabaseURL
		}
	})
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --database-url flag is required")
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	applied, err := database.Migrate(ctx)
	if err != nil {
		return err
	}
	for _, name := range applied {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrations complete (%d files)\n", len(applied))
	return nil
}
