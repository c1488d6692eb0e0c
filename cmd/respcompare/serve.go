package main

import (
	"fmt"

	"github.com/jonathan/respcompare/internal/config"
	"github.com/jonathan/respcompare/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts an HTTP server exposing comparison and benchmark result endpoints.",
	RunE:  runServe,
}

var (
	servePort          int
	serveDatabaseURL   string
	serveMode          string
	serveMaxInputChars int
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP server port (default: 8080)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "PostgreSQL connection URL (default: DATABASE_URL env)")
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "Default diff mode: greedy or optimal (default: greedy)")
	serveCmd.Flags().IntVar(&serveMaxInputChars, "max-input-chars", 0, "Per-side character limit (default: 50000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, func(cfg *config.Config, changed func(string) bool) {
		if changed("port") {
			cfg.Port = servePort
		}
		if changed("database-url") {
			cfg.DatabaseURL = serveDatabaseURL
		}
		if changed("mode") {
			cfg.Mode = serveMode
		}
		if changed("max-input-chars") {
			cfg.MaxInputChars = serveMaxInputChars
		}
	})
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --database-url flag is required")
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
		Engine:      opts,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	return srv.Start()
}
