package main

import (
	"fmt"
	"os"

	"github.com/jonathan/respcompare/internal/config"
	"github.com/spf13/cobra"
)

// loadSettings reads the --config file (if any), applies overrides for flags
// the user set explicitly, then fills the remaining fields from the
// environment and defaults.
func loadSettings(cmd *cobra.Command, override func(cfg *config.Config, changed func(string) bool)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if override != nil {
		override(&cfg, cmd.Flags().Changed)
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
