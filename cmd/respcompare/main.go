// Package main provides the respcompare CLI for comparing Mode A and Mode B benchmark responses.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "respcompare",
	Short: "Compare baseline and enhanced LLM responses",
	Long: `respcompare computes word-level diffs, similarity statistics and unique key points
between the Mode A (baseline) and Mode B (enhanced) responses of A/B benchmark runs.

Configuration can be loaded from a JSON file using --config. Command-line flags override config file values.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
