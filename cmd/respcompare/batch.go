package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/respcompare/internal/batch"
	"github.com/jonathan/respcompare/internal/compare"
	"github.com/jonathan/respcompare/internal/config"
	"github.com/jonathan/respcompare/internal/observability"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Compare every benchmark record in a JSONL file",
	Long:  "Reads benchmark records (test_name, prompt, mode_a_response, mode_b_response) from a JSONL file, compares them in parallel and writes one outcome per line to --out.",
	RunE:  runBatch,
}

var (
	batchIn            string
	batchOut           string
	batchConcurrency   int
	batchMode          string
	batchMaxInputChars int
	batchVerbose       bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchIn, "in", "i", "", "Path to input JSONL file of benchmark records (required)")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Path to output JSONL file (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Number of parallel comparisons (default: 4)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "Diff mode: greedy or optimal (default: greedy)")
	batchCmd.Flags().IntVar(&batchMaxInputChars, "max-input-chars", 0, "Per-side character limit (default: 50000)")
	batchCmd.Flags().BoolVarP(&batchVerbose, "verbose", "v", false, "Print a summary of the batch")

	if err := batchCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := batchCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, func(cfg *config.Config, changed func(string) bool) {
		if changed("mode") {
			cfg.Mode = batchMode
		}
		if changed("max-input-chars") {
			cfg.MaxInputChars = batchMaxInputChars
		}
		if changed("concurrency") {
			cfg.BatchConcurrency = batchConcurrency
		}
		if changed("verbose") {
			cfg.Verbose = batchVerbose
		}
	})
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	results, err := batch.LoadJSONL(batchIn)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outcomes, err := batch.Run(ctx, compare.NewEngine(opts), results, cfg.BatchConcurrency)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(batchOut)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	f, err := os.Create(batchOut)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", batchOut, err)
	}
	if err := batch.WriteJSONL(f, outcomes); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", batchOut, err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintBatchSummary(outcomes)
	}

	summary := batch.Summarize(outcomes)
	if summary.Failed > 0 {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d of %d records could not be compared\n", summary.Failed, summary.Total)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Compared %d records (mean similarity %.1f%%) to %s\n",
		summary.Succeeded, summary.MeanSimilarity, batchOut)
	return nil
}
