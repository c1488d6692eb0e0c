package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonathan/respcompare/internal/compare"
	"github.com/jonathan/respcompare/internal/config"
	"github.com/jonathan/respcompare/internal/observability"
	"github.com/jonathan/respcompare/internal/schemas"
	"github.com/jonathan/respcompare/internal/types"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two response files",
	Long:  "Compares the Mode A response in --a with the Mode B response in --b and writes a ComparisonReport JSON with the word diff, statistics and unique key points.",
	RunE:  runCompare,
}

var (
	compareA             string
	compareB             string
	compareOut           string
	compareName          string
	compareMode          string
	compareMaxInputChars int
	compareVerbose       bool
	compareVerify        bool
)

func init() {
	compareCmd.Flags().StringVarP(&compareA, "a", "a", "", "Path to the Mode A (baseline) response (required)")
	compareCmd.Flags().StringVarP(&compareB, "b", "b", "", "Path to the Mode B (enhanced) response (required)")
	compareCmd.Flags().StringVarP(&compareOut, "out", "o", "", "Path to output ComparisonReport JSON file (default: stdout)")
	compareCmd.Flags().StringVar(&compareName, "name", "", "Test name recorded in the report")
	compareCmd.Flags().StringVar(&compareMode, "mode", "", "Diff mode: greedy or optimal (default: greedy)")
	compareCmd.Flags().IntVar(&compareMaxInputChars, "max-input-chars", 0, "Per-side character limit (default: 50000)")
	compareCmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Print statistics, key points and the inline diff")
	compareCmd.Flags().BoolVar(&compareVerify, "verify", false, "Fail if the diff does not reproduce both inputs")

	if err := compareCmd.MarkFlagRequired("a"); err != nil {
		panic(fmt.Sprintf("failed to mark a flag as required: %v", err))
	}
	if err := compareCmd.MarkFlagRequired("b"); err != nil {
		panic(fmt.Sprintf("failed to mark b flag as required: %v", err))
	}

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, func(cfg *config.Config, changed func(string) bool) {
		if changed("mode") {
			cfg.Mode = compareMode
		}
		if changed("max-input-chars") {
			cfg.MaxInputChars = compareMaxInputChars
		}
		if changed("verbose") {
			cfg.Verbose = compareVerbose
		}
	})
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	textA, err := os.ReadFile(compareA)
	if err != nil {
		return fmt.Errorf("failed to read response file %s: %w", compareA, err)
	}
	textB, err := os.ReadFile(compareB)
	if err != nil {
		return fmt.Errorf("failed to read response file %s: %w", compareB, err)
	}

	engine := compare.NewEngine(opts)
	report, err := engine.Compare(string(textA), string(textB))
	if err != nil {
		return fmt.Errorf("failed to compare responses: %w", err)
	}

	if compareVerify {
		if err := verifyCoverage(report.Segments, string(textA), string(textB)); err != nil {
			return err
		}
	}

	doc := types.NewComparisonReport(uuid.Nil, compareName, report)
	jsonOutput, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison report to JSON: %w", err)
	}

	// Keep stdout clean for the JSON when no output file is given
	verboseOut := cmd.OutOrStdout()
	if compareOut == "" {
		verboseOut = cmd.ErrOrStderr()
	}
	if cfg.Verbose {
		printer := observability.NewPrinter(verboseOut)
		printer.PrintDiffStats(report.Stats)
		printer.PrintKeyPoints(report.KeyPoints)
		printer.PrintDiff(report.Segments)
	}

	if compareOut == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonOutput))
		return nil
	}

	if err := writeOutputFile(compareOut, jsonOutput); err != nil {
		return err
	}

	// Output validation is a safety check, not a requirement
	validateOutput(cmd.ErrOrStderr(), compareOut)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Compared responses (%.1f%% similar, %d/%d unique key points) to %s\n",
		report.Stats.SimilarityPercent, len(report.KeyPoints.OnlyInA), len(report.KeyPoints.OnlyInB), compareOut)
	return nil
}

// verifyCoverage checks that the diff reproduces both inputs exactly
func verifyCoverage(segments []compare.DiffSegment, textA, textB string) error {
	if got := compare.SideA(segments); got != textA {
		return fmt.Errorf("verification failed: diff does not reproduce text A (%d of %d characters)", len(got), len(textA))
	}
	if got := compare.SideB(segments); got != textB {
		return fmt.Errorf("verification failed: diff does not reproduce text B (%d of %d characters)", len(got), len(textB))
	}
	return nil
}

func writeOutputFile(path string, data []byte) error {
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

// validateOutput checks a written report against the ComparisonReport schema
// and prints a warning on failure. A missing schema file skips the check.
func validateOutput(warnOut io.Writer, path string) {
	schemaPath := schemas.ResolveSchemaPath(schemas.ComparisonReportSchema)
	if schemaPath == "" {
		return
	}
	if err := schemas.ValidateJSON(schemaPath, path); err != nil {
		_, _ = fmt.Fprintf(warnOut, "Warning: Output validation failed: %v\n", err)
	}
}
