// Package batch compares many benchmark records concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jonathan/respcompare/internal/compare"
	"github.com/jonathan/respcompare/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Run is given a non-positive concurrency
const DefaultConcurrency = 4

// Outcome is the result of comparing one record. Exactly one of Report and
// Error is set.
type Outcome struct {
	Index    int                     `json:"index"`
	ResultID uuid.UUID               `json:"result_id"`
	TestName string                  `json:"test_name,omitempty"`
	Report   *types.ComparisonReport `json:"report,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Failed reports whether the record could not be compared
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// Summary aggregates a batch of outcomes
type Summary struct {
	Total          int     `json:"total"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	MeanSimilarity float64 `json:"mean_similarity_percent"`
	OnlyInA        int     `json:"only_in_a"`
	OnlyInB        int     `json:"only_in_b"`
}

// Run compares every record with engine, at most concurrency at a time.
// Outcomes are returned in input order. Records rejected by the engine's size
// guard are reported on their Outcome; only context cancellation fails the batch.
func Run(ctx context.Context, engine *compare.Engine, results []types.BenchmarkResult, concurrency int) ([]Outcome, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomes := make([]Outcome, len(results))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range results {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			// each goroutine owns outcomes[i]
			outcomes[i] = compareOne(engine, i, &results[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	return outcomes, nil
}

func compareOne(engine *compare.Engine, index int, result *types.BenchmarkResult) Outcome {
	outcome := Outcome{
		Index:    index,
		ResultID: result.ID,
		TestName: result.TestName,
	}

	report, err := engine.Compare(result.ModeAResponse, result.ModeBResponse)
	if err != nil {
		var tooLarge *compare.InputTooLargeError
		if errors.As(err, &tooLarge) {
			outcome.Error = tooLarge.Error()
		} else {
			outcome.Error = fmt.Sprintf("failed to compare: %v", err)
		}
		return outcome
	}

	outcome.Report = types.NewComparisonReport(result.ID, result.TestName, report)
	return outcome
}

// Summarize counts successes and failures and averages similarity over the
// successful outcomes
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	var similarity float64
	for _, o := range outcomes {
		if o.Failed() {
			s.Failed++
			continue
		}
		s.Succeeded++
		similarity += o.Report.Stats.SimilarityPercent
		s.OnlyInA += len(o.Report.KeyPoints.OnlyInA)
		s.OnlyInB += len(o.Report.KeyPoints.OnlyInB)
	}
	if s.Succeeded > 0 {
		s.MeanSimilarity = math.Round(similarity/float64(s.Succeeded)*10) / 10
	}
	return s
}
