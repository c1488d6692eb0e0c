package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/respcompare/internal/types"
)

// SaveComparison stores a comparison report for a benchmark record. A report
// for the same record and mode replaces the previous one.
func (db *DB) SaveComparison(ctx context.Context, report *types.ComparisonReport) error {
	content, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO comparisons (result_id, mode, similarity_percent, only_in_a_count, only_in_b_count, content)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (result_id, mode) DO UPDATE
		 SET similarity_percent = $3, only_in_a_count = $4, only_in_b_count = $5,
		     content = $6, created_at = NOW()`,
		report.ResultID, string(report.Mode), report.Stats.SimilarityPercent,
		len(report.KeyPoints.OnlyInA), len(report.KeyPoints.OnlyInB), content,
	)
	if err != nil {
		return fmt.Errorf("failed to save comparison for %s: %w", report.ResultID, err)
	}
	return nil
}

// GetComparison retrieves the stored report for a benchmark record and mode.
// Returns nil, nil when none has been saved.
func (db *DB) GetComparison(ctx context.Context, resultID uuid.UUID, mode string) (*types.ComparisonReport, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM comparisons WHERE result_id = $1 AND mode = $2`,
		resultID, mode,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}

	var report types.ComparisonReport
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comparison: %w", err)
	}
	return &report, nil
}

// ListComparisons retrieves summaries of every stored comparison for a benchmark record
func (db *DB) ListComparisons(ctx context.Context, resultID uuid.UUID) ([]ComparisonSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, result_id, mode, similarity_percent, only_in_a_count, only_in_b_count, created_at
		 FROM comparisons WHERE result_id = $1 ORDER BY created_at DESC`,
		resultID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}
	defer rows.Close()

	summaries := []ComparisonSummary{}
	for rows.Next() {
		var s ComparisonSummary
		if err := rows.Scan(&s.ID, &s.ResultID, &s.Mode, &s.SimilarityPercent,
			&s.OnlyInACount, &s.OnlyInBCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}
	return summaries, nil
}
