package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/respcompare/internal/types"
)

const benchmarkResultColumns = `id, test_name, prompt, mode_a_model, mode_b_model,
	mode_a_response, mode_b_response, created_at`

func scanBenchmarkResult(row pgx.Row) (*types.BenchmarkResult, error) {
	var r types.BenchmarkResult
	err := row.Scan(&r.ID, &r.TestName, &r.Prompt, &r.ModeAModel, &r.ModeBModel,
		&r.ModeAResponse, &r.ModeBResponse, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateBenchmarkResult stores a benchmark record and returns it with its
// assigned ID and creation time. A non-nil result.ID is kept.
func (db *DB) CreateBenchmarkResult(ctx context.Context, result *types.BenchmarkResult) (*types.BenchmarkResult, error) {
	id := result.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	created, err := scanBenchmarkResult(db.pool.QueryRow(ctx,
		`INSERT INTO benchmark_results (id, test_name, prompt, mode_a_model, mode_b_model,
		                                mode_a_response, mode_b_response)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+benchmarkResultColumns,
		id, result.TestName, result.Prompt, result.ModeAModel, result.ModeBModel,
		result.ModeAResponse, result.ModeBResponse,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create benchmark result: %w", err)
	}
	return created, nil
}

// GetBenchmarkResult retrieves a benchmark record by ID. Returns nil, nil when it does not exist.
func (db *DB) GetBenchmarkResult(ctx context.Context, id uuid.UUID) (*types.BenchmarkResult, error) {
	result, err := scanBenchmarkResult(db.pool.QueryRow(ctx,
		`SELECT `+benchmarkResultColumns+` FROM benchmark_results WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get benchmark result: %w", err)
	}
	return result, nil
}

// ListBenchmarkResults retrieves recent benchmark records with optional filters
func (db *DB) ListBenchmarkResults(ctx context.Context, filters BenchmarkResultFilters) ([]types.BenchmarkResult, error) {
	query := `SELECT ` + benchmarkResultColumns + ` FROM benchmark_results WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.TestName != "" {
		query += fmt.Sprintf(" AND test_name ILIKE $%d", argNum)
		args = append(args, "%"+filters.TestName+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.limit())

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark results: %w", err)
	}
	defer rows.Close()

	results := []types.BenchmarkResult{}
	for rows.Next() {
		r, err := scanBenchmarkResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benchmark result: %w", err)
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list benchmark results: %w", err)
	}
	return results, nil
}

// DeleteBenchmarkResult deletes a benchmark record and its comparisons (via cascade)
func (db *DB) DeleteBenchmarkResult(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM benchmark_results WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete benchmark result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("benchmark result %s: %w", id, ErrNotFound)
	}
	return nil
}
