package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit is used when a filter does not set Limit
const DefaultListLimit = 50

// BenchmarkResultFilters holds optional filters for listing benchmark records
type BenchmarkResultFilters struct {
	TestName string
	Limit    int
}

// ComparisonSummary is a lightweight view of a stored comparison for listing
type ComparisonSummary struct {
	ID                uuid.UUID `json:"id"`
	ResultID          uuid.UUID `json:"result_id"`
	Mode              string    `json:"mode"`
	SimilarityPercent float64   `json:"similarity_percent"`
	OnlyInACount      int       `json:"only_in_a_count"`
	OnlyInBCount      int       `json:"only_in_b_count"`
	CreatedAt         time.Time `json:"created_at"`
}

func (f BenchmarkResultFilters) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}
