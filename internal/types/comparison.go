package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/respcompare/internal/compare"
)

// ComparisonReport is the stored and emitted result of comparing the two
// responses of a benchmark record.
type ComparisonReport struct {
	ResultID    uuid.UUID                `json:"result_id"`
	TestName    string                   `json:"test_name,omitempty"`
	Mode        compare.Mode             `json:"mode"`
	Segments    []compare.DiffSegment    `json:"segments"`
	Stats       compare.DiffStats        `json:"stats"`
	KeyPoints   compare.KeyPointAnalysis `json:"key_points"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// NewComparisonReport wraps an engine report with the record it belongs to.
// resultID may be uuid.Nil for ad-hoc comparisons.
func NewComparisonReport(resultID uuid.UUID, testName string, report *compare.Report) *ComparisonReport {
	return &ComparisonReport{
		ResultID:    resultID,
		TestName:    testName,
		Mode:        report.Mode,
		Segments:    report.Segments,
		Stats:       report.Stats,
		KeyPoints:   report.KeyPoints,
		GeneratedAt: time.Now().UTC(),
	}
}
