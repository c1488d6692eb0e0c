package compare

import "math"

// DiffStats aggregates the segment kinds of a diff
type DiffStats struct {
	Added             int     `json:"added"`
	Removed           int     `json:"removed"`
	Changed           int     `json:"changed"`
	Equal             int     `json:"equal"`
	Total             int     `json:"total"`
	SimilarityPercent float64 `json:"similarity_percent"`
}

// ComputeDiffStats counts segments by kind. SimilarityPercent is the share of
// equal segments rounded to one decimal, and 0 for an empty diff.
func ComputeDiffStats(segments []DiffSegment) DiffStats {
	var stats DiffStats
	for _, seg := range segments {
		switch seg.Kind {
		case KindAdded:
			stats.Added++
		case KindRemoved:
			stats.Removed++
		case KindChanged:
			stats.Changed++
		case KindEqual:
			stats.Equal++
		}
	}

	stats.Total = stats.Added + stats.Removed + stats.Changed + stats.Equal
	if stats.Total > 0 {
		stats.SimilarityPercent = roundOneDecimal(float64(stats.Equal) / float64(stats.Total) * 100)
	}
	return stats
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
