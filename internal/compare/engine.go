package compare

import "strings"

// Mode selects the word alignment strategy
type Mode string

const (
	// ModeGreedy is the linear single-pass alignment with one-token lookahead
	ModeGreedy Mode = "greedy"
	// ModeOptimal is a minimal edit script computed with a Myers diff
	ModeOptimal Mode = "optimal"
)

// DefaultMaxInputChars bounds each side of a comparison. Key-point analysis
// is quadratic in sentence count, so unbounded input is refused.
const DefaultMaxInputChars = 50000

// ParseMode converts a mode name into a Mode. The empty string selects ModeGreedy.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeGreedy:
		return ModeGreedy, nil
	case ModeOptimal:
		return ModeOptimal, nil
	default:
		return "", &UnknownModeError{Mode: s}
	}
}

// Options configures an Engine
type Options struct {
	Mode Mode
	// MaxInputChars is the per-side character limit. Zero disables the check.
	MaxInputChars int
}

// DefaultOptions returns greedy alignment with the default size guard
func DefaultOptions() Options {
	return Options{
		Mode:          ModeGreedy,
		MaxInputChars: DefaultMaxInputChars,
	}
}

// Report is the full comparison of two responses
type Report struct {
	Mode      Mode             `json:"mode"`
	Segments  []DiffSegment    `json:"segments"`
	Stats     DiffStats        `json:"stats"`
	KeyPoints KeyPointAnalysis `json:"key_points"`
}

// Engine runs comparisons with fixed options. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. An empty mode falls back to ModeGreedy.
func NewEngine(opts Options) *Engine {
	if opts.Mode == "" {
		opts.Mode = ModeGreedy
	}
	return &Engine{opts: opts}
}

// Mode returns the alignment mode used by the engine
func (e *Engine) Mode() Mode {
	return e.opts.Mode
}

// CheckSize reports whether either text exceeds the engine's size guard
func (e *Engine) CheckSize(textA, textB string) error {
	if e.opts.MaxInputChars <= 0 {
		return nil
	}
	if n := charCount(textA); n > e.opts.MaxInputChars {
		return &InputTooLargeError{Side: "A", Length: n, Limit: e.opts.MaxInputChars}
	}
	if n := charCount(textB); n > e.opts.MaxInputChars {
		return &InputTooLargeError{Side: "B", Length: n, Limit: e.opts.MaxInputChars}
	}
	return nil
}

// Diff aligns the two texts using the engine's mode
func (e *Engine) Diff(textA, textB string) []DiffSegment {
	if e.opts.Mode == ModeOptimal {
		return ComputeOptimalWordDiff(textA, textB)
	}
	return ComputeWordDiff(textA, textB)
}

// Compare runs the word diff, its statistics and the key-point analysis
func (e *Engine) Compare(textA, textB string) (*Report, error) {
	if err := e.CheckSize(textA, textB); err != nil {
		return nil, err
	}

	segments := e.Diff(textA, textB)
	return &Report{
		Mode:      e.opts.Mode,
		Segments:  segments,
		Stats:     ComputeDiffStats(segments),
		KeyPoints: AnalyzeKeyPoints(textA, textB),
	}, nil
}
