// Package compare provides the word-level diff and key-point extraction used to
// compare the Mode A and Mode B responses of a benchmark run.
package compare

// SegmentKind classifies a single diff segment
type SegmentKind string

const (
	// KindEqual marks a token present at the same position in both texts
	KindEqual SegmentKind = "equal"
	// KindAdded marks a token only present in text B
	KindAdded SegmentKind = "added"
	// KindRemoved marks a token only present in text A
	KindRemoved SegmentKind = "removed"
	// KindChanged marks a token of text A substituted by a token of text B
	KindChanged SegmentKind = "changed"
)

// DiffSegment is one classified unit of a word-level comparison.
// Text is set for equal segments, TextA for removed and changed segments,
// TextB for added and changed segments.
type DiffSegment struct {
	Kind  SegmentKind `json:"kind"`
	Text  string      `json:"text,omitempty"`
	TextA string      `json:"text_a,omitempty"`
	TextB string      `json:"text_b,omitempty"`
}

func equalSegment(token string) DiffSegment {
	return DiffSegment{Kind: KindEqual, Text: token}
}

func addedSegment(token string) DiffSegment {
	return DiffSegment{Kind: KindAdded, TextB: token}
}

func removedSegment(token string) DiffSegment {
	return DiffSegment{Kind: KindRemoved, TextA: token}
}

func changedSegment(tokenA, tokenB string) DiffSegment {
	return DiffSegment{Kind: KindChanged, TextA: tokenA, TextB: tokenB}
}

// SideA returns the left-hand token contributed by the segment, if any.
func (s DiffSegment) SideA() (string, bool) {
	switch s.Kind {
	case KindEqual:
		return s.Text, true
	case KindRemoved, KindChanged:
		return s.TextA, true
	default:
		return "", false
	}
}

// SideB returns the right-hand token contributed by the segment, if any.
func (s DiffSegment) SideB() (string, bool) {
	switch s.Kind {
	case KindEqual:
		return s.Text, true
	case KindAdded, KindChanged:
		return s.TextB, true
	default:
		return "", false
	}
}
