package compare

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenize splits text into alternating word and whitespace-run tokens.
// Whitespace runs are kept as tokens so the original text can be rebuilt.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	tokens := make([]string, 0, len(text)/4+1)
	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			tokens = append(tokens, text[start:i])
			start = i
			inSpace = space
		}
	}
	tokens = append(tokens, text[start:])
	return tokens
}

// ComputeWordDiff aligns the tokens of textA and textB with a single forward
// pass and a one-token lookahead. It runs in linear time and does not try to
// find a minimal edit script; see ComputeOptimalWordDiff for that.
func ComputeWordDiff(textA, textB string) []DiffSegment {
	return greedyDiff(tokenize(textA), tokenize(textB))
}

func greedyDiff(a, b []string) []DiffSegment {
	segments := make([]DiffSegment, 0, max(len(a), len(b)))
	i, j := 0, 0

	for i < len(a) || j < len(b) {
		switch {
		case i >= len(a):
			segments = append(segments, addedSegment(b[j]))
			j++
		case j >= len(b):
			segments = append(segments, removedSegment(a[i]))
			i++
		case a[i] == b[j]:
			segments = append(segments, equalSegment(a[i]))
			i++
			j++
		default:
			nextAMatches := i+1 < len(a) && a[i+1] == b[j]
			nextBMatches := j+1 < len(b) && b[j+1] == a[i]

			switch {
			case nextAMatches && !nextBMatches:
				segments = append(segments, removedSegment(a[i]))
				i++
			case nextBMatches && !nextAMatches:
				segments = append(segments, addedSegment(b[j]))
				j++
			default:
				// Neither lookahead resolves the mismatch, or both do: a plain substitution.
				segments = append(segments, changedSegment(a[i], b[j]))
				i++
				j++
			}
		}
	}

	return segments
}

// SideA rebuilds text A from a segment sequence.
func SideA(segments []DiffSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		if token, ok := seg.SideA(); ok {
			sb.WriteString(token)
		}
	}
	return sb.String()
}

// SideB rebuilds text B from a segment sequence.
func SideB(segments []DiffSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		if token, ok := seg.SideB(); ok {
			sb.WriteString(token)
		}
	}
	return sb.String()
}

// charCount returns the length of s in characters rather than bytes
func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
