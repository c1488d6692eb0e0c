package compare

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// tokenRuneBase is the first rune used to encode tokens. Starting in the
// private use area keeps every encoded rune clear of the surrogate range.
const tokenRuneBase = 0xE000

// tokenEncoder maps distinct tokens to single runes so diffmatchpatch can
// align token sequences the same way DiffLinesToChars aligns lines.
type tokenEncoder struct {
	index  map[string]rune
	tokens []string
}

func newTokenEncoder() *tokenEncoder {
	return &tokenEncoder{index: make(map[string]rune)}
}

func (e *tokenEncoder) encode(tokens []string) []rune {
	runes := make([]rune, len(tokens))
	for i, token := range tokens {
		r, ok := e.index[token]
		if !ok {
			r = rune(tokenRuneBase + len(e.tokens))
			e.index[token] = r
			e.tokens = append(e.tokens, token)
		}
		runes[i] = r
	}
	return runes
}

func (e *tokenEncoder) decode(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, e.tokens[r-tokenRuneBase])
	}
	return out
}

// ComputeOptimalWordDiff aligns the same whitespace-preserving tokens as
// ComputeWordDiff but uses a Myers diff, so the result is a minimal edit
// script. Adjacent delete/insert runs are paired into changed segments; any
// surplus on either side becomes removed or added segments.
func ComputeOptimalWordDiff(textA, textB string) []DiffSegment {
	a := tokenize(textA)
	b := tokenize(textB)
	if len(a) == 0 || len(b) == 0 {
		return greedyDiff(a, b)
	}

	enc := newTokenEncoder()
	runesA := enc.encode(a)
	runesB := enc.encode(b)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(runesA, runesB, false)

	segments := make([]DiffSegment, 0, max(len(a), len(b)))
	var deleted, inserted []string

	flush := func() {
		paired := min(len(deleted), len(inserted))
		for k := 0; k < paired; k++ {
			segments = append(segments, changedSegment(deleted[k], inserted[k]))
		}
		for _, token := range deleted[paired:] {
			segments = append(segments, removedSegment(token))
		}
		for _, token := range inserted[paired:] {
			segments = append(segments, addedSegment(token))
		}
		deleted = deleted[:0]
		inserted = inserted[:0]
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for _, token := range enc.decode(d.Text) {
				segments = append(segments, equalSegment(token))
			}
		case diffmatchpatch.DiffDelete:
			deleted = append(deleted, enc.decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			inserted = append(inserted, enc.decode(d.Text)...)
		}
	}
	flush()

	return segments
}
