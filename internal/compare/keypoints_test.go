package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSentences(t *testing.T) {
	text := "First sentence is long enough!!! Short. Another long sentence here?"

	assert.Equal(t, []string{
		"First sentence is long enough",
		"Another long sentence here",
	}, ExtractSentences(text))
}

func TestExtractSentences_LengthFloor(t *testing.T) {
	// 20 characters is kept, 19 is dropped
	assert.Equal(t, []string{"abcdefghij abcdefghi"}, ExtractSentences("abcdefghij abcdefghi."))
	assert.Empty(t, ExtractSentences("abcdefghij abcdefgh."))
}

func TestExtractSentences_TrimsBeforeMeasuring(t *testing.T) {
	assert.Empty(t, ExtractSentences("        short one          ."))
}

func TestExtractSentences_NoTerminator(t *testing.T) {
	assert.Equal(t, []string{"a response without any terminator"}, ExtractSentences("  a response without any terminator  "))
}

func TestExtractSentences_Empty(t *testing.T) {
	assert.Empty(t, ExtractSentences(""))
	assert.Empty(t, ExtractSentences("...!!!???"))
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{name: "identical", a: "the quick brown fox", b: "the quick brown fox", expected: 1.0},
		{name: "case insensitive", a: "The Quick Brown Fox", b: "the quick brown fox", expected: 1.0},
		{name: "duplicates collapse", a: "go go go", b: "go", expected: 1.0},
		{name: "disjoint", a: "alpha beta", b: "gamma delta", expected: 0.0},
		{name: "partial", a: "alpha beta gamma delta", b: "alpha beta gamma epsilon", expected: 0.6},
		{name: "both empty", a: "", b: "", expected: 0.0},
		{name: "one empty", a: "alpha", b: "   ", expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestAnalyzeKeyPoints_DifferentTopics(t *testing.T) {
	result := AnalyzeKeyPoints(
		"This is a fairly long test sentence one.",
		"This is a completely different topic entirely today.",
	)

	assert.Equal(t, []string{"This is a fairly long test sentence one"}, result.OnlyInA)
	assert.Equal(t, []string{"This is a completely different topic entirely today"}, result.OnlyInB)
}

func TestAnalyzeKeyPoints_IdenticalText(t *testing.T) {
	s := "Caching reduces latency for repeated queries. The enhanced mode also adds retrieval context! Is that worth the cost?"

	result := AnalyzeKeyPoints(s, s)
	assert.Empty(t, result.OnlyInA)
	assert.Empty(t, result.OnlyInB)
}

func TestAnalyzeKeyPoints_ShortFragmentsOnly(t *testing.T) {
	result := AnalyzeKeyPoints("Ok. No. Yes.", "Ok. No. Yes.")
	assert.Empty(t, result.OnlyInA)
	assert.Empty(t, result.OnlyInB)

	// The fragment-only side contributes nothing; the other side has no counterpart.
	result = AnalyzeKeyPoints("Ok. No. Yes.", "This sentence is definitely long enough.")
	assert.Empty(t, result.OnlyInA)
	assert.Equal(t, []string{"This sentence is definitely long enough"}, result.OnlyInB)
}

func TestAnalyzeKeyPoints_EmptyInputs(t *testing.T) {
	result := AnalyzeKeyPoints("", "")
	assert.NotNil(t, result.OnlyInA)
	assert.NotNil(t, result.OnlyInB)
	assert.Empty(t, result.OnlyInA)
	assert.Empty(t, result.OnlyInB)
}

func TestAnalyzeKeyPoints_ThresholdIsStrict(t *testing.T) {
	// Similarity of exactly 0.6 is not a match
	result := AnalyzeKeyPoints("alpha beta gamma delta.", "alpha beta gamma epsilon.")
	assert.Equal(t, []string{"alpha beta gamma delta"}, result.OnlyInA)
	assert.Equal(t, []string{"alpha beta gamma epsilon"}, result.OnlyInB)

	// 4/6 is above the threshold
	result = AnalyzeKeyPoints("alpha beta gamma delta epsilon.", "alpha beta gamma delta zeta.")
	assert.Empty(t, result.OnlyInA)
	assert.Empty(t, result.OnlyInB)
}

func TestAnalyzeKeyPoints_PreservesOrder(t *testing.T) {
	textA := "Shared opening sentence about the benchmark. " +
		"Zebra facts appear only in the first response. " +
		"Another unique claim about apples and oranges."
	textB := "Shared opening sentence about the benchmark."

	result := AnalyzeKeyPoints(textA, textB)
	assert.Equal(t, []string{
		"Zebra facts appear only in the first response",
		"Another unique claim about apples and oranges",
	}, result.OnlyInA)
	assert.Empty(t, result.OnlyInB)
}

func TestAnalyzeKeyPoints_Invariant(t *testing.T) {
	textA := "The enhanced pipeline retrieves three documents. It then ranks them by recency. Finally it summarises the answer."
	textB := "The enhanced pipeline retrieves five documents. Ranking is skipped entirely in this mode. Finally it summarises the answer."

	result := AnalyzeKeyPoints(textA, textB)
	for _, s := range result.OnlyInA {
		for _, other := range ExtractSentences(textB) {
			assert.LessOrEqual(t, Similarity(s, other), matchThreshold)
		}
	}
	for _, s := range result.OnlyInB {
		for _, other := range ExtractSentences(textA) {
			assert.LessOrEqual(t, Similarity(s, other), matchThreshold)
		}
	}
	assert.NotContains(t, result.OnlyInA, "Finally it summarises the answer")
}
