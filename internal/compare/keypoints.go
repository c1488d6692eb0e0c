package compare

import (
	"strings"
)

const (
	// minSentenceLength is the shortest trimmed fragment, in characters, that
	// counts as a sentence.
	minSentenceLength = 20
	// matchThreshold is the Jaccard similarity a counterpart must exceed for a
	// sentence to be considered shared.
	matchThreshold = 0.6
)

// KeyPointAnalysis lists the sentences of each text that have no
// sufficiently similar counterpart in the other text.
type KeyPointAnalysis struct {
	OnlyInA []string `json:"only_in_a"`
	OnlyInB []string `json:"only_in_b"`
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// ExtractSentences splits text on runs of '.', '!' and '?' and keeps the
// trimmed fragments that are at least 20 characters long.
func ExtractSentences(text string) []string {
	fragments := strings.FieldsFunc(text, isSentenceTerminator)

	sentences := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if charCount(fragment) < minSentenceLength {
			continue
		}
		sentences = append(sentences, fragment)
	}
	return sentences
}

func wordSet(sentence string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(sentence))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Similarity returns the Jaccard similarity of the lower-cased word sets of
// a and b, or 0 when both are empty.
func Similarity(a, b string) float64 {
	return jaccard(wordSet(a), wordSet(b))
}

func jaccard(setA, setB map[string]struct{}) float64 {
	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// AnalyzeKeyPoints reports the sentences unique to each text. The cost is
// quadratic in the number of sentences.
func AnalyzeKeyPoints(textA, textB string) KeyPointAnalysis {
	sentencesA := ExtractSentences(textA)
	sentencesB := ExtractSentences(textB)

	setsA := make([]map[string]struct{}, len(sentencesA))
	for i, s := range sentencesA {
		setsA[i] = wordSet(s)
	}
	setsB := make([]map[string]struct{}, len(sentencesB))
	for i, s := range sentencesB {
		setsB[i] = wordSet(s)
	}

	return KeyPointAnalysis{
		OnlyInA: unmatched(sentencesA, setsA, setsB),
		OnlyInB: unmatched(sentencesB, setsB, setsA),
	}
}

// unmatched returns the sentences whose word set exceeds matchThreshold
// against none of the other side's word sets, in their original order.
func unmatched(sentences []string, sets, others []map[string]struct{}) []string {
	out := []string{}
	for i, sentence := range sentences {
		found := false
		for _, other := range others {
			if jaccard(sets[i], other) > matchThreshold {
				found = true
				break
			}
		}
		if !found {
			out = append(out, sentence)
		}
	}
	return out
}
