// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/respcompare/internal/batch"
	"github.com/jonathan/respcompare/internal/compare"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// contentWidth is the usable width inside a box
	contentWidth = boxWidth - 4
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, contentWidth)))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to contentWidth characters
func pad(s string) string {
	if n := utf8.RuneCountInString(s); n < contentWidth {
		return s + strings.Repeat(" ", contentWidth-n)
	}
	return s
}

// truncate shortens s to at most max characters, marking the cut with "..."
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// PrintDiffStats outputs the segment counts and similarity of a comparison.
func (p *Printer) PrintDiffStats(stats compare.DiffStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", stats.SimilarityPercent))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Equal:    %d\n", stats.Equal))
	sb.WriteString(fmt.Sprintf("Changed:  %d\n", stats.Changed))
	sb.WriteString(fmt.Sprintf("Added:    %d\n", stats.Added))
	sb.WriteString(fmt.Sprintf("Removed:  %d\n", stats.Removed))
	sb.WriteString(fmt.Sprintf("Total:    %d", stats.Total))

	p.printBox("DIFF STATISTICS", sb.String())
}

// PrintKeyPoints outputs the sentences unique to each response.
func (p *Printer) PrintKeyPoints(kp compare.KeyPointAnalysis) {
	var sb strings.Builder
	writeSentences(&sb, "Only in A", kp.OnlyInA)
	sb.WriteString("\n")
	writeSentences(&sb, "Only in B", kp.OnlyInB)

	p.printBox("KEY POINTS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeSentences(sb *strings.Builder, label string, sentences []string) {
	sb.WriteString(fmt.Sprintf("%s (%d):\n", label, len(sentences)))
	if len(sentences) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	count := min(len(sentences), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", truncate(sentences[i], contentWidth-4)))
	}
	if len(sentences) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sentences)-maxItemsToShow))
	}
}

// FormatInlineDiff renders segments as a single text with removed tokens as
// [-a-], added tokens as {+b+} and changed tokens as [-a-]{+b+}.
func FormatInlineDiff(segments []compare.DiffSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case compare.KindEqual:
			sb.WriteString(seg.Text)
		case compare.KindRemoved:
			sb.WriteString("[-" + seg.TextA + "-]")
		case compare.KindAdded:
			sb.WriteString("{+" + seg.TextB + "+}")
		case compare.KindChanged:
			sb.WriteString("[-" + seg.TextA + "-]{+" + seg.TextB + "+}")
		}
	}
	return sb.String()
}

// PrintDiff outputs the inline diff wrapped to the box width.
func (p *Printer) PrintDiff(segments []compare.DiffSegment) {
	if len(segments) == 0 {
		p.printBox("WORD DIFF", "(both responses are empty)")
		return
	}
	p.printBox("WORD DIFF", wrap(FormatInlineDiff(segments), contentWidth))
}

// wrap breaks each line of s at word boundaries so no line exceeds width
// characters. Words longer than width are left for printBox to truncate.
func wrap(s string, width int) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(w) > width {
				out = append(out, current)
				current = w
				continue
			}
			current += " " + w
		}
		out = append(out, current)
	}
	return strings.Join(out, "\n")
}

// PrintBatchSummary outputs aggregate results of a batch run and lists failed records.
func (p *Printer) PrintBatchSummary(outcomes []batch.Outcome) {
	summary := batch.Summarize(outcomes)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Records:          %d\n", summary.Total))
	sb.WriteString(fmt.Sprintf("Compared:         %d\n", summary.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed:           %d\n", summary.Failed))
	sb.WriteString(fmt.Sprintf("Mean similarity:  %.1f%%\n", summary.MeanSimilarity))
	sb.WriteString(fmt.Sprintf("Key points A/B:   %d / %d\n", summary.OnlyInA, summary.OnlyInB))

	if summary.Failed > 0 {
		sb.WriteString("\nFailures:\n")
		shown := 0
		for _, o := range outcomes {
			if !o.Failed() {
				continue
			}
			if shown == maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", summary.Failed-maxItemsToShow))
				break
			}
			name := o.TestName
			if name == "" {
				name = fmt.Sprintf("record %d", o.Index)
			}
			sb.WriteString(fmt.Sprintf("⚠ %s\n", name))
			sb.WriteString(fmt.Sprintf("  %s\n", o.Error))
			shown++
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
