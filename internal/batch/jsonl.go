package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jonathan/respcompare/internal/types"
)

// maxLineBytes fits two responses at the default size guard with room for
// multi-byte characters and JSON escaping
const maxLineBytes = 4 << 20

// LoadJSONL reads benchmark records from a file, one JSON object per line
func LoadJSONL(path string) ([]types.BenchmarkResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadJSONL(f)
}

// ReadJSONL parses benchmark records from r. Blank lines are ignored and
// lines that are not valid JSON are skipped with a warning.
func ReadJSONL(r io.Reader) ([]types.BenchmarkResult, error) {
	results := []types.BenchmarkResult{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var result types.BenchmarkResult
		if err := json.Unmarshal([]byte(line), &result); err != nil {
			log.Printf("Warning: Skipping invalid JSON at line %d: %v", lineNum, err)
			continue
		}
		results = append(results, result)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return results, nil
}

// WriteJSONL writes one outcome per line
func WriteJSONL(w io.Writer, outcomes []Outcome) error {
	enc := json.NewEncoder(w)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			return fmt.Errorf("failed to write outcome %d: %w", o.Index, err)
		}
	}
	return nil
}
