// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords applies human-reviewed keyword merge suggestions to
// per-article keyword lists and builds the per-cluster topic artifacts
// that feed the graph.
package keywords

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/BlueBrain/citation-graph/internal/audit"
)

// SuggestionFormatError reports one malformed line in a merge
// suggestions file. It is not fatal: the loader skips the line, warns,
// and keeps the remaining suggestions.
type SuggestionFormatError struct {
	Path string
	Line int
	Err  error
}

func (e *SuggestionFormatError) Error() string {
	return fmt.Sprintf("%s line %d: malformed merge suggestion: %v", e.Path, e.Line, e.Err)
}

func (e *SuggestionFormatError) Unwrap() error { return e.Err }

// LoadSuggestions reads a JSONL merge suggestions file: each line is an
// object mapping a canonical keyword to the list of variants it
// replaces. Lines from later in the file extend earlier ones. Malformed
// lines are skipped with a warning and an audit record. A missing or
// empty path yields an empty map.
func LoadSuggestions(path string, log *zap.SugaredLogger, auditLog *audit.Log) (map[string][]string, error) {
	suggestions := make(map[string][]string)
	if path == "" {
		return suggestions, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return suggestions, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string][]string
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			ferr := &SuggestionFormatError{Path: path, Line: lineNo, Err: err}
			if log != nil {
				log.Warnw("skipping merge suggestion", "error", ferr)
			}
			auditLog.Record(audit.KindSuggestionSkipped, map[string]any{
				"path": path, "line": lineNo, "error": err.Error(),
			})
			continue
		}
		for canonical, variants := range entry {
			suggestions[canonical] = append(suggestions[canonical], variants...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return suggestions, nil
}

// Apply replaces every variant keyword with its canonical form and
// deduplicates each article's list, keeping first-occurrence order.
// Keywords without a suggestion pass through unchanged. For disjoint
// suggestion sets the result is independent of application order.
func Apply(articleKeywords map[string][]string, suggestions map[string][]string) map[string][]string {
	if len(suggestions) == 0 {
		return articleKeywords
	}

	canonical := make(map[string]string)
	for merged, variants := range suggestions {
		for _, variant := range variants {
			canonical[variant] = merged
		}
	}

	updated := make(map[string][]string, len(articleKeywords))
	for uid, kws := range articleKeywords {
		seen := make(map[string]bool, len(kws))
		out := make([]string, 0, len(kws))
		for _, kw := range kws {
			if merged, ok := canonical[kw]; ok {
				kw = merged
			}
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
		updated[uid] = out
	}
	return updated
}

// LoadArticleKeywords reads the article-to-keywords JSON map.
func LoadArticleKeywords(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	var keywords map[string][]string
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return keywords, nil
}

// SaveArticleKeywords writes the updated article keywords artifact.
// Keys come out sorted, so re-running on identical input is diff-stable.
func SaveArticleKeywords(path string, articleKeywords map[string][]string) error {
	data, err := json.MarshalIndent(articleKeywords, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
