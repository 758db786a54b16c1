package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// highlightResult carries the highlighted text plus the line numbers where
// matches were found, for viewport jumps.
type highlightResult struct {
	Text  string
	Lines []int
}

// highlightMatches marks case-insensitive occurrences of query in text.
// Glamour output is full of escape sequences, so matching runs against the
// stripped form of each line. Plain lines get the style spliced in; styled
// lines are only recorded as match positions, since splicing inside an
// existing sequence would corrupt it.
func highlightMatches(text, query string, style func(string) string) highlightResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return highlightResult{Text: text}
	}
	lowerQuery := strings.ToLower(query)

	lines := strings.Split(text, "\n")
	var matchLines []int
	for i, line := range lines {
		plain := ansi.Strip(line)
		if !strings.Contains(strings.ToLower(plain), lowerQuery) {
			continue
		}
		matchLines = append(matchLines, i)
		if plain == line {
			lines[i] = spliceHighlights(line, lowerQuery, style)
		}
	}
	return highlightResult{Text: strings.Join(lines, "\n"), Lines: matchLines}
}

func spliceHighlights(line, lowerQuery string, style func(string) string) string {
	lower := strings.ToLower(line)
	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(lower[pos:], lowerQuery)
		if idx < 0 {
			b.WriteString(line[pos:])
			return b.String()
		}
		start := pos + idx
		end := start + len(lowerQuery)
		b.WriteString(line[pos:start])
		b.WriteString(style(line[start:end]))
		pos = end
	}
}
