package logview

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// DecodeLines turns raw file content into decoded records, in file order.
// Blank lines and lines that fail to parse are dropped without signalling:
// the log may still be appended to by a live process, so a truncated final
// line is the normal case, not an error.
func DecodeLines(content string) []Record {
	lines := strings.Split(content, "\n")
	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Truncate caps s at limit runes, appending a single ellipsis rune when
// anything was cut. Idempotent on input already within the limit.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}

// compactArgs serializes raw tool-call arguments for display.
func compactArgs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}
