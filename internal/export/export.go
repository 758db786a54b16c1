// Package export renders derived views as markdown and writes transcript
// export files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"agentview/internal/logview"
)

type Exporter struct {
	dir string
}

func New(dir string) *Exporter {
	return &Exporter{dir: strings.TrimSpace(dir)}
}

// Export writes the session transcript as a timestamped markdown file and
// returns the path.
func (e *Exporter) Export(summary logview.Summary, entries []logview.Entry) (string, error) {
	dir := e.dir
	if dir == "" {
		dir = "exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.md", safeFileStem(summary.ID), time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	md := BuildSessionMarkdown(summary, entries)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// BuildSessionMarkdown renders a header block followed by the transcript.
func BuildSessionMarkdown(summary logview.Summary, entries []logview.Entry) string {
	var b strings.Builder
	b.WriteString("# Session " + summary.ID + "\n\n")
	b.WriteString("- Started: " + orNA(summary.StartTime) + "\n")
	b.WriteString("- Last activity: " + orNA(summary.LastActivity) + "\n")
	if summary.Model != "" {
		b.WriteString("- Model: " + summary.Provider + "/" + summary.Model + "\n")
	}
	b.WriteString(fmt.Sprintf("- Messages: %d\n", summary.MessageCount))
	if summary.Tokens.Total > 0 {
		b.WriteString(fmt.Sprintf("- Tokens: %d in / %d out / %d total\n",
			summary.Tokens.Input, summary.Tokens.Output, summary.Tokens.Total))
	}
	if summary.Cost > 0 {
		b.WriteString(fmt.Sprintf("- Cost: $%.4f\n", summary.Cost))
	}
	for _, agent := range summary.SubAgents {
		b.WriteString("- Sub-agent: " + agent.Task + "\n")
	}
	b.WriteString("\n")
	b.WriteString(BuildTranscriptMarkdown(entries))
	return b.String()
}

// BuildTranscriptMarkdown renders transcript entries as markdown sections,
// in entry order.
func BuildTranscriptMarkdown(entries []logview.Entry) string {
	var b strings.Builder
	for _, entry := range entries {
		content := strings.TrimSpace(entry.Content)
		switch entry.Kind {
		case logview.EntryModelChange:
			b.WriteString("> " + content + "\n\n")
		case logview.EntryUser:
			b.WriteString("## You\n\n" + content + "\n\n")
		case logview.EntryAssistant:
			b.WriteString("## Agent\n\n" + content + "\n\n")
		case logview.EntrySystem:
			b.WriteString("## System\n\n" + content + "\n\n")
		case logview.EntryToolCall:
			b.WriteString("## Tool call (" + entry.ToolName + ")\n\n")
			writeFenced(&b, content)
		case logview.EntryToolResult:
			b.WriteString("## Tool result (" + entry.ToolName + ")\n\n")
			writeFenced(&b, content)
		}
	}
	return strings.TrimSpace(b.String()) + "\n"
}

func writeFenced(b *strings.Builder, content string) {
	b.WriteString("```text\n")
	b.WriteString(content)
	b.WriteString("\n```\n\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "n/a"
	}
	return s
}

var unsafeStemRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safeFileStem(id string) string {
	stem := unsafeStemRe.ReplaceAllString(strings.TrimSpace(id), "-")
	stem = strings.Trim(stem, "-.")
	if stem == "" {
		return "session"
	}
	return stem
}
