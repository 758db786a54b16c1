package export

import (
	"os"
	"strings"
	"testing"

	"agentview/internal/logview"
)

func sampleSummary() logview.Summary {
	return logview.Summary{
		ID:           "S1",
		File:         "S1.jsonl",
		StartTime:    "2024-01-01T00:00:00Z",
		LastActivity: "2024-01-01T01:00:00Z",
		Model:        "m1",
		Provider:     "acme",
		MessageCount: 2,
		Tokens:       logview.TokenUsage{Input: 10, Output: 20, Total: 30},
	}
}

func sampleEntries() []logview.Entry {
	return []logview.Entry{
		{Kind: logview.EntryUser, Content: "do the thing"},
		{Kind: logview.EntryToolCall, ToolName: "bash", Content: `{"command":"ls"}`},
		{Kind: logview.EntryToolResult, ToolName: "bash", Content: "file.go"},
		{Kind: logview.EntryModelChange, Content: "Model → acme/m2"},
		{Kind: logview.EntryAssistant, Content: "done"},
	}
}

func TestBuildSessionMarkdown(t *testing.T) {
	md := BuildSessionMarkdown(sampleSummary(), sampleEntries())

	for _, want := range []string{
		"# Session S1",
		"- Model: acme/m1",
		"- Tokens: 10 in / 20 out / 30 total",
		"## You\n\ndo the thing",
		"## Tool call (bash)",
		"```text\n{\"command\":\"ls\"}\n```",
		"## Tool result (bash)",
		"> Model → acme/m2",
		"## Agent\n\ndone",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBuildTranscriptMarkdownPreservesOrder(t *testing.T) {
	md := BuildTranscriptMarkdown(sampleEntries())
	youIdx := strings.Index(md, "## You")
	callIdx := strings.Index(md, "## Tool call")
	agentIdx := strings.Index(md, "## Agent")
	if !(youIdx < callIdx && callIdx < agentIdx) {
		t.Errorf("sections out of order: you=%d call=%d agent=%d", youIdx, callIdx, agentIdx)
	}
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	path, err := e.Export(sampleSummary(), sampleEntries())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(content), "# Session S1") {
		t.Error("exported file missing header")
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("export path %q not under %q", path, dir)
	}
}

func TestSafeFileStem(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"S1", "S1"},
		{"a/b c", "a-b-c"},
		{"  ", "session"},
		{"...", "session"},
	}
	for _, tt := range tests {
		if got := safeFileStem(tt.in); got != tt.want {
			t.Errorf("safeFileStem(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}
