package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"agentview/internal/logview"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := Open(filepath.Join(t.TempDir(), "index.sqlite"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func writeLog(t *testing.T, dir, name, content string) logview.SessionFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return logview.SessionFile{Name: name, Path: path, ModTime: time.Now()}
}

func TestRebuildAndSearch(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLog(t, dir, "s1.jsonl",
		`{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}`+"\n"+
			`{"type":"message","message":{"role":"user","content":"refactor the decoder"}}`+"\n"+
			`{"type":"message","message":{"role":"assistant","content":"decoder refactored"}}`)
	f2 := writeLog(t, dir, "s2.jsonl",
		`{"type":"session","id":"S2","timestamp":"2024-01-02T00:00:00Z"}`+"\n"+
			`{"type":"message","message":{"role":"user","content":"write release notes"}}`)

	x := openTestIndex(t)
	if err := x.Rebuild(context.Background(), []logview.SessionFile{f1, f2}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	hits, err := x.Search("decoder", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d: %+v", len(hits), hits)
	}
	if hits[0].SessionID != "S1" || hits[0].File != "s1.jsonl" {
		t.Errorf("hit=%+v", hits[0])
	}
	if hits[0].Matches != 2 {
		t.Errorf("matches=%d, want 2", hits[0].Matches)
	}

	if hits, _ := x.Search("nonexistentterm", 10); len(hits) != 0 {
		t.Errorf("expected no hits, got %+v", hits)
	}
	if hits, _ := x.Search("   ", 10); hits != nil {
		t.Errorf("expected nil for blank query, got %+v", hits)
	}
}

func TestRebuildPrunesRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	f1 := writeLog(t, dir, "s1.jsonl",
		`{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}`+"\n"+
			`{"type":"message","message":{"role":"user","content":"ephemeral content"}}`)

	x := openTestIndex(t)
	if err := x.Rebuild(context.Background(), []logview.SessionFile{f1}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if hits, _ := x.Search("ephemeral", 10); len(hits) != 1 {
		t.Fatalf("expected hit before prune, got %d", len(hits))
	}

	if err := x.Rebuild(context.Background(), nil); err != nil {
		t.Fatalf("rebuild after removal: %v", err)
	}
	if hits, _ := x.Search("ephemeral", 10); len(hits) != 0 {
		t.Errorf("expected pruned file gone from index, got %+v", hits)
	}
}

func TestRebuildSkipsUnchangedThenPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	f := writeLog(t, dir, "s1.jsonl",
		`{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}`+"\n"+
			`{"type":"message","message":{"role":"user","content":"first version"}}`)

	x := openTestIndex(t)
	for i := 0; i < 2; i++ {
		if err := x.Rebuild(context.Background(), []logview.SessionFile{f}); err != nil {
			t.Fatalf("rebuild %d: %v", i, err)
		}
	}
	hits, _ := x.Search("first", 10)
	if len(hits) != 1 || hits[0].Matches != 1 {
		t.Fatalf("double rebuild duplicated rows: %+v", hits)
	}

	// Append a line and bump mtime so the file reads as changed.
	fh, err := os.OpenFile(f.Path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fh.WriteString("\n" + `{"type":"message","message":{"role":"user","content":"second version"}}`); err != nil {
		t.Fatal(err)
	}
	_ = fh.Close()
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(f.Path, future, future); err != nil {
		t.Fatal(err)
	}

	if err := x.Rebuild(context.Background(), []logview.SessionFile{f}); err != nil {
		t.Fatalf("rebuild after append: %v", err)
	}
	if hits, _ := x.Search("second", 10); len(hits) != 1 {
		t.Errorf("expected appended content indexed, got %+v", hits)
	}
}
