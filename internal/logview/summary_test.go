package logview

import (
	"strings"
	"testing"
)

func TestSummarizeBasicSession(t *testing.T) {
	content := `{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}` + "\n" +
		`{"type":"message","timestamp":"2024-01-01T00:05:00Z","message":{"role":"user","content":"hi","usage":{"input":5,"output":0}}}`

	s, ok := Summarize("S1.jsonl", DecodeLines(content))
	if !ok {
		t.Fatal("expected a summary")
	}
	if s.ID != "S1" {
		t.Errorf("id=%q, want S1", s.ID)
	}
	if s.File != "S1.jsonl" {
		t.Errorf("file=%q", s.File)
	}
	if s.MessageCount != 1 {
		t.Errorf("messageCount=%d, want 1", s.MessageCount)
	}
	if s.Tokens.Input != 5 {
		t.Errorf("tokenUsage.input=%d, want 5", s.Tokens.Input)
	}
	if s.StartTime != "2024-01-01T00:00:00Z" {
		t.Errorf("startTime=%q", s.StartTime)
	}
	if s.LastActivity != "2024-01-01T00:05:00Z" {
		t.Errorf("lastActivity=%q", s.LastActivity)
	}
}

func TestSummarizeRejectsNonSessionFirstRecord(t *testing.T) {
	content := `{"type":"message","timestamp":"2024-01-01T00:00:00Z","message":{"role":"user","content":"hi"}}` + "\n" +
		`{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}`
	if _, ok := Summarize("x.jsonl", DecodeLines(content)); ok {
		t.Error("file not starting with a session record must yield no summary")
	}
	if _, ok := Summarize("x.jsonl", nil); ok {
		t.Error("empty record sequence must yield no summary")
	}
}

func TestSummarizeTokenAccumulation(t *testing.T) {
	content := `{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}` + "\n" +
		`{"type":"message","message":{"role":"assistant","content":"a","usage":{"input":10,"output":20,"cacheRead":30,"totalTokens":60,"cost":{"total":0.5}}}}` + "\n" +
		`{"type":"message","message":{"role":"assistant","content":"b","usage":{"totalTokens":40,"cost":{"total":0.25}}}}` + "\n" +
		`{"type":"message","message":{"role":"user","content":"no usage here"}}`

	s, ok := Summarize("S1.jsonl", DecodeLines(content))
	if !ok {
		t.Fatal("expected a summary")
	}
	if s.MessageCount != 3 {
		t.Errorf("messageCount=%d, want 3", s.MessageCount)
	}
	if s.Tokens.Input != 10 || s.Tokens.Output != 20 || s.Tokens.CacheRead != 30 {
		t.Errorf("tokens=%+v", s.Tokens)
	}
	if s.Tokens.Total != 100 {
		t.Errorf("tokenUsage.total=%d, want 100", s.Tokens.Total)
	}
	if s.Cost != 0.75 {
		t.Errorf("cost=%v, want 0.75", s.Cost)
	}
}

func TestSummarizeModelLastWriteWins(t *testing.T) {
	content := `{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}` + "\n" +
		`{"type":"model_change","modelId":"m1","provider":"p1","timestamp":"2024-01-01T00:01:00Z"}` + "\n" +
		`{"type":"custom","customType":"model-snapshot","data":{"modelId":"m2","provider":"p2"}}` + "\n" +
		`{"type":"custom","customType":"other","data":{"modelId":"ignored","provider":"ignored"}}` + "\n" +
		`{"type":"model_change","modelId":"m3","timestamp":"2024-01-01T00:02:00Z"}`

	s, ok := Summarize("S1.jsonl", DecodeLines(content))
	if !ok {
		t.Fatal("expected a summary")
	}
	if s.Model != "m3" {
		t.Errorf("model=%q, want m3 (last model_change)", s.Model)
	}
	// The last model_change carried no provider, so the snapshot's survives.
	if s.Provider != "p2" {
		t.Errorf("provider=%q, want p2", s.Provider)
	}
}

func TestSummarizeChannelFirstWins(t *testing.T) {
	content := `{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}` + "\n" +
		`{"type":"message","message":{"role":"user","content":"a"}}` + "\n" +
		`{"type":"message","message":{"role":"user","channel":"first","content":"b"}}` + "\n" +
		`{"type":"message","message":{"role":"user","channel":"second","content":"c"}}`

	s, _ := Summarize("S1.jsonl", DecodeLines(content))
	if s.Channel != "first" {
		t.Errorf("channel=%q, want first", s.Channel)
	}
}

func TestSummarizeLastActivityIsMaxNotLast(t *testing.T) {
	content := `{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}` + "\n" +
		`{"type":"message","timestamp":"2024-01-01T09:00:00Z","message":{"role":"user","content":"a"}}` + "\n" +
		`{"type":"message","timestamp":"2024-01-01T03:00:00Z","message":{"role":"user","content":"b"}}`

	s, _ := Summarize("S1.jsonl", DecodeLines(content))
	if s.LastActivity != "2024-01-01T09:00:00Z" {
		t.Errorf("lastActivity=%q, want the maximum timestamp", s.LastActivity)
	}
}

func TestSummarizeSubAgents(t *testing.T) {
	content := `{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}` + "\n" +
		`{"type":"message","timestamp":"2024-01-01T00:01:00Z","message":{"role":"assistant","content":[{"type":"toolCall","toolCallId":"t1","toolName":"sessions_spawn","args":{"task":"review the diff","model":"fast"}}]}}` + "\n" +
		`{"type":"message","timestamp":"2024-01-01T00:02:00Z","message":{"role":"assistant","content":[{"type":"toolCall","toolCallId":"t2","toolName":"subagents","args":{"message":"fallback message"}}]}}` + "\n" +
		`{"type":"message","message":{"role":"assistant","content":[{"type":"toolCall","toolCallId":"t3","toolName":"subagents","args":{"action":"steer"}}]}}` + "\n" +
		`{"type":"message","timestamp":"2024-01-01T00:03:00Z","message":{"role":"assistant","content":[{"type":"toolCall","toolCallId":"t4","toolName":"bash","args":{"command":"ls"}}]}}`

	s, _ := Summarize("S1.jsonl", DecodeLines(content))
	if len(s.SubAgents) != 3 {
		t.Fatalf("expected 3 sub-agents, got %d", len(s.SubAgents))
	}
	if s.SubAgents[0].Task != "review the diff" || s.SubAgents[0].Model != "fast" {
		t.Errorf("subAgent[0]=%+v", s.SubAgents[0])
	}
	if s.SubAgents[0].Timestamp != "2024-01-01T00:01:00Z" {
		t.Errorf("subAgent[0].timestamp=%q", s.SubAgents[0].Timestamp)
	}
	if s.SubAgents[1].Task != "fallback message" {
		t.Errorf("subAgent[1].task=%q, want args.message fallback", s.SubAgents[1].Task)
	}
	if !strings.Contains(s.SubAgents[2].Task, `"action"`) {
		t.Errorf("subAgent[2].task=%q, want serialized args fallback", s.SubAgents[2].Task)
	}
	// Record without a timestamp falls back to the running lastActivity.
	if s.SubAgents[2].Timestamp != "2024-01-01T00:02:00Z" {
		t.Errorf("subAgent[2].timestamp=%q, want running lastActivity", s.SubAgents[2].Timestamp)
	}
}

func TestSummarizeLongSpawnArgsTruncated(t *testing.T) {
	long := strings.Repeat("a", 400)
	content := `{"type":"session","id":"S1","timestamp":"2024-01-01T00:00:00Z"}` + "\n" +
		`{"type":"message","message":{"role":"assistant","content":[{"type":"toolCall","toolCallId":"t1","toolName":"sessions_spawn","args":{"detail":"` + long + `"}}]}}`

	s, _ := Summarize("S1.jsonl", DecodeLines(content))
	if len(s.SubAgents) != 1 {
		t.Fatalf("expected 1 sub-agent, got %d", len(s.SubAgents))
	}
	if got := len([]rune(s.SubAgents[0].Task)); got != 201 {
		t.Errorf("task length=%d runes, want 200 plus ellipsis", got)
	}
}
