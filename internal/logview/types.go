package logview

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Record is one decoded log line. The runtime writes heterogeneous events to
// the same file; which fields are populated depends on Type.
type Record struct {
	Type       string       `json:"type"`
	ID         string       `json:"id"`
	Timestamp  string       `json:"timestamp"`
	ModelID    string       `json:"modelId"`
	Provider   string       `json:"provider"`
	CustomType string       `json:"customType"`
	Data       *Snapshot    `json:"data"`
	Message    *MessageBody `json:"message"`
}

// Snapshot is the payload of a custom/model-snapshot event.
type Snapshot struct {
	ModelID  string `json:"modelId"`
	Provider string `json:"provider"`
}

type MessageBody struct {
	Role    string  `json:"role"`
	Channel string  `json:"channel"`
	Usage   *Usage  `json:"usage"`
	Content Content `json:"content"`
}

type Usage struct {
	Input       int64 `json:"input"`
	Output      int64 `json:"output"`
	CacheRead   int64 `json:"cacheRead"`
	TotalTokens int64 `json:"totalTokens"`
	Cost        *Cost `json:"cost"`
}

type Cost struct {
	Total float64 `json:"total"`
}

// Content is either a plain string body or an ordered list of blocks.
// A shape that is neither leaves the zero value; decoding never fails so a
// surprising content field cannot take down the whole line.
type Content struct {
	Text   string
	Blocks []Block
	IsText bool
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			c.Text = s
			c.IsText = true
		}
		return nil
	}
	if data[0] == '[' {
		var blocks []Block
		if err := json.Unmarshal(data, &blocks); err == nil {
			c.Blocks = blocks
		}
		return nil
	}
	return nil
}

// Block is a tagged variant inside array content: "text", "toolCall" or
// "toolResult". Unknown tags decode fine and are skipped by the folds.
type Block struct {
	Type       string          `json:"type"`
	Text       string          `json:"text"`
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args"`
	Content    ResultContent   `json:"content"`
}

// ResultContent is a toolResult payload: a plain string, or a list of
// text sub-blocks whose texts are concatenated for previews.
type ResultContent struct {
	Text   string
	Blocks []resultBlock
	IsText bool
}

type resultBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (r *ResultContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			r.Text = s
			r.IsText = true
		}
		return nil
	}
	if data[0] == '[' {
		var blocks []resultBlock
		if err := json.Unmarshal(data, &blocks); err == nil {
			r.Blocks = blocks
		}
		return nil
	}
	return nil
}

// Preview flattens the result content to display text.
func (r ResultContent) Preview() string {
	if r.IsText {
		return r.Text
	}
	parts := make([]string, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// TokenUsage aggregates usage counters across a session's messages.
type TokenUsage struct {
	Input     int64 `json:"input"`
	Output    int64 `json:"output"`
	CacheRead int64 `json:"cacheRead"`
	Total     int64 `json:"total"`
}

// SubAgent is one spawn detected inside a sessions_spawn/subagents tool call.
type SubAgent struct {
	Task      string `json:"task"`
	Model     string `json:"model,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Summary is the folded view of one session file. Immutable once built.
type Summary struct {
	ID           string     `json:"id"`
	File         string     `json:"file"`
	StartTime    string     `json:"startTime"`
	LastActivity string     `json:"lastActivity"`
	Model        string     `json:"model,omitempty"`
	Provider     string     `json:"provider,omitempty"`
	Channel      string     `json:"channel,omitempty"`
	MessageCount int        `json:"messageCount"`
	Tokens       TokenUsage `json:"tokenUsage"`
	Cost         float64    `json:"cost"`
	SubAgents    []SubAgent `json:"subAgents,omitempty"`
}

// Entry is one display unit of a transcript, in file order.
type Entry struct {
	Kind     string `json:"kind"`
	ToolName string `json:"toolName,omitempty"`
	Content  string `json:"content"`
}

const (
	EntryModelChange = "model_change"
	EntryUser        = "user"
	EntryAssistant   = "assistant"
	EntrySystem      = "system"
	EntryToolCall    = "tool_call"
	EntryToolResult  = "tool_result"
)

// Command is one tool call flattened out of the recent session files.
type Command struct {
	SessionID     string `json:"sessionId"`
	File          string `json:"file"`
	Timestamp     string `json:"timestamp"`
	ToolName      string `json:"toolName"`
	Args          string `json:"args"`
	ResultPreview string `json:"resultPreview"`
}
