package logview

import "strings"

const (
	maxEntryText     = 2000
	maxEntryArgs     = 1000
	maxResultPreview = 500
)

// BuildTranscript maps one session's records to display entries, one entry
// per unit, in file order. No reordering happens within a file.
func BuildTranscript(records []Record) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		switch rec.Type {
		case "model_change":
			entries = append(entries, Entry{
				Kind:    EntryModelChange,
				Content: "Model → " + rec.Provider + "/" + rec.ModelID,
			})
		case "message":
			if rec.Message == nil {
				continue
			}
			entries = appendMessageEntries(entries, rec.Message)
		}
	}
	return entries
}

func appendMessageEntries(entries []Entry, msg *MessageBody) []Entry {
	kind := roleKind(msg.Role)

	if msg.Content.IsText {
		return append(entries, Entry{Kind: kind, Content: Truncate(msg.Content.Text, maxEntryText)})
	}

	for _, block := range msg.Content.Blocks {
		switch block.Type {
		case "text":
			if strings.TrimSpace(block.Text) == "" {
				continue
			}
			entries = append(entries, Entry{Kind: kind, Content: Truncate(block.Text, maxEntryText)})
		case "toolCall":
			entries = append(entries, Entry{
				Kind:     EntryToolCall,
				ToolName: block.ToolName,
				Content:  Truncate(compactArgs(block.Args), maxEntryArgs),
			})
		case "toolResult":
			entries = append(entries, Entry{
				Kind:     EntryToolResult,
				ToolName: block.ToolName,
				Content:  Truncate(block.Content.Preview(), maxResultPreview),
			})
		}
	}
	return entries
}

func roleKind(role string) string {
	switch role {
	case "user":
		return EntryUser
	case "assistant":
		return EntryAssistant
	default:
		return EntrySystem
	}
}
