package logview

import "sort"

// ExtractCommands flattens tool calls out of the most recent session files.
// A call is paired with its result by toolCallId within the same message
// only; the runtime emits both in one message, so a result landing in a
// later message stays unmatched and the command keeps an empty preview.
func ExtractCommands(files []SessionFile, maxFiles, maxCommands int) []Command {
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	commands := make([]Command, 0, maxCommands)
	for _, file := range files {
		if maxCommands > 0 && len(commands) >= maxCommands {
			// Early stop is an optimization; the cap is re-applied after the
			// final sort either way.
			break
		}
		records := ReadRecords(file.Path)
		sessionID := sessionIDFor(file, records)
		for _, rec := range records {
			if rec.Type != "message" || rec.Message == nil {
				continue
			}
			commands = append(commands, messageCommands(rec, sessionID, file.Name)...)
		}
	}

	sort.SliceStable(commands, func(i, j int) bool {
		return commands[i].Timestamp > commands[j].Timestamp
	})
	if maxCommands > 0 && len(commands) > maxCommands {
		commands = commands[:maxCommands]
	}
	return commands
}

func messageCommands(rec Record, sessionID, fileName string) []Command {
	var calls []Command
	results := make(map[string]string)

	for _, block := range rec.Message.Content.Blocks {
		switch block.Type {
		case "toolCall":
			calls = append(calls, Command{
				SessionID: sessionID,
				File:      fileName,
				Timestamp: rec.Timestamp,
				ToolName:  block.ToolName,
				Args:      Truncate(compactArgs(block.Args), maxEntryArgs),
			})
		case "toolResult":
			if block.ToolCallID != "" {
				results[block.ToolCallID] = Truncate(block.Content.Preview(), maxResultPreview)
			}
		}
	}

	// Second pass attaches results; ids are only meaningful inside this
	// message, so the maps die with it.
	idx := 0
	for _, block := range rec.Message.Content.Blocks {
		if block.Type != "toolCall" {
			continue
		}
		if preview, ok := results[block.ToolCallID]; ok && block.ToolCallID != "" {
			calls[idx].ResultPreview = preview
		}
		idx++
	}
	return calls
}

func sessionIDFor(file SessionFile, records []Record) string {
	if len(records) > 0 && records[0].Type == "session" && records[0].ID != "" {
		return records[0].ID
	}
	return file.Name
}
