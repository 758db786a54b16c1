// Package logview reconstructs derived observability views from the agent
// runtime's append-only JSONL session logs. Every view is rebuilt from disk
// on each call; nothing here caches, persists, or shares state.
package logview

// Sessions summarizes the session files under dir, most recent first,
// capped at max. Files whose first record is not a session header are
// skipped.
func Sessions(dir string, max int) []Summary {
	files := ListSessionFiles(dir)
	summaries := make([]Summary, 0, len(files))
	for _, f := range files {
		if max > 0 && len(summaries) >= max {
			break
		}
		if s, ok := Summarize(f.Name, ReadRecords(f.Path)); ok {
			summaries = append(summaries, s)
		}
	}
	return summaries
}

// Transcript builds the transcript for a session reference (file name or
// prefix). The second return is false when no file matches.
func Transcript(dir, ref string) ([]Entry, bool) {
	file, ok := ResolveSessionFile(dir, ref)
	if !ok {
		return nil, false
	}
	return BuildTranscript(ReadRecords(file.Path)), true
}

// Session resolves a reference and summarizes it.
func Session(dir, ref string) (Summary, bool) {
	file, ok := ResolveSessionFile(dir, ref)
	if !ok {
		return Summary{}, false
	}
	return Summarize(file.Name, ReadRecords(file.Path))
}

// Commands returns the recent command stream across the newest session
// files, globally sorted by timestamp descending and capped.
func Commands(dir string, maxFiles, maxCommands int) []Command {
	return ExtractCommands(ListSessionFiles(dir), maxFiles, maxCommands)
}
