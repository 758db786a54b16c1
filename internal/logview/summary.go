package logview

import "encoding/json"

const subAgentTaskLimit = 200

// Summarize folds one session's records into a Summary. A file whose first
// record is not a session header is not a session and yields no summary.
func Summarize(file string, records []Record) (Summary, bool) {
	if len(records) == 0 || records[0].Type != "session" {
		return Summary{}, false
	}

	head := records[0]
	s := Summary{
		ID:           head.ID,
		File:         file,
		StartTime:    head.Timestamp,
		LastActivity: head.Timestamp,
	}

	for _, rec := range records {
		// Timestamps are compared as strings; the runtime writes zero-padded
		// ISO-8601, so lexicographic order is chronological order.
		if rec.Timestamp > s.LastActivity {
			s.LastActivity = rec.Timestamp
		}

		switch rec.Type {
		case "model_change":
			if rec.ModelID != "" {
				s.Model = rec.ModelID
			}
			if rec.Provider != "" {
				s.Provider = rec.Provider
			}
		case "custom":
			if rec.CustomType == "model-snapshot" && rec.Data != nil {
				if rec.Data.ModelID != "" {
					s.Model = rec.Data.ModelID
				}
				if rec.Data.Provider != "" {
					s.Provider = rec.Data.Provider
				}
			}
		case "message":
			s.MessageCount++
			msg := rec.Message
			if msg == nil {
				continue
			}
			if s.Channel == "" && msg.Channel != "" {
				s.Channel = msg.Channel
			}
			if u := msg.Usage; u != nil {
				s.Tokens.Input += u.Input
				s.Tokens.Output += u.Output
				s.Tokens.CacheRead += u.CacheRead
				s.Tokens.Total += u.TotalTokens
				if u.Cost != nil {
					s.Cost += u.Cost.Total
				}
			}
			for _, block := range msg.Content.Blocks {
				if block.Type != "toolCall" {
					continue
				}
				if block.ToolName == "sessions_spawn" || block.ToolName == "subagents" {
					s.SubAgents = append(s.SubAgents, subAgentFromCall(block, rec.Timestamp, s.LastActivity))
				}
			}
		}
	}
	return s, true
}

func subAgentFromCall(block Block, timestamp, lastActivity string) SubAgent {
	agent := SubAgent{Timestamp: timestamp}
	if agent.Timestamp == "" {
		agent.Timestamp = lastActivity
	}

	var args struct {
		Task    string `json:"task"`
		Message string `json:"message"`
		Model   string `json:"model"`
	}
	_ = json.Unmarshal(block.Args, &args)
	agent.Model = args.Model

	task := args.Task
	if task == "" {
		task = args.Message
	}
	if task == "" {
		task = compactArgs(block.Args)
	}
	agent.Task = Truncate(task, subAgentTaskLimit)
	return agent
}
