package memory

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Change is one recent commit touching the workspace.
type Change struct {
	Hash      string `json:"hash"`
	Subject   string `json:"subject"`
	Timestamp string `json:"timestamp"`
}

const gitTimeout = 5 * time.Second

// RecentChanges asks git for the last max non-merge commits under dir.
// Git being absent, or dir not being a repository, yields an empty list.
func RecentChanges(dir string, max int) []Change {
	if max <= 0 {
		max = 20
	}
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log",
		"--no-merges",
		"-n", strconv.Itoa(max),
		"--pretty=format:%h|%s|%cI")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return []Change{}
	}
	return parseChangeLines(string(out))
}

func parseChangeLines(out string) []Change {
	lines := strings.Split(out, "\n")
	changes := make([]Change, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		changes = append(changes, Change{
			Hash:      parts[0],
			Subject:   parts[1],
			Timestamp: parts[2],
		})
	}
	return changes
}
