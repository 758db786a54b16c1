package logview

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SessionFile is one discoverable session log on disk.
type SessionFile struct {
	Name    string
	Path    string
	ModTime time.Time
}

// ListSessionFiles enumerates *.jsonl files in dir, newest first. Reset
// variants (".reset." in the name) are snapshots taken before a context
// reset and are excluded. An unreadable directory yields no files.
func ListSessionFiles(dir string) []SessionFile {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	files := make([]SessionFile, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasSuffix(name, ".jsonl") || strings.Contains(name, ".reset.") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, SessionFile{
			Name:    name,
			Path:    filepath.Join(dir, name),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files
}

// ResolveSessionFile finds the session file for a reference, which is either
// an exact file name or a prefix of one (typically the session id). When
// several files share the prefix the most recent wins.
func ResolveSessionFile(dir, ref string) (SessionFile, bool) {
	if ref == "" {
		return SessionFile{}, false
	}
	files := ListSessionFiles(dir)
	for _, f := range files {
		if f.Name == ref {
			return f, true
		}
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name, ref) {
			return f, true
		}
	}
	return SessionFile{}, false
}

// ReadRecords reads and decodes one session file. A missing or unreadable
// file is no data, not an error.
func ReadRecords(path string) []Record {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return DecodeLines(string(content))
}
