// Package memory exposes read-only views over the agent workspace's memory
// area: directory listings, file contents behind a path validator, and
// recent version-control changes.
package memory

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultDirs are the recognized memory subdirectories when the config
// does not override them.
var DefaultDirs = []string{"memory", "notes", "tasks"}

type Reader struct {
	root string
	dirs []string
}

func NewReader(root string, dirs []string) *Reader {
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}
	return &Reader{root: root, dirs: dirs}
}

// FileInfo is one memory file's metadata.
type FileInfo struct {
	Name    string    `json:"name"`
	ModTime time.Time `json:"modTime"`
	Size    int64     `json:"size"`
}

// DirListing is the contents of one recognized subdirectory.
type DirListing struct {
	Dir   string     `json:"dir"`
	Files []FileInfo `json:"files"`
}

// Snapshot is the full memory view: per-directory listings plus recent
// version-control changes under the workspace root.
type Snapshot struct {
	Dirs    []DirListing `json:"dirs"`
	Changes []Change     `json:"changes"`
}

// Snapshot lists every recognized subdirectory and the recent changes.
// Directories that cannot be read show up with an empty file list.
func (r *Reader) Snapshot(maxChanges int) Snapshot {
	snap := Snapshot{Dirs: make([]DirListing, 0, len(r.dirs))}
	for _, dir := range r.dirs {
		snap.Dirs = append(snap.Dirs, DirListing{Dir: dir, Files: r.listDir(dir)})
	}
	snap.Changes = RecentChanges(r.root, maxChanges)
	return snap
}

func (r *Reader) listDir(dir string) []FileInfo {
	dirents, err := os.ReadDir(filepath.Join(r.root, dir))
	if err != nil {
		return []FileInfo{}
	}

	files := make([]FileInfo, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    de.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files
}

// ReadFile returns the content of a memory file by validated relative path.
// Every rejection (escape attempt, unknown directory, missing file) is the
// same not-found signal; callers learn nothing about why.
func (r *Reader) ReadFile(rel string) (string, bool) {
	if !SafeRelPath(rel, r.dirs) {
		return "", false
	}
	content, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", false
	}
	return string(content), true
}
