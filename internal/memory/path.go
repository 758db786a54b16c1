package memory

import "strings"

// SafeRelPath reports whether rel is a relative path that stays inside the
// memory root: not absolute, no parent-reference segments, and a first
// segment that names a recognized subdirectory.
func SafeRelPath(rel string, allowed []string) bool {
	if rel == "" {
		return false
	}
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "\\") {
		return false
	}
	// Windows-style drive prefixes count as absolute too.
	if len(rel) > 1 && rel[1] == ':' {
		return false
	}

	segments := strings.FieldsFunc(rel, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segments) < 2 {
		return false
	}
	for _, seg := range segments {
		if seg == ".." {
			return false
		}
	}

	for _, dir := range allowed {
		if segments[0] == dir {
			return true
		}
	}
	return false
}
