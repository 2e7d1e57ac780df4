package locate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Candidate yields zero or one path to check.
type Candidate func() (string, bool)

// Search checks its candidates in order.
type Search struct {
	candidates []Candidate
}

// New builds a Search over the given candidates.
func New(candidates ...Candidate) Search {
	return Search{candidates: append([]Candidate(nil), candidates...)}
}

// Prepend returns a copy of s with c checked before every existing candidate.
func (s Search) Prepend(c Candidate) Search {
	out := make([]Candidate, 0, len(s.candidates)+1)
	out = append(out, c)
	out = append(out, s.candidates...)
	return Search{candidates: out}
}

// First returns the first candidate path that exists as a regular file.
func (s Search) First() (string, bool) {
	for _, candidate := range s.candidates {
		path, ok := candidate()
		if !ok {
			continue
		}
		if IsRegularFile(path) {
			return path, true
		}
	}
	return "", false
}

// Paths lists every path the search would check, in order.
func (s Search) Paths() []string {
	paths := make([]string, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		if path, ok := candidate(); ok {
			paths = append(paths, path)
		}
	}
	return paths
}

// Path is a candidate for a fixed path. An empty path yields nothing.
func Path(path string) Candidate {
	return func() (string, bool) {
		if path == "" {
			return "", false
		}
		return path, true
	}
}

// InDirs returns one candidate per directory for the file name. Empty
// directories are skipped.
func InDirs(name string, dirs ...string) []Candidate {
	candidates := make([]Candidate, 0, len(dirs))
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidates = append(candidates, Path(filepath.Join(dir, name)))
	}
	return candidates
}

// FromLookup reads the JSON document at lookupFile and yields the string stored
// under key. A leading "~" is expanded and relative values are joined to
// baseDir. A missing, unreadable or malformed lookup file yields nothing.
func FromLookup(lookupFile, key, baseDir string) Candidate {
	return func() (string, bool) {
		data, err := os.ReadFile(lookupFile)
		if err != nil {
			return "", false
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", false
		}

		value, ok := doc[key].(string)
		if !ok || strings.TrimSpace(value) == "" {
			return "", false
		}

		path := ExpandHome(value)
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return path, true
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
