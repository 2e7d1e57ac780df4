// Package envfile loads KEY=VALUE environment files into the process
// environment without overriding variables that are already set.
package envfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/eugenenazirov/canvas-tools/internal/locate"
)

// FileName is the environment file looked for in every search directory.
const FileName = ".env"

// Read parses the environment file at path into a map.
func Read(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

// Merge sets every key of values that is not already present in the process
// environment and returns the keys it set, sorted.
func Merge(values map[string]string) ([]string, error) {
	applied := make([]string, 0, len(values))
	for key, value := range values {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, fmt.Errorf("set %s: %w", key, err)
		}
		applied = append(applied, key)
	}
	sort.Strings(applied)
	return applied, nil
}

// Load finds the first environment file of search and merges it. It returns
// the path that was loaded, or "" when the search found nothing.
func Load(search locate.Search) (string, error) {
	path, ok := search.First()
	if !ok {
		return "", nil
	}

	values, err := Read(path)
	if err != nil {
		return path, err
	}
	if _, err := Merge(values); err != nil {
		return path, err
	}
	return path, nil
}
