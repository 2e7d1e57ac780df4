package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by MemoryStorage when nothing was saved at a path.
var ErrNotFound = errors.New("no result stored at path")

// Storage persists generation results.
type Storage interface {
	Save(path, text string) error
}

// FileStorage writes results to the filesystem, creating parent directories
// and overwriting existing files.
type FileStorage struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewFileStorage returns a FileStorage with 0755 directories and 0644 files.
func NewFileStorage() *FileStorage {
	return &FileStorage{
		dirPerm:  0o755,
		filePerm: 0o644,
	}
}

// Save writes text to path, replacing any previous content.
func (s *FileStorage) Save(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, s.dirPerm); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), s.filePerm); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// MemoryStorage keeps results in a map keyed by path.
type MemoryStorage struct {
	results map[string]string
	writes  int
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{results: make(map[string]string)}
}

// Save records text under path.
func (s *MemoryStorage) Save(path, text string) error {
	s.results[path] = text
	s.writes++
	return nil
}

// Get returns the text last saved under path.
func (s *MemoryStorage) Get(path string) (string, error) {
	text, ok := s.results[path]
	if !ok {
		return "", ErrNotFound
	}
	return text, nil
}

// Writes returns how many times Save was called.
func (s *MemoryStorage) Writes() int {
	return s.writes
}
