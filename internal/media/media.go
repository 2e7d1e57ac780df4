package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eugenenazirov/canvas-tools/internal/locate"
)

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// TypeByExtension returns the MIME type for the lowercase extension of path.
func TypeByExtension(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := mimeTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return mimeType, nil
}

// Descriptor is a validated dispatch target.
type Descriptor struct {
	Path     string
	MIMEType string
	Size     int64
}

// Strategy returns the transfer strategy for the descriptor's size.
func (d Descriptor) Strategy() Strategy {
	return StrategyFor(d.Size)
}

// Describe expands and canonicalizes path, checks that it is an existing
// regular file and infers its MIME type. No file contents are read.
func Describe(path string) (Descriptor, error) {
	canonical, err := canonicalize(path)
	if err != nil {
		return Descriptor{}, err
	}

	info, err := os.Stat(canonical)
	if err != nil || !info.Mode().IsRegular() {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrFileNotFound, canonical)
	}

	mimeType, err := TypeByExtension(canonical)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Path:     canonical,
		MIMEType: mimeType,
		Size:     info.Size(),
	}, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(locate.ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
