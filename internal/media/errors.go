package media

import "errors"

var (
	// ErrFileNotFound is returned when the target path does not exist or is not a regular file.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedType is returned when the file extension is not in the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
)
