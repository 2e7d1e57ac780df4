package dispatch

import "context"

// PartKind identifies the payload held by a Part.
type PartKind int

const (
	// PartText is a plain text instruction.
	PartText PartKind = iota
	// PartBlob carries raw file bytes inline.
	PartBlob
	// PartFile references a previously uploaded file.
	PartFile
)

// File is the handle returned by a backend upload.
type File struct {
	Name     string
	URI      string
	MIMEType string
}

// Part is one element of a generation request.
type Part struct {
	Kind     PartKind
	Text     string
	MIMEType string
	Data     []byte
	File     File
}

// TextPart wraps an instruction.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// BlobPart wraps inline bytes tagged with their MIME type.
func BlobPart(mimeType string, data []byte) Part {
	return Part{Kind: PartBlob, MIMEType: mimeType, Data: data}
}

// FilePart references an uploaded file.
func FilePart(file File) Part {
	return Part{Kind: PartFile, MIMEType: file.MIMEType, File: file}
}

// Backend is a multimodal generation service.
type Backend interface {
	// Upload sends the file at path and returns a handle usable in Generate.
	Upload(ctx context.Context, path, mimeType string) (File, error)
	// Generate issues one generation request and returns its text.
	Generate(ctx context.Context, model string, parts []Part) (string, error)
	Close() error
}

// BackendFactory builds a Backend authenticated with apiKey.
type BackendFactory func(ctx context.Context, apiKey string) (Backend, error)
