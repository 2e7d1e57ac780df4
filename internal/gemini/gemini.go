// Package gemini implements dispatch.Backend on top of the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/eugenenazirov/canvas-tools/internal/dispatch"
)

// progressInterval is the minimum gap between upload progress entries.
const progressInterval = time.Second

// Backend sends requests through a genai client.
type Backend struct {
	client *genai.Client
	logger *zap.Logger
}

// New creates a Backend authenticated with apiKey. Extra client options are
// appended after the key.
func New(ctx context.Context, apiKey string, logger *zap.Logger, opts ...option.ClientOption) (*Backend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: API key is empty")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Backend{client: client, logger: logger}, nil
}

// Factory adapts New to dispatch.BackendFactory.
func Factory(logger *zap.Logger, opts ...option.ClientOption) dispatch.BackendFactory {
	return func(ctx context.Context, apiKey string) (dispatch.Backend, error) {
		backend, err := New(ctx, apiKey, logger, opts...)
		if err != nil {
			return nil, err
		}
		return backend, nil
	}
}

// Upload sends the file through the Files API.
func (b *Backend) Upload(ctx context.Context, path, mimeType string) (dispatch.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return dispatch.File{}, fmt.Errorf("gemini upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return dispatch.File{}, fmt.Errorf("gemini upload: %w", err)
	}

	reader := newProgressReader(f, info.Size(), b.logger, progressInterval)
	uploaded, err := b.client.UploadFile(ctx, "", reader, &genai.UploadFileOptions{
		DisplayName: filepath.Base(path),
		MIMEType:    mimeType,
	})
	if err != nil {
		return dispatch.File{}, fmt.Errorf("gemini upload: %w", err)
	}

	file := dispatch.File{Name: uploaded.Name, URI: uploaded.URI, MIMEType: uploaded.MIMEType}
	if file.MIMEType == "" {
		file.MIMEType = mimeType
	}
	b.logger.Debug("file uploaded", zap.String("name", file.Name), zap.String("uri", file.URI))
	return file, nil
}

// Generate issues a single GenerateContent call and returns the text of the
// first candidate.
func (b *Backend) Generate(ctx context.Context, model string, parts []dispatch.Part) (string, error) {
	genParts, err := toParts(parts)
	if err != nil {
		return "", err
	}

	resp, err := b.client.GenerativeModel(strings.TrimSpace(model)).GenerateContent(ctx, genParts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// Close releases the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}

func toParts(parts []dispatch.Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for i, p := range parts {
		switch p.Kind {
		case dispatch.PartText:
			out = append(out, genai.Text(p.Text))
		case dispatch.PartBlob:
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
		case dispatch.PartFile:
			out = append(out, genai.FileData{MIMEType: p.File.MIMEType, URI: p.File.URI})
		default:
			return nil, fmt.Errorf("gemini: part %d has unknown kind %d", i, p.Kind)
		}
	}
	return out, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
