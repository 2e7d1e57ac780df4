package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/canvas-tools/internal/envfile"
	"github.com/eugenenazirov/canvas-tools/internal/locate"
	"github.com/eugenenazirov/canvas-tools/internal/media"
	"github.com/eugenenazirov/canvas-tools/internal/storage"
)

const (
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv = "GEMINI_API_KEY"
	// DefaultModel is used when a request names no model.
	DefaultModel = "gemini-3-flash-preview"
	// DefaultOutputPath is used when a request names no output path.
	DefaultOutputPath = "/tmp/gemini-result.md"
)

// Request describes one dispatch.
type Request struct {
	FilePath   string
	Prompt     string
	Model      string
	OutputPath string
}

// Result summarizes a successful dispatch.
type Result struct {
	Text       string
	OutputPath string
	Model      string
	Strategy   media.Strategy
	Size       int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithEnvSearch sets where the environment file is looked for.
func WithEnvSearch(search locate.Search) Option {
	return func(d *Dispatcher) {
		d.envSearch = search
	}
}

// WithStorage overrides where results are persisted.
func WithStorage(store storage.Storage) Option {
	return func(d *Dispatcher) {
		d.storage = store
	}
}

// WithStdout overrides where the result text is echoed.
func WithStdout(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.stdout = w
	}
}

// Dispatcher runs requests against backends produced by its factory.
type Dispatcher struct {
	newBackend BackendFactory
	logger     *zap.Logger
	envSearch  locate.Search
	storage    storage.Storage
	stdout     io.Writer
}

// New constructs a Dispatcher. Without options it reads no environment file,
// writes results to the filesystem and echoes them to os.Stdout.
func New(factory BackendFactory, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		newBackend: factory,
		logger:     logger,
		envSearch:  locate.New(),
		storage:    storage.NewFileStorage(),
		stdout:     os.Stdout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates the target, resolves the API key, sends exactly one
// generation request and delivers its text.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = DefaultOutputPath
	}
	if abs, err := filepath.Abs(locate.ExpandHome(outputPath)); err == nil {
		outputPath = abs
	}

	desc, err := media.Describe(req.FilePath)
	if err != nil {
		return Result{}, err
	}

	apiKey, err := d.resolveAPIKey()
	if err != nil {
		return Result{}, err
	}

	d.logger.Info("using model", zap.String("model", model))

	text, err := d.generate(ctx, apiKey, model, desc, req.Prompt)
	if err != nil {
		return Result{}, err
	}

	if err := d.storage.Save(outputPath, text); err != nil {
		return Result{}, err
	}
	d.logger.Info("output written", zap.String("path", outputPath))

	if _, err := fmt.Fprintln(d.stdout, text); err != nil {
		return Result{}, fmt.Errorf("write stdout: %w", err)
	}

	return Result{
		Text:       text,
		OutputPath: outputPath,
		Model:      model,
		Strategy:   desc.Strategy(),
		Size:       desc.Size,
	}, nil
}

// resolveAPIKey merges the environment file, if any, and reads the key.
func (d *Dispatcher) resolveAPIKey() (string, error) {
	path, err := envfile.Load(d.envSearch)
	switch {
	case err != nil:
		d.logger.Warn("ignoring environment file", zap.String("path", path), zap.Error(err))
	case path != "":
		d.logger.Debug("loaded environment file", zap.String("path", path))
	}

	apiKey := strings.TrimSpace(os.Getenv(APIKeyEnv))
	if apiKey == "" {
		return "", ErrMissingCredential
	}
	return apiKey, nil
}

func (d *Dispatcher) generate(ctx context.Context, apiKey, model string, desc media.Descriptor, prompt string) (string, error) {
	backend, err := d.newBackend(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackendCall, err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			d.logger.Debug("closing backend", zap.Error(closeErr))
		}
	}()

	var parts []Part
	switch desc.Strategy() {
	case media.Uploaded:
		d.logger.Info("uploading large file",
			zap.String("size", fmt.Sprintf("%.1f MB", float64(desc.Size)/1024/1024)))
		file, err := backend.Upload(ctx, desc.Path, desc.MIMEType)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrBackendCall, err)
		}
		parts = []Part{FilePart(file), TextPart(prompt)}
	default:
		data, err := os.ReadFile(desc.Path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", desc.Path, err)
		}
		parts = []Part{BlobPart(desc.MIMEType, data), TextPart(prompt)}
	}

	text, err := backend.Generate(ctx, model, parts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackendCall, err)
	}
	return text, nil
}
