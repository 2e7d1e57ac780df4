package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encodings accepted by WithEncoding.
const (
	EncodingConsole = "console"
	EncodingJSON    = "json"
)

type options struct {
	encoding string
	level    zapcore.Level
	outputs  []string
}

// Option configures New.
type Option func(*options)

// WithEncoding selects "console" or "json" output.
func WithEncoding(encoding string) Option {
	return func(o *options) {
		o.encoding = encoding
	}
}

// WithDebug lowers the level to debug.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.level = zapcore.DebugLevel
		}
	}
}

// WithOutputPaths overrides where log entries are written (stderr by default).
func WithOutputPaths(paths ...string) Option {
	return func(o *options) {
		o.outputs = paths
	}
}

// New creates a structured logger writing to stderr, leaving stdout to
// command results.
func New(opts ...Option) (*zap.Logger, error) {
	o := options{
		encoding: EncodingConsole,
		level:    zapcore.InfoLevel,
		outputs:  []string{"stderr"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(o.level)
	cfg.OutputPaths = o.outputs
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.Sampling = nil

	switch o.encoding {
	case EncodingJSON:
		cfg.Encoding = EncodingJSON
		cfg.DisableStacktrace = false
	case EncodingConsole:
		cfg.Encoding = EncodingConsole
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
		cfg.DisableCaller = true
	default:
		return nil, fmt.Errorf("unknown log encoding %q", o.encoding)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
