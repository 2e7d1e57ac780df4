package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, err := New()
	require.NoError(t, err)
	require.NotNil(t, logger)
	_ = logger.Sync()
}

func TestNewJSONDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	logger, err := New(WithEncoding(EncodingJSON), WithDebug(true), WithOutputPaths(path))
	require.NoError(t, err)
	logger.Debug("upload started")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"upload started"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewConsoleSkipsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")

	logger, err := New(WithOutputPaths(path))
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "INFO\tshown")
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	_, err := New(WithEncoding("xml"))
	assert.Error(t, err)
}
