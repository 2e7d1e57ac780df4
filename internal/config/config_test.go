package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/canvas-tools/internal/locate"
)

const validConfig = `{
  "canvas_base_url": "https://canvas.example.edu",
  "cookies_file": "cookies.txt",
  "courses": [
    {"folder": "CS101", "id": 42, "name": "Intro"},
    {"folder": "MATH200", "id": 7}
  ]
}`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// realDir returns dir with symlinks resolved, as the loader reports it.
func realDir(t *testing.T, dir string) string {
	t.Helper()

	real, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return real
}

func TestLoadFileValid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, validConfig)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "https://canvas.example.edu", cfg.CanvasBaseURL())
	assert.Equal(t, "cookies.txt", cfg.CookiesFile())
	assert.Equal(t, filepath.Join(realDir(t, dir), "cookies.txt"), cfg.CookiesFileResolved())
	assert.Equal(t, "CS101 MATH200", cfg.CourseFolders())
	assert.Len(t, cfg.Courses(), 2)
}

func TestOptionalDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(writeConfig(t, t.TempDir(), validConfig))
	require.NoError(t, err)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"summarization backend", cfg.SummarizationBackend(), "claude"},
		{"gemini model", cfg.GeminiModel(), "gemini-3-flash-preview"},
		{"reasoning backend", cfg.ReasoningBackend(), "claude"},
		{"codex model", cfg.CodexModel(), "gpt-5.2-codex-xhigh"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got, tt.name)
	}
}

func TestOptionalOverrides(t *testing.T) {
	t.Parallel()

	content := `{
  "canvas_base_url": "https://canvas.example.edu",
  "cookies_file": "/var/cookies.txt",
  "courses": [],
  "summarization_backend": "gemini",
  "gemini_model": "gemini-2.5-pro",
  "reasoning_backend": "codex",
  "codex_model": ""
}`
	cfg, err := LoadFile(writeConfig(t, t.TempDir(), content))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.SummarizationBackend())
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel())
	assert.Equal(t, "codex", cfg.ReasoningBackend())
	// a present key wins over the default even when empty
	assert.Empty(t, cfg.CodexModel())
	assert.Equal(t, filepath.Join(realDir(t, "/var"), "cookies.txt"), cfg.CookiesFileResolved())
	assert.Empty(t, cfg.CourseFolders())
}

func TestOptionalNullUsesDefault(t *testing.T) {
	t.Parallel()

	content := `{"canvas_base_url": "u", "cookies_file": "c", "courses": [], "gemini_model": null}`
	cfg, err := LoadFile(writeConfig(t, t.TempDir(), content))
	require.NoError(t, err)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GeminiModel())
}

func TestUnknownBackendPassesThrough(t *testing.T) {
	t.Parallel()

	content := `{"canvas_base_url": "u", "cookies_file": "c", "courses": [], "reasoning_backend": "cladue"}`
	cfg, err := LoadFile(writeConfig(t, t.TempDir(), content))
	require.NoError(t, err)
	assert.Equal(t, "cladue", cfg.ReasoningBackend())
}

func TestNonStringValuesPassThrough(t *testing.T) {
	t.Parallel()

	content := `{
  "canvas_base_url": 8080,
  "cookies_file": "c",
  "courses": [],
  "reasoning_backend": 7,
  "codex_model": {"name": "x", "effort": "high"},
  "gemini_model": true
}`
	cfg, err := LoadFile(writeConfig(t, t.TempDir(), content))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.CanvasBaseURL())
	assert.Equal(t, "7", cfg.ReasoningBackend())
	assert.Equal(t, `{"name":"x","effort":"high"}`, cfg.CodexModel())
	assert.Equal(t, "true", cfg.GeminiModel())
	assert.Equal(t, "claude", cfg.SummarizationBackend())
}

func TestLoadFileMissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "all missing",
			content: `{}`,
			want:    []string{"canvas_base_url", "cookies_file", "courses"},
		},
		{
			name:    "only optional key of another type",
			content: `{"gemini_model": 5}`,
			want:    []string{"canvas_base_url", "cookies_file", "courses"},
		},
		{
			name:    "two missing",
			content: `{"cookies_file": "c.txt"}`,
			want:    []string{"canvas_base_url", "courses"},
		},
		{
			name:    "null courses",
			content: `{"canvas_base_url": "u", "cookies_file": "c", "courses": null}`,
			want:    []string{"courses"},
		},
		{
			name:    "course without folder",
			content: `{"canvas_base_url": "u", "courses": [{"folder": "A"}, {"id": 3}]}`,
			want:    []string{"cookies_file", "courses[1].folder"},
		},
		{
			name:    "missing keys outrank malformed courses",
			content: `{"courses": "CS101", "cookies_file": 3}`,
			want:    []string{"canvas_base_url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFile(writeConfig(t, t.TempDir(), tt.content))
			require.ErrorIs(t, err, ErrMissingFields)
			assert.NotErrorIs(t, err, ErrParse)

			var missing *MissingFieldsError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.want, missing.Fields)
			for _, field := range tt.want {
				assert.Contains(t, err.Error(), field)
			}
		})
	}
}

func TestLoadFileParseError(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"syntax":        `{"canvas_base_url": `,
		"not an object": `["a", "b"]`,
		"trailing data": `{"canvas_base_url": "u"} {}`,
		"empty":         ``,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFile(writeConfig(t, t.TempDir(), content))
			require.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestLoadFileInvalidValue(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"courses not a list":   `{"canvas_base_url": "u", "cookies_file": "c", "courses": "CS101"}`,
		"course not an object": `{"canvas_base_url": "u", "cookies_file": "c", "courses": ["CS101"]}`,
		"folder not a string":  `{"canvas_base_url": "u", "cookies_file": "c", "courses": [{"folder": 101}]}`,
		"cookies file number":  `{"canvas_base_url": "u", "cookies_file": 5, "courses": []}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFile(writeConfig(t, t.TempDir(), content))
			require.ErrorIs(t, err, ErrInvalidValue)
			assert.NotErrorIs(t, err, ErrParse)
			assert.NotErrorIs(t, err, ErrMissingFields)
		})
	}
}

func TestResolvedCookiePathRelativeToConfigDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := writeConfig(t, dir, `{"canvas_base_url": "u", "cookies_file": "c.txt", "courses": []}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realDir(t, dir), "c.txt"), cfg.CookiesFileResolved())
}

func TestResolvedCookiePathFollowsSymlinks(t *testing.T) {
	t.Parallel()

	root := realDir(t, t.TempDir())
	target := filepath.Join(root, "target")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "cookies.txt"), nil, 0o600))

	link := filepath.Join(root, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cfg, err := LoadFile(writeConfig(t, link, `{"canvas_base_url": "u", "cookies_file": "cookies.txt", "courses": []}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "cookies.txt"), cfg.CookiesFileResolved())
	assert.Equal(t, "cookies.txt", cfg.CookiesFile())

	cfg, err = LoadFile(writeConfig(t, link, `{"canvas_base_url": "u", "cookies_file": "later/cookies.txt", "courses": []}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "later", "cookies.txt"), cfg.CookiesFileResolved())
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/nonexistent-canvas/b/c.txt", resolvePath("/nonexistent-canvas/b/.canvas-config.json", "c.txt"))
	assert.Equal(t, "/nonexistent-canvas/c.txt", resolvePath("/nonexistent-canvas/b/.canvas-config.json", "../c.txt"))
	assert.Equal(t, "/nonexistent-canvas/x/c.txt", resolvePath("/nonexistent-canvas/b/.canvas-config.json", "/nonexistent-canvas/x/c.txt"))
}

func TestLocatePrefersEarlierCandidate(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	home := t.TempDir()
	cwdPath := writeConfig(t, cwd, validConfig)
	writeConfig(t, home, validConfig)

	got, err := Locate(locate.New(locate.InDirs(FileName, cwd, home)...), nil)
	require.NoError(t, err)
	assert.Equal(t, cwdPath, got)
}

func TestLocateNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Locate(locate.New(locate.InDirs(FileName, dir)...), nil)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), filepath.Join(dir, FileName))
}

func TestLocateOverridePinsPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, validConfig)
	search := locate.New(locate.InDirs(FileName, dir)...)

	pinned := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(pinned, []byte(validConfig), 0o644))

	got, err := Locate(search, &CLIOverrides{ConfigFile: pinned})
	require.NoError(t, err)
	assert.Equal(t, pinned, got)

	_, err = Locate(search, &CLIOverrides{ConfigFile: filepath.Join(dir, "missing.json")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadThroughSearch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, validConfig)

	cfg, err := Load(locate.New(locate.InDirs(FileName, t.TempDir(), dir)...), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu", cfg.CanvasBaseURL())
}
