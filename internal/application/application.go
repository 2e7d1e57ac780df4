package application

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eugenenazirov/canvas-tools/internal/config"
	"github.com/eugenenazirov/canvas-tools/internal/dispatch"
	"github.com/eugenenazirov/canvas-tools/internal/envfile"
	"github.com/eugenenazirov/canvas-tools/internal/gemini"
	"github.com/eugenenazirov/canvas-tools/internal/locate"
	"github.com/eugenenazirov/canvas-tools/internal/storage"
)

const (
	// LookupFileName is the project-level file that may pin the config path.
	LookupFileName = ".canvas.json"
	// LookupConfigKey holds the custom configuration path in LookupFileName.
	LookupConfigKey = "config_file"
	// LookupEnvKey holds the custom environment file path in config.FileName.
	LookupEnvKey = "gemini_env_file"
)

// Dirs are the standard search directories, in precedence order. Empty
// entries are skipped by the searches.
type Dirs struct {
	WorkDir    string
	PluginRoot string
	ExeDir     string
	Home       string
}

// List returns the directories in search order.
func (d Dirs) List() []string {
	return []string{d.WorkDir, d.PluginRoot, d.ExeDir, d.Home}
}

// DefaultDirs resolves the standard search directories for this process.
// The plugin root is the parent of the executable's directory.
func DefaultDirs() Dirs {
	var dirs Dirs
	if wd, err := os.Getwd(); err == nil {
		dirs.WorkDir = wd
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dirs.ExeDir = filepath.Dir(exe)
		dirs.PluginRoot = filepath.Dir(dirs.ExeDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs.Home = home
	}
	return dirs
}

// ConfigSearch checks the custom path declared in the lookup file, then
// config.FileName in every standard directory.
func ConfigSearch(dirs Dirs) locate.Search {
	return newSearch(dirs, config.FileName, LookupFileName, LookupConfigKey)
}

// EnvSearch checks the custom path declared under gemini_env_file in the
// working directory's config file, then envfile.FileName in every standard
// directory.
func EnvSearch(dirs Dirs) locate.Search {
	return newSearch(dirs, envfile.FileName, config.FileName, LookupEnvKey)
}

func newSearch(dirs Dirs, name, lookupFile, lookupKey string) locate.Search {
	search := locate.New(locate.InDirs(name, dirs.List()...)...)
	if dirs.WorkDir == "" {
		return search
	}
	lookup := filepath.Join(dirs.WorkDir, lookupFile)
	return search.Prepend(locate.FromLookup(lookup, lookupKey, dirs.WorkDir))
}

// LoadConfig locates and loads the course configuration.
func LoadConfig(dirs Dirs, overrides *config.CLIOverrides) (*config.Config, error) {
	return config.Load(ConfigSearch(dirs), overrides)
}

// NewDispatcher wires the Gemini backend, filesystem storage and environment
// file search into a dispatcher echoing results to stdout.
func NewDispatcher(dirs Dirs, logger *zap.Logger, stdout io.Writer) *dispatch.Dispatcher {
	return dispatch.New(gemini.Factory(logger), logger,
		dispatch.WithEnvSearch(EnvSearch(dirs)),
		dispatch.WithStorage(storage.NewFileStorage()),
		dispatch.WithStdout(stdout),
	)
}
