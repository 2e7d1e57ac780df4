package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/canvas-tools/internal/application"
	"github.com/eugenenazirov/canvas-tools/internal/config"
	"github.com/eugenenazirov/canvas-tools/internal/logging"
)

type mode string

const (
	modeFull                 mode = ""
	modeCanvasURL            mode = "canvas-url"
	modeCookiesFile          mode = "cookies-file"
	modeCourses              mode = "courses"
	modeCourseFolders        mode = "course-folders"
	modeSummarizationBackend mode = "summarization-backend"
	modeGeminiModel          mode = "gemini-model"
	modeReasoningBackend     mode = "reasoning-backend"
	modeCodexModel           mode = "codex-model"
	modeValidate             mode = "validate"
)

var modes = []struct {
	mode mode
	help string
}{
	{modeCanvasURL, "Print Canvas base URL"},
	{modeCookiesFile, "Print resolved cookies file path"},
	{modeCourses, "Print courses as a JSON array"},
	{modeCourseFolders, "Print space-separated course folder names"},
	{modeSummarizationBackend, "Print summarization backend (default " + config.Default(config.KeySummarizationBackend) + ")"},
	{modeGeminiModel, "Print Gemini model (default " + config.Default(config.KeyGeminiModel) + ")"},
	{modeReasoningBackend, "Print reasoning backend (default " + config.Default(config.KeyReasoningBackend) + ")"},
	{modeCodexModel, "Print Codex model (default " + config.Default(config.KeyCodexModel) + ")"},
	{modeValidate, "Validate configuration and exit"},
}

func main() {
	kingpinApp := kingpin.New("canvas-config", "Load and validate the Canvas course configuration")
	configFile := kingpinApp.Flag("config", "Path to the configuration file (skips the search)").String()
	format := kingpinApp.Flag("format", "Format of the full configuration dump").Default("json").Enum("json", "yaml")
	logFormat := kingpinApp.Flag("log-format", "Diagnostics format on stderr").Default(logging.EncodingConsole).Enum(logging.EncodingConsole, logging.EncodingJSON)
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Short('v').Bool()

	selected := make(map[mode]*bool, len(modes))
	for _, m := range modes {
		selected[m.mode] = kingpinApp.Flag(string(m.mode), m.help).Bool()
	}

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	outputMode, err := selectMode(selected)
	if err != nil {
		kingpinApp.Fatalf("%v", err)
	}

	logger, err := logging.New(logging.WithEncoding(*logFormat), logging.WithDebug(*verbose))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := application.LoadConfig(application.DefaultDirs(), &config.CLIOverrides{ConfigFile: *configFile})
	if err != nil {
		msg, hint := diagnose(err)
		fields := []zap.Field{zap.Error(err)}
		if hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		logger.Fatal(msg, fields...)
	}
	logger.Debug("configuration loaded", zap.String("path", cfg.Path()))

	if outputMode == modeValidate {
		logger.Info("config valid", zap.String("path", cfg.Path()))
		return
	}

	if err := render(os.Stdout, cfg, outputMode, *format); err != nil {
		logger.Fatal("failed to print configuration", zap.Error(err))
	}
}

// selectMode returns the single requested output mode, or modeFull when no
// mode flag was given.
func selectMode(selected map[mode]*bool) (mode, error) {
	var chosen []string
	result := modeFull
	for _, m := range modes {
		if flag := selected[m.mode]; flag != nil && *flag {
			chosen = append(chosen, "--"+string(m.mode))
			result = m.mode
		}
	}
	if len(chosen) > 1 {
		return modeFull, fmt.Errorf("only one output flag may be given, got %s", strings.Join(chosen, ", "))
	}
	return result, nil
}

// render prints the value selected by m.
func render(w io.Writer, cfg *config.Config, m mode, format string) error {
	var out string
	switch m {
	case modeCanvasURL:
		out = cfg.CanvasBaseURL()
	case modeCookiesFile:
		out = cfg.CookiesFileResolved()
	case modeCourses:
		data, err := cfg.CoursesJSON()
		if err != nil {
			return err
		}
		out = string(data)
	case modeCourseFolders:
		out = cfg.CourseFolders()
	case modeSummarizationBackend:
		out = cfg.SummarizationBackend()
	case modeGeminiModel:
		out = cfg.GeminiModel()
	case modeReasoningBackend:
		out = cfg.ReasoningBackend()
	case modeCodexModel:
		out = cfg.CodexModel()
	case modeFull:
		if format == "yaml" {
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}
		data, err := cfg.JSON()
		if err != nil {
			return err
		}
		out = string(data)
	default:
		return fmt.Errorf("unknown output mode %q", m)
	}

	_, err := fmt.Fprintln(w, out)
	return err
}

// diagnose maps a load failure to a message and an optional hint.
func diagnose(err error) (string, string) {
	switch {
	case errors.Is(err, config.ErrNotFound):
		return config.FileName + " not found", "run setup or copy templates/config.example.json"
	case errors.Is(err, config.ErrParse):
		return "invalid JSON in config", ""
	case errors.Is(err, config.ErrMissingFields):
		return "config is missing required fields", ""
	case errors.Is(err, config.ErrInvalidValue):
		return "config has a value of the wrong type", "courses must be a list of objects and cookies_file a string"
	default:
		return "failed to load configuration", ""
	}
}
