package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/canvas-tools/internal/application"
	"github.com/eugenenazirov/canvas-tools/internal/dispatch"
	"github.com/eugenenazirov/canvas-tools/internal/logging"
	"github.com/eugenenazirov/canvas-tools/internal/media"
)

func main() {
	kingpinApp := kingpin.New("gemini-api", "Send a PDF or image to Gemini and save the response")
	filePath := kingpinApp.Arg("file", "Path to PDF or image file").Required().String()
	prompt := kingpinApp.Arg("prompt", "Task or question for Gemini").Required().String()
	model := kingpinApp.Flag("model", "Gemini model to use").Short('m').Default(dispatch.DefaultModel).String()
	output := kingpinApp.Flag("output", "Output file path").Short('o').Default(dispatch.DefaultOutputPath).String()
	logFormat := kingpinApp.Flag("log-format", "Diagnostics format on stderr").Default(logging.EncodingConsole).Enum(logging.EncodingConsole, logging.EncodingJSON)
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Short('v').Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, err := logging.New(logging.WithEncoding(*logFormat), logging.WithDebug(*verbose))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	dispatcher := application.NewDispatcher(application.DefaultDirs(), logger, os.Stdout)
	_, err = dispatcher.Dispatch(context.Background(), dispatch.Request{
		FilePath:   *filePath,
		Prompt:     *prompt,
		Model:      *model,
		OutputPath: *output,
	})
	if err != nil {
		msg, hint := diagnose(err)
		fields := []zap.Field{zap.Error(err)}
		if hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		logger.Fatal(msg, fields...)
	}
}

// diagnose maps a dispatch failure to a message and an optional hint.
func diagnose(err error) (string, string) {
	switch {
	case errors.Is(err, media.ErrFileNotFound):
		return "file not found", ""
	case errors.Is(err, media.ErrUnsupportedType):
		return "unsupported file type", "supported: .pdf .png .jpg .jpeg .gif .webp"
	case errors.Is(err, dispatch.ErrMissingCredential):
		return dispatch.APIKeyEnv + " not found", "set it in a .env file or export it as an environment variable"
	case errors.Is(err, dispatch.ErrBackendCall):
		return "Gemini API call failed", ""
	default:
		return "dispatch failed", ""
	}
}
