package logging

import (
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	FormatProduction  = "production"
	FormatDevelopment = "development"
)

// Options describes how the application logger is built.
type Options struct {
	// Level is the minimum enabled level, e.g. "debug" or "info".
	// Unparseable or empty levels fall back to info.
	Level string

	// Format is either "production" (json) or "development" (console).
	// If empty, development is used when stderr is a terminal.
	Format string

	// Name is attached to every entry as the "app" field.
	Name string
}

// New builds the application logger. Output always goes to stderr,
// as stdout carries the CGI response.
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if resolveFormat(opts.Format) == FormatProduction {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	if opts.Name != "" {
		config.InitialFields = map[string]any{
			"app": opts.Name,
		}
	}

	config.Level = resolveLevel(opts.Level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

func resolveFormat(format string) string {
	switch format {
	case FormatProduction, FormatDevelopment:
		return format
	case "json":
		return FormatProduction
	case "console":
		return FormatDevelopment
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		return FormatDevelopment
	}

	return FormatProduction
}

func resolveLevel(lvl string) zap.AtomicLevel {
	if atom, err := zap.ParseAtomicLevel(lvl); err == nil && lvl != "" {
		return atom
	}

	return zap.NewAtomicLevelAt(zap.InfoLevel)
}
