// Package logging configures structured logging for pledge binaries.
//
// Usage:
//
//	logging.Setup(os.Stderr, slog.LevelInfo, logging.FormatText) // colored, via tint
//	logging.Setup(os.Stdout, slog.LevelDebug, logging.FormatJSON)
//
// Setup installs the handler as the slog default, so packages log through
// the package-level slog functions.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup installs the default logger at level, writing to w. FormatJSON selects
// the JSON handler; any other format gets the colored tint handler.
func Setup(w io.Writer, level slog.Level, format string) *slog.Logger {
	logger := slog.New(NewHandler(w, level, format))
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds the handler Setup would install.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}
