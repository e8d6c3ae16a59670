// Package log configures the process-wide slog logger and carries
// request-scoped loggers through context.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default logger at the given level. Unknown levels fall
// back to info.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger tagged with a module name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
