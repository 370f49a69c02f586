package util

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger: readable text at debug level in
// development, JSON at info level otherwise. Logs go to stderr; stdout is
// reserved for command output.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
