// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
)

// Init builds a text logger writing to w at the given level and installs it as
// the slog default. Output of the legacy log package goes through it too.
func Init(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)

	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
