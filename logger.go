package replink

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards everything. This is the
// default when no logger is configured: a live-coding session should be
// silent unless asked otherwise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
