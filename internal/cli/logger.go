package cli

import (
	"io"
	"log/slog"

	"github.com/go-logr/logr"
)

// newLogger returns the logger handed to the catalog loader and the harness.
// Records go to w as text or JSON lines, matching --format. Without
// --verbose only warnings and errors are emitted, which the loader never
// produces, so normal runs stay quiet.
func newLogger(opts *RootOptions, w io.Writer) logr.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return logr.FromSlogHandler(handler)
}
