// Package logx holds pslog helpers shared by the session engine and the CLI.
package logx

import (
	"context"
	"io"

	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return pslog.Ctx(ctx)
}

// WithStream annotates the logger with the stream name if present.
func WithStream(log pslog.Logger, stream string) pslog.Logger {
	if stream != "" {
		log = log.With("stream", stream)
	}
	return log
}

// WithSession annotates the logger with a session kind and generation.
func WithSession(log pslog.Logger, kind string, gen uint64) pslog.Logger {
	if kind == "" {
		return log
	}
	return log.With("session", kind, "gen", gen)
}

// NewFileLogger builds a structured logger for runs where stderr belongs to the
// terminal UI.
func NewFileLogger(w io.Writer, debug bool) pslog.Logger {
	level := pslog.InfoLevel
	if debug {
		level = pslog.DebugLevel
	}
	return pslog.NewWithOptions(w, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: level,
	})
}
