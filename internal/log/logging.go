// Package log builds the configured slog.Logger used by deckctl and carries
// the raw HID report tracer.
//
// Without a log file, records below Error go to stdout and errors to stderr,
// so shell redirection can separate diagnostics from event output.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace is a custom slog level below Debug, used for per-report output.
const LevelTrace slog.Level = -8

func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// splitHandler routes each record to out or errOut depending on its level.
type splitHandler struct {
	out, errOut slog.Handler
}

func (s splitHandler) pick(level slog.Level) slog.Handler {
	if level >= slog.LevelError {
		return s.errOut
	}
	return s.out
}

func (s splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.pick(level).Enabled(ctx, level)
}

func (s splitHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.pick(r.Level).Handle(ctx, r)
}

func (s splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return splitHandler{out: s.out.WithAttrs(attrs), errOut: s.errOut.WithAttrs(attrs)}
}

func (s splitHandler) WithGroup(name string) slog.Handler {
	return splitHandler{out: s.out.WithGroup(name), errOut: s.errOut.WithGroup(name)}
}

// SetupLogger builds the process logger. With a file path set, all records go
// to that file; otherwise they are split across stdout/stderr by level.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
		return slog.New(h), []io.Closer{f}, nil
	}

	h := splitHandler{
		out:    slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
		errOut: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	return slog.New(h), nil, nil
}
