package logger

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/slog"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)

	// With returns a logger which always attaches the given key-value pairs.
	With(args ...any) Logger
}

type defaultLogger struct {
	level int
	inner *slog.Logger
}

// NewLogger returns a text logger on stderr.
func NewLogger(level int) *defaultLogger {
	return New(os.Stderr, level, false)
}

// New creates a logger writing to w. JSON output is used for non-local
// environments.
func New(w io.Writer, level int, json bool) *defaultLogger {
	opts := &slog.HandlerOptions{Level: toSlogLevel(level)}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &defaultLogger{level: level, inner: slog.New(handler)}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	if l.level <= DEBUG {
		l.inner.Debug(fmt.Sprintf(msg, a...))
	}
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	if l.level <= INFO {
		l.inner.Info(fmt.Sprintf(msg, a...))
	}
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	if l.level <= WARNING {
		l.inner.Warn(fmt.Sprintf(msg, a...))
	}
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	if l.level <= ERROR {
		l.inner.Error(fmt.Sprintf(msg, a...))
	}
}

func (l *defaultLogger) With(args ...any) Logger {
	return &defaultLogger{level: l.level, inner: l.inner.With(args...)}
}

// ParseLevel converts a config value to a level. Unknown values fall back to
// INFO.
func ParseLevel(s string) int {
	switch s {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence":
		return SILENCE
	}

	return INFO
}

func toSlogLevel(level int) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case WARNING:
		return slog.LevelWarn
	case ERROR, SILENCE:
		return slog.LevelError
	}

	return slog.LevelInfo
}
