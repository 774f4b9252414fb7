package ui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	Debug bool
	log   *slog.Logger
}

func NewLogger(debug bool) *Logger {
	return NewLoggerTo(os.Stderr, debug)
}

func NewLoggerTo(w io.Writer, debug bool) *Logger {
	lvl := slog.LevelInfo
	if debug {
		lvl = slog.LevelDebug
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{Debug: debug, log: slog.New(h)}
}

// With returns a child logger carrying the given key/value attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Debug: l.Debug, log: l.log.With(args...)}
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Debug {
		l.log.Debug(sprintf(format, args...))
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Info(sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warn(sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Error(sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
