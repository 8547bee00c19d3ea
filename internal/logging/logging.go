// Package logging builds the slog logger used by the ai command line.
//
// Records go to stderr, or to a size-rotated file when one is configured.
// The stderr handler is text when stderr is a terminal and JSON otherwise.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Azure/azure-ai-cli-sub003/internal/config"
)

// Options picks the logger's destination and shape.
type Options struct {
	Level     string
	Format    string // "", "text" or "json"
	File      string
	MaxSizeMB int
	MaxFiles  int
	// Debug forces the debug level regardless of Level.
	Debug bool
	// Stderr replaces os.Stderr; used by tests.
	Stderr io.Writer
}

// FromConfig maps the [logging] section onto Options.
func FromConfig(c config.LoggingConfig) Options {
	return Options{
		Level:     c.Level,
		Format:    c.Format,
		File:      c.File,
		MaxSizeMB: c.MaxSizeMB,
		MaxFiles:  c.MaxFiles,
	}
}

// New returns a logger and a close func for the rotated file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	closeFn := func() error { return nil }
	var (
		w      io.Writer
		isTerm bool
	)
	switch {
	case opts.File != "":
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxFiles,
		}
		w, closeFn = lj, lj.Close
	case opts.Stderr != nil:
		w = opts.Stderr
	default:
		w = os.Stderr
		isTerm = term.IsTerminal(int(os.Stderr.Fd()))
	}

	var handler slog.Handler
	switch opts.Format {
	case "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	case "":
		if isTerm {
			handler = slog.NewTextHandler(w, handlerOpts)
		} else {
			handler = slog.NewJSONHandler(w, handlerOpts)
		}
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}
	return slog.New(handler), closeFn, nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty is warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("logging: unknown level %q", s)
}
