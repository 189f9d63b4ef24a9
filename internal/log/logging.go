// Package log configures the slog.Logger shared by every ode command.
//
// Without a log file, non-error records go to stdout and errors to stderr.
// When the command prints generated C or a tree on stdout, or a log file is
// set, console output moves to stderr.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below Debug; the assembled C fragments are logged at it.
const LevelTrace slog.Level = -8

// ParseLevel maps a --log.level value to a slog level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}
func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		_ = h.Handle(ctx, r)
	}
	return nil
}
func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}
func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter delegates to an underlying handler but filters which levels are
// passed to it using the provided predicate.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if !f.pass(level) {
		return false
	}
	return f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}
func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

// Options select where the records of one ode invocation go.
type Options struct {
	Level string
	File  string
	// TraceFile receives the assembled C fragments. At trace level without a
	// trace file they go to stderr.
	TraceFile string
	// Stdout is set when the command prints its result, generated C or a
	// tree, on stdout. Console records then all go to stderr.
	Stdout bool
}

// Setup is the logging state handed to the commands.
type Setup struct {
	Logger    *slog.Logger
	Fragments FragmentLogger
	closers   []io.Closer
}

// Close flushes and closes the log and trace files.
func (s *Setup) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// SetupLogger builds the logger and fragment logger described by opts.
func SetupLogger(opts Options) (*Setup, error) {
	return setupLogger(os.Stdout, os.Stderr, opts)
}

func setupLogger(stdout, stderr io.Writer, opts Options) (*Setup, error) {
	level := ParseLevel(opts.Level)
	s := &Setup{}
	var handlers []slog.Handler

	switch {
	case opts.Stdout || opts.File != "":
		handlers = append(handlers, slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	default:
		stdoutHandler := slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level})
		handlers = append(handlers, LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: stdoutHandler})

		stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError})
		handlers = append(handlers, LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: stderrHandler})
	}
	if opts.File != "" {
		f, err := openTruncated(opts.File)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.closers = append(s.closers, f)
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}
	s.Logger = slog.New(MultiHandler{hs: handlers})

	switch {
	case opts.TraceFile != "":
		f, err := openTruncated(opts.TraceFile)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		s.closers = append(s.closers, f)
		s.Fragments = NewFragment(f)
	case level <= LevelTrace:
		s.Fragments = NewFragment(stderr)
	default:
		s.Fragments = NewFragment(nil)
	}
	return s, nil
}

func openTruncated(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
}
