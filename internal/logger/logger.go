// Package logger holds the process-wide structured logger for logclean.
// Progress and per-file results are logged to stderr so that reports written
// to stdout stay machine readable.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	current = slog.New(newHandler(os.Stderr, false, slog.LevelInfo))
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name (debug, info, warn, error) to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

// Options configures the logger. Quiet wins over Debug, and both win over
// Level.
type Options struct {
	Level  string       // debug, info, warn or error; empty means info
	Debug  bool         // same as Level "debug"
	Quiet  bool         // errors only
	JSON   bool         // one JSON object per record
	Output io.Writer    // default: stderr
	Logger *slog.Logger // installed as is when set, for embedding
}

func (o Options) level() (slog.Level, error) {
	switch {
	case o.Quiet:
		return slog.LevelError, nil
	case o.Debug:
		return slog.LevelDebug, nil
	case o.Level == "":
		return slog.LevelInfo, nil
	}
	return ParseLevel(o.Level)
}

// Init replaces the process logger. On error the current logger is kept.
func Init(opts Options) error {
	l := opts.Logger
	if l == nil {
		lvl, err := opts.level()
		if err != nil {
			return err
		}
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		l = slog.New(newHandler(out, opts.JSON, lvl))
	}

	mu.Lock()
	current = l
	mu.Unlock()
	return nil
}

func newHandler(w io.Writer, json bool, lvl slog.Level) slog.Handler {
	ho := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// With returns the current logger with the given attributes attached.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}
