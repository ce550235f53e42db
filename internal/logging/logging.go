// Package logging builds the slog logger for the CLI and the console.
//
// Commands log to stderr. The interactive console owns the terminal, so it
// logs to a file in the config directory instead.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const FileName = "trustdesk.log"

type Config struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// File, when set, receives the log instead of Stderr.
	File   string
	Stderr io.Writer
	JSON   bool
}

func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return lvl, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
	}
	return lvl, nil
}

// New returns the logger and a close func for the log file (a no-op when
// logging to stderr).
func New(cfg Config) (*slog.Logger, func() error, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	w := cfg.Stderr
	if w == nil {
		w = os.Stderr
	}
	closeFn := func() error { return nil }
	if path := strings.TrimSpace(cfg.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = f.Close
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closeFn, nil
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
