package logging

import (
	"io"
	"log/slog"
	"strings"
)

// silent is above every standard level.
const silent = slog.Level(100)

// NewLogger creates a logger in the pqhint line format.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewLineHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger creates a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewLineHandler(io.Discard, &slog.HandlerOptions{Level: silent}))
}

// LevelFromString parses debug, info, warn or error. Unknown values give info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off", "none", "quiet":
		return silent
	default:
		return slog.LevelInfo
	}
}

// LevelFromFlags maps the CLI switches to a level.
func LevelFromFlags(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return silent
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
