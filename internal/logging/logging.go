// Package logging configures colored structured logging with tint.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint handler on stderr as the slog default at the named level.
func Setup(level string) *slog.Logger {
	return SetupWriter(os.Stderr, ParseLevel(level))
}

// SetupWriter is Setup with an explicit destination and level.
func SetupWriter(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  level == slog.LevelDebug,
	}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
