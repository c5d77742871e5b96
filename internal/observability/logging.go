// Package observability provides structured logging and telemetry setup.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// InitLogger configures the global slog logger writing to w at the given
// level. format "text" selects a human-readable handler, coloured only when w
// is a terminal; anything else selects JSON.
func InitLogger(w io.Writer, level, format string) *slog.Logger {
	logger := slog.New(NewHandler(w, level, format))
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds the handler InitLogger installs.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "text") {
		return tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
