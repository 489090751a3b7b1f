package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler encoding.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a configured application logger.
// It writes to Stderr (stdout stays free for command output and JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(format, FormatJSON) {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a flag value to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
