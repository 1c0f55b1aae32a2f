package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a configured application logger.
// It writes JSON to Stderr (to separate from Stdout flow output/JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
