package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns the process-wide slog.Logger. Production emits JSON for
// the log pipeline; anything else gets human-readable text. LOG_LEVEL may be
// debug, info, warn, or error (default: info).
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel()}
	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("service", "joinify")
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
