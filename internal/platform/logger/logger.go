package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog. Debug level is opt-in via
// AGEGATE_LOG_DEBUG so production output stays at info.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("AGEGATE_LOG_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
