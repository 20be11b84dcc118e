package logger

import (
	"os"

	"log/slog"
)

// New returns a slog.Logger configured for the application environment.
// Production and staging emit JSON for log shipping; development gets
// human-readable text at debug level. LOG_LEVEL overrides the level.
func New(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(env)}

	var handler slog.Handler
	switch env {
	case "production", "staging":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("env", env)
}

func parseLevel(env string) slog.Level {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			return level
		}
	}

	switch env {
	case "production", "staging":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
