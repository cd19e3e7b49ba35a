// Package logger builds the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"

	"github.com/sana-bookkeeping/internal/config"
)

// NewLogger returns a JSON logger on stdout tagged with the service name, so
// the gateway and the reconciler can share one log stream. Unknown level
// strings fall back to info.
func NewLogger(cfg *config.Config, service string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	log := slog.New(handler).With("service", service)
	log.Info("Logger initialized", "level", level.String())
	return log
}
