// Package logger builds the application slog.Logger with masking, optional
// file rotation, and a Sentry tee for warnings and errors.
package logger

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/nanocoin-game/nanocoin-bot/pkg/config"
)

// New constructs the root logger according to cfg. Sensitive attributes are
// always masked before any handler sees them.
func New(cfg config.Config) *slog.Logger {
	level := parseLevel(cfg.Logger.Level)

	var out io.Writer = os.Stdout
	if cfg.Logger.File.Enabled && cfg.Logger.File.Path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Logger.File.Path,
			MaxSize:    cfg.Logger.File.MaxSizeMB,
			MaxBackups: cfg.Logger.File.MaxBackups,
			MaxAge:     cfg.Logger.File.MaxAgeDays,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if cfg.Logger.Format == "json" {
		base = slog.NewJSONHandler(out, opts)
	} else {
		base = slog.NewTextHandler(out, opts)
	}

	if cfg.Sentry.Enabled {
		base = slogmulti.Fanout(
			base,
			slogsentry.Option{Level: slog.LevelWarn}.NewSentryHandler(),
		)
	}

	return slog.New(NewMaskingHandler(base))
}

func parseLevel(level string) slog.Level {
	switch level {
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
