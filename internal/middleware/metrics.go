package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/bot/handlers"
	"github.com/nanocoin-game/nanocoin-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "success"
		if err != nil {
			status = "error"
		}

		metrics.RecordAction(extractActionName(c), status, time.Since(start))

		return err
	}
}

// extractActionName normalizes updates to a low-cardinality label: the
// callback unique or the command word, never free-form text.
func extractActionName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		if idx := strings.Index(cb.Data, ":"); idx > 0 {
			return cb.Data[:idx]
		}
		return cb.Data
	}

	if text := c.Text(); strings.HasPrefix(text, "/") {
		if idx := strings.IndexByte(text, ' '); idx > 0 {
			return text[:idx]
		}
		return text
	}

	return "text"
}
