// Package middleware provides cross-cutting handlers for the bot update path.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram updates.
// Click and mine get dedicated tighter limits since autoclickers hammer them.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// Handle returns a telebot middleware that enforces per-user rate limits.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := sender.ID
		if m.rules.IsWhitelisted(userID) {
			return next(c)
		}

		action := rateLimitAction(c)
		limit, window, err := m.actionOrUserLimit(action)
		if err != nil {
			if m.log != nil {
				m.log.Error("failed to load rate limit", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			return next(c)
		}

		key := fmt.Sprintf("user:%d:%s", userID, action)
		result, err := m.limiter.Check(context.Background(), key, limit, window)
		if err != nil {
			if m.log != nil {
				m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			return next(c)
		}

		if !result.Allowed {
			if m.log != nil {
				m.log.Warn("rate limit exceeded", slog.Int64("user_id", userID), slog.String("action", action))
			}

			if cb := c.Callback(); cb != nil {
				return c.Respond(&telebot.CallbackResponse{Text: "Slow down a little ⏳"})
			}
			return c.Send("Slow down a little ⏳")
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) actionOrUserLimit(action string) (int, time.Duration, error) {
	if action != "default" {
		if limit, window, err := m.rules.GetActionLimit(action); err == nil {
			return limit, window, nil
		}
	}
	return m.rules.GetPerUserLimit()
}

// rateLimitAction buckets the update into click, mine, shop, or default.
func rateLimitAction(c telebot.Context) string {
	var data string
	if cb := c.Callback(); cb != nil {
		data = cb.Data
	} else {
		data = c.Text()
	}

	switch {
	case strings.HasPrefix(data, "game_click") || strings.HasPrefix(data, "/click"):
		return "click"
	case strings.HasPrefix(data, "game_mine") || strings.HasPrefix(data, "/mine"):
		return "mine"
	case strings.HasPrefix(data, "shop_buy") || strings.HasPrefix(data, "/shop"):
		return "shop"
	default:
		return "default"
	}
}
