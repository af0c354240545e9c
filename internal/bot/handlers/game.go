package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/game"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
)

// NewClickHandler performs one click and reports the outcome.
func NewClickHandler(svc *game.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		out, err := svc.Click(context.Background(), sender.ID)
		if err != nil {
			return err
		}

		if cb := c.Callback(); cb != nil {
			// Keep the click loop on one message instead of flooding the chat.
			return c.Respond(&telebot.CallbackResponse{Text: renderClick(out)})
		}

		return c.Send(renderClick(out))
	}
}

// NewMineHandler collects pending mining yield.
func NewMineHandler(svc *game.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		out, err := svc.Mine(context.Background(), sender.ID)
		if err != nil {
			return err
		}

		return c.Send(renderMining(out))
	}
}

// NewBoostHandler activates the temporary click multiplier.
func NewBoostHandler(svc *game.Service, i18nm *i18n.Manager, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		acc, err := svc.ActivateBoost(context.Background(), sender.ID)
		if err != nil {
			return err
		}

		cfg := svc.Engine().Config()
		t := i18nm.Translator(acc.Language)
		return c.Send(fmt.Sprintf(
			translated(t, "boost.activated", "🚀 Boost ×%.0f active for %s! Click away."),
			cfg.BoostMultiplier, cfg.BoostDuration,
		))
	}
}

// NewDailyHandler claims the daily streak reward.
func NewDailyHandler(svc *game.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		reward, err := svc.ClaimDaily(context.Background(), sender.ID)
		if err != nil {
			return err
		}

		return c.Send(renderDaily(reward))
	}
}

// NewRefillHandler tops the energy pool back up for diamonds.
func NewRefillHandler(svc *game.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		acc, err := svc.RefillEnergy(context.Background(), sender.ID)
		if err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("⚡ Energy refilled: %d/%d", acc.Energy, acc.MaxEnergy))
	}
}
