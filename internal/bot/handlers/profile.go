package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/bot/keyboard"
	"github.com/nanocoin-game/nanocoin-bot/internal/game"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
	"github.com/nanocoin-game/nanocoin-bot/internal/quests"
)

const leaderboardSize = 10

// NewProfileHandler shows the player's balances, pools, and progression.
func NewProfileHandler(svc *game.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		acc, err := svc.Profile(ctx, sender.ID)
		if err != nil {
			if log != nil {
				log.Error("profile handler failed", slog.Int64("user_id", sender.ID), slog.Any("error", err))
			}
			return err
		}

		return c.Send(renderProfile(acc, svc.Engine().XPNeeded(acc.ClickLevel)))
	}
}

// NewInventoryHandler shows owned stacks with toggle and equip controls.
func NewInventoryHandler(svc *game.Service, kb *keyboard.Builder, i18nm *i18n.Manager, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		acc, err := svc.Profile(ctx, sender.ID)
		if err != nil {
			return err
		}

		stacks, err := svc.Inventory(ctx, sender.ID)
		if err != nil {
			return err
		}

		t := i18nm.Translator(acc.Language)
		return c.Send(renderInventory(stacks), kb.InventoryKeyboard(acc, stacks, t))
	}
}

// NewQuestsHandler shows quest progress.
func NewQuestsHandler(questSvc *quests.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		list, err := questSvc.List(context.Background(), sender.ID)
		if err != nil {
			return err
		}

		return c.Send(renderQuests(list))
	}
}

// NewAchievementsHandler shows the milestone catalog with unlock marks.
// Viewing is also when newly met milestones get unlocked and paid.
func NewAchievementsHandler(svc *game.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		statuses, err := svc.Achievements(context.Background(), sender.ID)
		if err != nil {
			if log != nil {
				log.Error("achievements handler failed", slog.Int64("user_id", sender.ID), slog.Any("error", err))
			}
			return err
		}

		return c.Send(renderAchievements(statuses))
	}
}

// NewTopHandler shows the coin leaderboard.
func NewTopHandler(svc *game.Service, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		top, err := svc.Leaderboard(context.Background(), leaderboardSize)
		if err != nil {
			return err
		}

		return c.Send(renderLeaderboard(top))
	}
}
