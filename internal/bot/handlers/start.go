package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/bot/keyboard"
	"github.com/nanocoin-game/nanocoin-bot/internal/game"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
)

// NewStartHandler greets the player, creating the account on first contact.
func NewStartHandler(svc *game.Service, kb *keyboard.Builder, i18nm *i18n.Manager, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		acc, err := svc.GetOrCreateAccount(ctx, sender.ID, sender.Username, sender.FirstName)
		if err != nil {
			if log != nil {
				log.Error("start handler failed", slog.Int64("user_id", sender.ID), slog.Any("error", err))
			}
			return err
		}

		t := i18nm.Translator(acc.Language)
		welcome := translated(t, "start.welcome",
			"⛏ Welcome to NanoCoin! Tap Click to earn coins, buy miners in the shop, and climb the leaderboard.")

		if err := c.Send(welcome, keyboard.MainMenu(t)); err != nil {
			return err
		}

		return c.Send(
			fmt.Sprintf("🪙 %d | 💎 %d | ⚡ %d/%d", acc.Coins, acc.Diamonds, acc.Energy, acc.MaxEnergy),
			kb.GameMenu(t),
		)
	}
}

// NewHelpHandler lists the available commands.
func NewHelpHandler(i18nm *i18n.Manager) Handler {
	return func(c telebot.Context) error {
		t := i18nm.Translator("")
		return c.Send(translated(t, "help.text",
			"/click — earn coins\n"+
				"/mine — collect mining yield\n"+
				"/boost — activate a click boost\n"+
				"/daily — claim the daily reward\n"+
				"/refill — refill energy for diamonds\n"+
				"/profile — your stats\n"+
				"/inventory — manage items\n"+
				"/shop — buy items\n"+
				"/market — player market\n"+
				"/sell — list an item for sale\n"+
				"/quests — quest progress\n"+
				"/achievements — milestone progress\n"+
				"/top — leaderboard\n"+
				"/cancel — abort the current action"))
	}
}
