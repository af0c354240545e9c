package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/bot/keyboard"
	"github.com/nanocoin-game/nanocoin-bot/internal/game"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
)

// NewSettingsHandler offers the language choices.
func NewSettingsHandler(svc *game.Service, kb *keyboard.Builder, i18nm *i18n.Manager, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		acc, err := svc.Profile(context.Background(), sender.ID)
		if err != nil {
			return err
		}

		t := i18nm.Translator(acc.Language)
		return c.Send(
			translated(t, "settings.choose_language", "🌐 Choose your language:"),
			kb.LanguageButtons(i18nm.Languages()),
		)
	}
}

// HandleSetLanguage stores the chosen language on the account.
func HandleSetLanguage(svc *game.Service, i18nm *i18n.Manager, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		cb := c.Callback()
		if sender == nil || cb == nil {
			return nil
		}

		_, lang, err := keyboard.DecodeCallback(cb.Data)
		if err != nil || lang == "" {
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		if err := svc.SetLanguage(context.Background(), sender.ID, lang); err != nil {
			return err
		}

		t := i18nm.Translator(lang)
		return c.Send(translated(t, "settings.language_saved", "✅ Language saved."), keyboard.MainMenu(t))
	}
}
