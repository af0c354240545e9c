package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
)

// MainMenu builds a localized reply keyboard for the game main menu.
func MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	lookup := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	clickBtn := markup.Text(lookup("main_menu.click"))
	mineBtn := markup.Text(lookup("main_menu.mine"))
	profileBtn := markup.Text(lookup("main_menu.profile"))
	inventoryBtn := markup.Text(lookup("main_menu.inventory"))
	shopBtn := markup.Text(lookup("main_menu.shop"))
	marketBtn := markup.Text(lookup("main_menu.market"))
	questsBtn := markup.Text(lookup("main_menu.quests"))
	topBtn := markup.Text(lookup("main_menu.top"))

	markup.Reply(
		markup.Row(clickBtn, mineBtn),
		markup.Row(profileBtn, inventoryBtn),
		markup.Row(shopBtn, marketBtn),
		markup.Row(questsBtn, topBtn),
	)

	return markup
}
