package keyboard

import (
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
)

// Builder creates inline keyboards for the game screens.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

func (b *Builder) encode(unique, data string) string {
	payload, err := EncodeCallback(unique, data)
	if err != nil {
		if b.log != nil {
			b.log.Warn("callback data truncated", slog.String("unique", unique), slog.Any("error", err))
		}
		return unique
	}
	return payload
}

// GameMenu builds the inline action row shown under the main game screen.
func (b *Builder) GameMenu(t i18n.Translator) *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: translated(t, "menu.click", "⛏ Click"), Unique: "game_click"}).
		AddRow(
			InlineButton{Text: translated(t, "menu.mine", "💎 Mine"), Unique: "game_mine"},
			InlineButton{Text: translated(t, "menu.boost", "🚀 Boost"), Unique: "game_boost"},
		).
		AddRow(
			InlineButton{Text: translated(t, "menu.daily", "🎁 Daily"), Unique: "game_daily"},
			InlineButton{Text: translated(t, "menu.refill", "⚡ Refill"), Unique: "game_refill"},
		).
		Build(b.encode)
}

// ShopKeyboard lists purchasable items, one buy button per row.
func (b *Builder) ShopKeyboard(items []*domain.ItemDefinition) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, item := range items {
		label := fmt.Sprintf("%s %s — %d💎", item.Emoji, item.Name, item.PriceDiamonds)
		kb.AddRow(InlineButton{
			Text:   label,
			Unique: "shop_buy",
			Data:   strconv.FormatInt(item.ID, 10),
		})
	}
	return kb.Build(b.encode)
}

// InventoryKeyboard builds per-stack action buttons: miners toggle, buffs
// equip or unequip depending on current slot state.
func (b *Builder) InventoryKeyboard(acc *domain.PlayerAccount, stacks []*domain.OwnedStack, t i18n.Translator) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, stack := range stacks {
		if stack.Item == nil {
			continue
		}

		id := strconv.FormatInt(stack.ItemID, 10)
		switch stack.Item.Type {
		case domain.ItemTypeMiner:
			label := translated(t, "inventory.turn_on", "▶️ Turn on")
			if stack.Active {
				label = translated(t, "inventory.turn_off", "⏸ Turn off")
			}
			kb.AddRow(InlineButton{
				Text:   fmt.Sprintf("%s %s: %s", stack.Item.Emoji, stack.Item.Name, label),
				Unique: "inv_toggle",
				Data:   id,
			})
		case domain.ItemTypeBuff:
			if acc != nil && acc.IsEquipped(stack.ItemID) {
				kb.AddRow(InlineButton{
					Text:   fmt.Sprintf("%s %s: %s", stack.Item.Emoji, stack.Item.Name, translated(t, "inventory.unequip", "➖ Unequip")),
					Unique: "inv_unequip",
					Data:   id,
				})
			} else {
				kb.AddRow(InlineButton{
					Text:   fmt.Sprintf("%s %s: %s", stack.Item.Emoji, stack.Item.Name, translated(t, "inventory.equip", "➕ Equip")),
					Unique: "inv_equip",
					Data:   id,
				})
			}
		}
	}
	return kb.Build(b.encode)
}

// SellableKeyboard lists stacks the player may put on the market.
func (b *Builder) SellableKeyboard(stacks []*domain.OwnedStack) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, stack := range stacks {
		if stack.Item == nil {
			continue
		}
		kb.AddRow(InlineButton{
			Text:   fmt.Sprintf("%s %s ×%d", stack.Item.Emoji, stack.Item.Name, stack.Quantity),
			Unique: "sell_item",
			Data:   strconv.FormatInt(stack.ItemID, 10),
		})
	}
	return kb.Build(b.encode)
}

// MarketKeyboard builds buy buttons for listings plus pagination controls.
func (b *Builder) MarketKeyboard(listings []*domain.MarketListing, viewerID int64, t i18n.Translator, page, totalPages int) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, listing := range listings {
		if listing.Item == nil {
			continue
		}

		id := strconv.FormatInt(listing.ID, 10)
		label := fmt.Sprintf("%s %s ×%d — %d💎", listing.Item.Emoji, listing.Item.Name, listing.Quantity, listing.PriceDiamonds)
		if listing.SellerID == viewerID {
			kb.AddRow(InlineButton{
				Text:   label + " " + translated(t, "market.cancel_suffix", "(yours, cancel)"),
				Unique: "market_cancel",
				Data:   id,
			})
		} else {
			kb.AddRow(InlineButton{Text: label, Unique: "market_buy", Data: id})
		}
	}

	if totalPages > 1 {
		kb.AddRow(PaginationButtons(t, "market_page", page, totalPages)...)
	}

	return kb.Build(b.encode)
}

// ConfirmButtons builds a confirm/abort row for the sell flow.
func (b *Builder) ConfirmButtons(t i18n.Translator) *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(
			InlineButton{Text: translated(t, "common.confirm", "Confirm ✅"), Unique: "sell_confirm"},
			InlineButton{Text: translated(t, "common.cancel", "Cancel ❌"), Unique: "sell_abort"},
		).
		Build(b.encode)
}

// LanguageButtons builds one button per available language.
func (b *Builder) LanguageButtons(languages []string) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	row := make([]InlineButton, 0, len(languages))
	for _, lang := range languages {
		row = append(row, InlineButton{Text: lang, Unique: "set_lang", Data: lang})
	}
	return kb.AddRow(row...).Build(b.encode)
}
