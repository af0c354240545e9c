package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/bot/keyboard"
	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/game"
)

// NewShopHandler lists the item catalog with buy buttons.
func NewShopHandler(svc *game.Service, kb *keyboard.Builder, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		items, err := svc.Catalog(context.Background(), "")
		if err != nil {
			return err
		}

		if len(items) == 0 {
			return c.Send("🏪 The shop is empty right now.")
		}

		var b strings.Builder
		b.WriteString("🏪 Shop:\n\n")
		for _, item := range items {
			fmt.Fprintf(&b, "%s %s — %d💎", item.Emoji, item.Name, item.PriceDiamonds)
			if item.Type == domain.ItemTypeMiner {
				fmt.Fprintf(&b, " (%.1f 🪙/h, %.1f ⚡/h)", item.MiningRate, item.ElectricityConsumption)
			}
			if item.Stock != domain.UnlimitedStock {
				fmt.Fprintf(&b, " [%d left]", item.Stock)
			}
			b.WriteString("\n")
		}

		return c.Send(b.String(), kb.ShopKeyboard(items))
	}
}

// HandleShopBuy processes a buy button press.
func HandleShopBuy(svc *game.Service, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		cb := c.Callback()
		if sender == nil || cb == nil {
			return nil
		}

		itemID, err := callbackID(cb.Data)
		if err != nil {
			if log != nil {
				log.Warn("malformed shop callback", slog.String("data", cb.Data))
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		item, err := svc.BuyItem(context.Background(), sender.ID, itemID, 1)
		if err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("✅ Bought %s %s! Check your /inventory.", item.Emoji, item.Name))
	}
}

// HandleInventoryToggle flips a miner stack on or off.
func HandleInventoryToggle(svc *game.Service, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		cb := c.Callback()
		if sender == nil || cb == nil {
			return nil
		}

		itemID, err := callbackID(cb.Data)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		active, err := svc.ToggleMiner(context.Background(), sender.ID, itemID)
		if err != nil {
			return err
		}

		msg := "⏸ Miner stopped."
		if active {
			msg = "▶️ Miner running. It consumes electricity while it works."
		}
		return c.Respond(&telebot.CallbackResponse{Text: msg})
	}
}

// HandleInventoryEquip places a buff item into a free slot.
func HandleInventoryEquip(svc *game.Service, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		cb := c.Callback()
		if sender == nil || cb == nil {
			return nil
		}

		itemID, err := callbackID(cb.Data)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		if err := svc.EquipItem(context.Background(), sender.ID, itemID); err != nil {
			if errors.Is(err, domain.ErrSlotsFull) {
				return c.Respond(&telebot.CallbackResponse{Text: "All equipment slots are occupied."})
			}
			return err
		}

		return c.Respond(&telebot.CallbackResponse{Text: "➕ Equipped."})
	}
}

// HandleInventoryUnequip frees the item's slot.
func HandleInventoryUnequip(svc *game.Service, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		cb := c.Callback()
		if sender == nil || cb == nil {
			return nil
		}

		itemID, err := callbackID(cb.Data)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		if err := svc.UnequipItem(context.Background(), sender.ID, itemID); err != nil {
			return err
		}

		return c.Respond(&telebot.CallbackResponse{Text: "➖ Unequipped."})
	}
}

// callbackID extracts the numeric payload from encoded callback data.
func callbackID(data string) (int64, error) {
	_, payload, err := keyboard.DecodeCallback(data)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(payload, 10, 64)
}
