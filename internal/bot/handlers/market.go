package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/bot/keyboard"
	"github.com/nanocoin-game/nanocoin-bot/internal/game"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
	"github.com/nanocoin-game/nanocoin-bot/internal/state"
)

const marketPageSize = 5

// NewMarketHandler shows the first page of open listings.
func NewMarketHandler(svc *game.Service, kb *keyboard.Builder, i18nm *i18n.Manager, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		return sendMarketPage(c, svc, kb, i18nm, 1)
	}
}

// HandleMarketPage re-renders the market at the requested page.
func HandleMarketPage(svc *game.Service, kb *keyboard.Builder, i18nm *i18n.Manager, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		_, payload, err := keyboard.DecodeCallback(cb.Data)
		if err != nil {
			return nil
		}

		page, err := strconv.Atoi(payload)
		if err != nil || page < 1 {
			page = 1
		}

		return sendMarketPage(c, svc, kb, i18nm, page)
	}
}

func sendMarketPage(c telebot.Context, svc *game.Service, kb *keyboard.Builder, i18nm *i18n.Manager, page int) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx := context.Background()

	// Fetch one extra row to know whether a next page exists.
	listings, err := svc.OpenListings(ctx, marketPageSize+1, (page-1)*marketPageSize)
	if err != nil {
		return err
	}

	totalPages := page
	if len(listings) > marketPageSize {
		listings = listings[:marketPageSize]
		totalPages = page + 1
	}

	if len(listings) == 0 && page == 1 {
		return c.Send("🛒 The market is empty. Use /sell to list something!")
	}

	var b strings.Builder
	b.WriteString("🛒 Market:\n\n")
	for _, listing := range listings {
		if listing.Item == nil {
			continue
		}
		fmt.Fprintf(&b, "%s %s ×%d — %d💎\n",
			listing.Item.Emoji, listing.Item.Name, listing.Quantity, listing.PriceDiamonds)
	}

	t := i18nm.Translator("")
	markup := kb.MarketKeyboard(listings, sender.ID, t, page, totalPages)

	if c.Callback() != nil {
		return c.Edit(b.String(), markup)
	}
	return c.Send(b.String(), markup)
}

// HandleMarketBuy settles a purchase from the market screen.
func HandleMarketBuy(svc *game.Service, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		cb := c.Callback()
		if sender == nil || cb == nil {
			return nil
		}

		listingID, err := callbackID(cb.Data)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		listing, err := svc.BuyListing(context.Background(), sender.ID, listingID)
		if err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("✅ Bought %s %s ×%d for %d💎.",
			listing.Item.Emoji, listing.Item.Name, listing.Quantity, listing.PriceDiamonds))
	}
}

// HandleMarketCancel withdraws the player's own listing.
func HandleMarketCancel(svc *game.Service, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		cb := c.Callback()
		if sender == nil || cb == nil {
			return nil
		}

		listingID, err := callbackID(cb.Data)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		if err := svc.CancelListing(context.Background(), sender.ID, listingID); err != nil {
			return err
		}

		return c.Send("↩️ Listing cancelled, the items are back in your inventory.")
	}
}

// NewSellHandler starts the listing conversation: pick an item to sell.
func NewSellHandler(svc *game.Service, fsm state.StateMachine, kb *keyboard.Builder, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		stacks, err := svc.Inventory(ctx, sender.ID)
		if err != nil {
			return err
		}
		if len(stacks) == 0 {
			return c.Send("🎒 You have nothing to sell yet.")
		}

		if err := fsm.SetState(ctx, sender.ID, state.StateMarketSelectItem, nil); err != nil {
			return err
		}

		return c.Send("What do you want to sell?", kb.SellableKeyboard(stacks))
	}
}

// HandleSellItem stores the chosen item and asks for quantity and price.
func HandleSellItem(fsm state.StateMachine, log *slog.Logger) CallbackHandler {
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

		ctx := context.Background()
		data := map[string]interface{}{state.CtxKeyItemID: itemID}
		if err := fsm.SetState(ctx, sender.ID, state.StateMarketSetPrice, data); err != nil {
			return err
		}

		return c.Send("Send the price in diamonds, or \"<quantity> <price>\" to sell more than one.")
	}
}

// NewSellPriceHandler parses the quantity/price message while the player is
// in the set-price state.
func NewSellPriceHandler(svc *game.Service, fsm state.StateMachine, kb *keyboard.Builder, i18nm *i18n.Manager, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		userState, err := fsm.GetState(ctx, sender.ID)
		if err != nil {
			return err
		}

		itemID, ok := contextInt64(userState.Context, state.CtxKeyItemID)
		if !ok {
			_ = fsm.ClearState(ctx, sender.ID)
			return c.Send("The sell flow was interrupted. Start again with /sell.")
		}

		quantity, price, err := parseQuantityPrice(c.Text())
		if err != nil {
			return c.Send("I did not understand that. Send a price like \"25\" or \"3 25\" for quantity and price.")
		}

		data := map[string]interface{}{
			state.CtxKeyItemID:   itemID,
			state.CtxKeyQuantity: quantity,
			state.CtxKeyPrice:    price,
		}
		if err := fsm.SetState(ctx, sender.ID, state.StateMarketConfirm, data); err != nil {
			return err
		}

		t := i18nm.Translator("")
		tax := price * svc.Engine().Config().MarketTaxPercent / 100
		return c.Send(fmt.Sprintf(
			"List %d item(s) for %d💎? The market takes %d💎 in tax on sale.",
			quantity, price, tax,
		), kb.ConfirmButtons(t))
	}
}

// HandleSellConfirm creates the listing from the staged conversation data.
func HandleSellConfirm(svc *game.Service, fsm state.StateMachine, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		userState, err := fsm.GetState(ctx, sender.ID)
		if err != nil {
			return err
		}

		itemID, okItem := contextInt64(userState.Context, state.CtxKeyItemID)
		quantity, okQty := contextInt64(userState.Context, state.CtxKeyQuantity)
		price, okPrice := contextInt64(userState.Context, state.CtxKeyPrice)
		if !okItem || !okQty || !okPrice {
			_ = fsm.ClearState(ctx, sender.ID)
			return c.Send("The sell flow was interrupted. Start again with /sell.")
		}

		listing, err := svc.ListItem(ctx, sender.ID, itemID, int(quantity), price)
		if err != nil {
			return err
		}

		if err := fsm.ClearState(ctx, sender.ID); err != nil && log != nil {
			log.Warn("failed to clear state after listing", slog.Int64("user_id", sender.ID), slog.Any("error", err))
		}

		return c.Send(fmt.Sprintf("📣 Listed ×%d for %d💎. Watch /market for buyers!",
			listing.Quantity, listing.PriceDiamonds))
	}
}

// HandleSellAbort drops the staged listing.
func HandleSellAbort(fsm state.StateMachine, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		if err := fsm.ClearState(context.Background(), sender.ID); err != nil {
			return err
		}

		return c.Send("Listing aborted.")
	}
}

func parseQuantityPrice(text string) (quantity, price int64, err error) {
	fields := strings.Fields(strings.TrimSpace(text))
	switch len(fields) {
	case 1:
		price, err = strconv.ParseInt(fields[0], 10, 64)
		quantity = 1
	case 2:
		quantity, err = strconv.ParseInt(fields[0], 10, 64)
		if err == nil {
			price, err = strconv.ParseInt(fields[1], 10, 64)
		}
	default:
		return 0, 0, fmt.Errorf("expected 1 or 2 numbers, got %d fields", len(fields))
	}

	if err != nil {
		return 0, 0, err
	}
	if quantity < 1 || price < 1 {
		return 0, 0, fmt.Errorf("quantity and price must be positive")
	}

	return quantity, price, nil
}

// contextInt64 reads a numeric value from FSM context data, tolerating the
// float64 representation JSON round-trips produce.
func contextInt64(data map[string]interface{}, key string) (int64, bool) {
	if data == nil {
		return 0, false
	}

	switch v := data[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
