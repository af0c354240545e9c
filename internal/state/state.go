package state

import "time"

// State represents a finite-state machine state of a player conversation.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next player action.
	StateIdle State = "idle"
	// StateMarketSelectItem indicates the player is choosing an item to list on the market.
	StateMarketSelectItem State = "market_select_item"
	// StateMarketSetPrice indicates the player is entering the diamond price for a listing.
	StateMarketSetPrice State = "market_set_price"
	// StateMarketConfirm indicates the player is confirming the listing.
	StateMarketConfirm State = "market_confirm"
	// StateError indicates the conversation needs recovery.
	StateError State = "error"
)

// Context keys stored alongside market listing conversation states.
const (
	CtxKeyItemID   = "item_id"
	CtxKeyQuantity = "quantity"
	CtxKeyPrice    = "price_diamonds"
)

// UserState captures the current FSM state for a Telegram user.
type UserState struct {
	UserID       int64                  `json:"user_id"`
	CurrentState State                  `json:"current_state"`
	Context      map[string]interface{} `json:"context"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
