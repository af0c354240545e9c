package bot

// Command constants for Telegram bot commands.
const (
	CommandStart        = "/start"
	CommandClick        = "/click"
	CommandMine         = "/mine"
	CommandBoost        = "/boost"
	CommandDaily        = "/daily"
	CommandRefill       = "/refill"
	CommandProfile      = "/profile"
	CommandInventory    = "/inventory"
	CommandShop         = "/shop"
	CommandMarket       = "/market"
	CommandQuests       = "/quests"
	CommandAchievements = "/achievements"
	CommandTop          = "/top"
	CommandSell         = "/sell"
	CommandCancel       = "/cancel"
	CommandHelp         = "/help"
)

// Callback prefix constants for inline button interactions.
const (
	CallbackClick        = "game_click"
	CallbackMine         = "game_mine"
	CallbackBoost        = "game_boost"
	CallbackDaily        = "game_daily"
	CallbackRefill       = "game_refill"
	CallbackShopBuy      = "shop_buy"
	CallbackInvToggle    = "inv_toggle"
	CallbackInvEquip     = "inv_equip"
	CallbackInvUnequip   = "inv_unequip"
	CallbackMarketBuy    = "market_buy"
	CallbackMarketCancel = "market_cancel"
	CallbackMarketPage   = "market_page"
	CallbackSellItem     = "sell_item"
	CallbackSellConfirm  = "sell_confirm"
	CallbackSellAbort    = "sell_abort"
	CallbackSetLanguage  = "set_lang"
)
