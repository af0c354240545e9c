// Package bot implements the Telegram transport for the game.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nanocoin-game/nanocoin-bot/internal/bot/handlers"
	"github.com/nanocoin-game/nanocoin-bot/internal/bot/keyboard"
	errors "github.com/nanocoin-game/nanocoin-bot/internal/errors"
	"github.com/nanocoin-game/nanocoin-bot/internal/game"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
	"github.com/nanocoin-game/nanocoin-bot/internal/idempotency"
	"github.com/nanocoin-game/nanocoin-bot/internal/middleware"
	"github.com/nanocoin-game/nanocoin-bot/internal/quests"
	"github.com/nanocoin-game/nanocoin-bot/internal/state"
	"github.com/nanocoin-game/nanocoin-bot/pkg/config"
)

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot            *telebot.Bot
	log                *slog.Logger
	cfg                config.Config
	fsm                state.StateMachine
	game               *game.Service
	quests             *quests.Service
	i18n               *i18n.Manager
	rateLimitMw        *middleware.RateLimitMiddleware
	router             *Router
	dispatcher         *Dispatcher
	keyboard           *keyboard.Builder
	errHandler         *errors.Handler
	idempotencyManager idempotency.Manager
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	gameSvc *game.Service,
	questSvc *quests.Service,
	i18nm *i18n.Manager,
	fsm state.StateMachine,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(fsm, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:            tb,
		log:                log,
		cfg:                cfg,
		fsm:                fsm,
		game:               gameSvc,
		quests:             questSvc,
		i18n:               i18nm,
		rateLimitMw:        rateLimitMw,
		router:             router,
		dispatcher:         dispatcher,
		keyboard:           kb,
		errHandler:         errHandler,
		idempotencyManager: idempotencyManager,
	}

	b.setupRouter()

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AccountMiddleware(b.game, b.log))
	b.router.Use(middleware.Metrics)

	// Commands.
	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.game, b.keyboard, b.i18n, b.log))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler(b.i18n))
	b.router.RegisterCommand(CommandClick, handlers.NewClickHandler(b.game, b.log))
	b.router.RegisterCommand(CommandMine, handlers.NewMineHandler(b.game, b.log))
	b.router.RegisterCommand(CommandBoost, handlers.NewBoostHandler(b.game, b.i18n, b.log))
	b.router.RegisterCommand(CommandDaily, handlers.NewDailyHandler(b.game, b.log))
	b.router.RegisterCommand(CommandRefill, handlers.NewRefillHandler(b.game, b.log))
	b.router.RegisterCommand(CommandProfile, handlers.NewProfileHandler(b.game, b.log))
	b.router.RegisterCommand(CommandInventory, handlers.NewInventoryHandler(b.game, b.keyboard, b.i18n, b.log))
	b.router.RegisterCommand(CommandShop, handlers.NewShopHandler(b.game, b.keyboard, b.log))
	b.router.RegisterCommand(CommandMarket, handlers.NewMarketHandler(b.game, b.keyboard, b.i18n, b.log))
	b.router.RegisterCommand(CommandSell, handlers.NewSellHandler(b.game, b.fsm, b.keyboard, b.log))
	b.router.RegisterCommand(CommandQuests, handlers.NewQuestsHandler(b.quests, b.log))
	b.router.RegisterCommand(CommandAchievements, handlers.NewAchievementsHandler(b.game, b.log))
	b.router.RegisterCommand(CommandTop, handlers.NewTopHandler(b.game, b.log))
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(b.fsm, b.keyboard, b.log))

	// Inline callbacks.
	b.router.RegisterCallback(CallbackClick, handlers.CallbackHandler(handlers.NewClickHandler(b.game, b.log)))
	b.router.RegisterCallback(CallbackMine, handlers.CallbackHandler(handlers.NewMineHandler(b.game, b.log)))
	b.router.RegisterCallback(CallbackBoost, handlers.CallbackHandler(handlers.NewBoostHandler(b.game, b.i18n, b.log)))
	b.router.RegisterCallback(CallbackDaily, handlers.CallbackHandler(handlers.NewDailyHandler(b.game, b.log)))
	b.router.RegisterCallback(CallbackRefill, handlers.CallbackHandler(handlers.NewRefillHandler(b.game, b.log)))
	b.router.RegisterCallback(CallbackShopBuy, handlers.HandleShopBuy(b.game, b.log))
	b.router.RegisterCallback(CallbackInvToggle, handlers.HandleInventoryToggle(b.game, b.log))
	b.router.RegisterCallback(CallbackInvEquip, handlers.HandleInventoryEquip(b.game, b.log))
	b.router.RegisterCallback(CallbackInvUnequip, handlers.HandleInventoryUnequip(b.game, b.log))
	b.router.RegisterCallback(CallbackMarketBuy, handlers.HandleMarketBuy(b.game, b.log))
	b.router.RegisterCallback(CallbackMarketCancel, handlers.HandleMarketCancel(b.game, b.log))
	b.router.RegisterCallback(CallbackMarketPage, handlers.HandleMarketPage(b.game, b.keyboard, b.i18n, b.log))
	b.router.RegisterCallback(CallbackSellItem, handlers.HandleSellItem(b.fsm, b.log))
	b.router.RegisterCallback(CallbackSellConfirm, handlers.HandleSellConfirm(b.game, b.fsm, b.log))
	b.router.RegisterCallback(CallbackSellAbort, handlers.HandleSellAbort(b.fsm, b.log))
	b.router.RegisterCallback(CallbackSetLanguage, handlers.HandleSetLanguage(b.game, b.i18n, b.log))

	// Conversation states.
	b.dispatcher.RegisterStateHandler(state.StateMarketSetPrice,
		handlers.NewSellPriceHandler(b.game, b.fsm, b.keyboard, b.i18n, b.log))

	// Reply keyboard buttons arrive as plain text in the user's language.
	b.router.SetDefault(b.menuLabelHandler())
}

// menuLabelHandler maps localized main menu labels back to their commands.
func (b *Bot) menuLabelHandler() handlers.Handler {
	bindings := map[string]string{
		"main_menu.click":     CommandClick,
		"main_menu.mine":      CommandMine,
		"main_menu.profile":   CommandProfile,
		"main_menu.inventory": CommandInventory,
		"main_menu.shop":      CommandShop,
		"main_menu.market":    CommandMarket,
		"main_menu.quests":    CommandQuests,
		"main_menu.top":       CommandTop,
	}

	labels := make(map[string]string)
	if b.i18n != nil {
		for _, lang := range b.i18n.Languages() {
			t := b.i18n.Translator(lang)
			for key, cmd := range bindings {
				if label := t.T(key); label != "" && label != key {
					labels[label] = cmd
				}
			}
		}
	}

	return func(c telebot.Context) error {
		cmd, ok := labels[c.Text()]
		if !ok {
			return nil
		}

		if handler := b.router.getCommandHandler(cmd); handler != nil {
			return handler(c)
		}
		return nil
	}
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
