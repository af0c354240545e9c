package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/accountcache"
	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
	apperrors "github.com/nanocoin-game/nanocoin-bot/internal/errors"
	"github.com/nanocoin-game/nanocoin-bot/internal/jobs"
	"github.com/nanocoin-game/nanocoin-bot/internal/repository"
	"github.com/nanocoin-game/nanocoin-bot/pkg/metrics"
)

const profileCacheTTL = 30 * time.Second

// Storefront errors surfaced to handlers alongside economy errors.
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrOutOfStock      = errors.New("item is out of stock")
	ErrStackNotFound   = errors.New("you do not own this item")
	ErrListingNotFound = errors.New("listing no longer exists")
	ErrOwnListing      = errors.New("cannot buy your own listing")
	ErrNotEquippable   = errors.New("this item cannot be equipped")
)

// Service orchestrates one player action at a time: load state, evaluate it
// through the economy engine inside a row lock, persist, then emit side
// effects (quest progress, metrics). Side effects never roll an action back.
type Service struct {
	accounts     repository.AccountRepository
	items        repository.ItemRepository
	inventory    repository.InventoryRepository
	market       repository.MarketRepository
	quests       repository.QuestRepository
	achievements repository.AchievementRepository
	cache        *accountcache.Cache
	queue        jobs.Manager
	breaker      *apperrors.CircuitBreaker
	log          *slog.Logger

	// engine is swapped wholesale on config hot reload.
	engine atomic.Pointer[economy.Engine]
}

// NewService wires the game service. The queue may be nil in tests; quest
// progress is then skipped.
func NewService(
	accounts repository.AccountRepository,
	items repository.ItemRepository,
	inventory repository.InventoryRepository,
	market repository.MarketRepository,
	quests repository.QuestRepository,
	achievements repository.AchievementRepository,
	cache *accountcache.Cache,
	queue jobs.Manager,
	engine *economy.Engine,
	log *slog.Logger,
) *Service {
	s := &Service{
		accounts:     accounts,
		items:        items,
		inventory:    inventory,
		market:       market,
		quests:       quests,
		achievements: achievements,
		cache:        cache,
		queue:        queue,
		breaker:      apperrors.NewCircuitBreaker(),
		log:          log,
	}
	s.engine.Store(engine)

	return s
}

// Engine returns the engine currently in use.
func (s *Service) Engine() *economy.Engine {
	return s.engine.Load()
}

// SwapEngine installs a new engine built from reloaded constants.
// In-flight actions finish on the engine they started with.
func (s *Service) SwapEngine(engine *economy.Engine) {
	s.engine.Swap(engine)
	s.log.Info("economy engine reloaded")
}

// GetOrCreateAccount loads the player's account, creating it on first
// contact with full energy and electricity pools.
func (s *Service) GetOrCreateAccount(ctx context.Context, userID int64, username, firstName string) (*domain.PlayerAccount, error) {
	acc, err := s.accounts.FindByID(ctx, userID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	cfg := s.Engine().Config()
	acc = domain.NewPlayerAccount(userID, username, firstName, cfg.MaxEnergy, cfg.MaxElectricity, time.Now().UTC())
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	// Missing quests only cost the player their quest tab, not the game.
	if s.quests != nil {
		if err := s.quests.SeedDefaults(ctx, userID); err != nil {
			s.log.Error("failed to seed default quests", slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}

	s.log.Info("player account created", slog.Int64("user_id", userID), slog.String("username", username))
	return acc, nil
}

// Click performs one click: spends energy, credits coins and XP, rolls for
// a diamond. Equipped buffs and an active boost raise the reward.
func (s *Service) Click(ctx context.Context, userID int64) (*economy.ClickOutcome, error) {
	started := time.Now()
	engine := s.Engine()

	var outcome *economy.ClickOutcome
	_, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		equipped, err := s.equippedItems(ctx, acc)
		if err != nil {
			return err
		}

		outcome, err = engine.ProcessClick(acc, equipped)
		return err
	})
	if err != nil {
		s.observe("click", started, err)
		return nil, err
	}

	s.observe("click", started, nil)
	metrics.RecordCoinsEarned("click", outcome.CoinsEarned)
	if outcome.DiamondFound {
		metrics.RecordDiamondFound("click")
	}
	if outcome.LeveledUp {
		metrics.RecordLevelUp()
		s.log.Info("player leveled up", slog.Int64("user_id", userID), slog.Int("level", outcome.Level))
	}

	s.notifyQuests(ctx, userID, domain.QuestKindClick, 1)
	return outcome, nil
}

// Mine reconciles elapsed time against active miners and electricity.
func (s *Service) Mine(ctx context.Context, userID int64) (*economy.MiningOutcome, error) {
	started := time.Now()
	engine := s.Engine()

	var outcome *economy.MiningOutcome
	_, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		stacks, err := s.inventory.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		equipped, err := s.equippedItems(ctx, acc)
		if err != nil {
			return err
		}

		outcome, err = engine.MiningRewards(acc, stacks, equipped, engine.Now())
		return err
	})
	if err != nil {
		s.observe("mine", started, err)
		return nil, err
	}

	s.observe("mine", started, nil)
	metrics.RecordCoinsEarned("mining", outcome.CoinsEarned)
	if outcome.DiamondsEarned > 0 {
		metrics.RecordDiamondFound("mining")
	}

	s.notifyQuests(ctx, userID, domain.QuestKindMine, outcome.CoinsEarned)
	return outcome, nil
}

// ActivateBoost spends diamonds for a temporary click multiplier.
func (s *Service) ActivateBoost(ctx context.Context, userID int64) (*domain.PlayerAccount, error) {
	started := time.Now()
	engine := s.Engine()

	acc, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		return engine.ActivateBoost(acc)
	})
	s.observe("boost", started, err)
	return acc, err
}

// RefillEnergy spends diamonds to top the energy pool back up.
func (s *Service) RefillEnergy(ctx context.Context, userID int64) (*domain.PlayerAccount, error) {
	started := time.Now()
	engine := s.Engine()

	acc, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		return engine.RefillEnergy(acc)
	})
	s.observe("refill", started, err)
	return acc, err
}

// ClaimDaily grants the streak-tiered daily reward.
func (s *Service) ClaimDaily(ctx context.Context, userID int64) (*economy.DailyReward, error) {
	started := time.Now()
	engine := s.Engine()

	var reward *economy.DailyReward
	_, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		var err error
		reward, err = engine.ClaimDaily(acc)
		return err
	})
	if err != nil {
		s.observe("daily", started, err)
		return nil, err
	}

	s.observe("daily", started, nil)
	metrics.RecordCoinsEarned("daily", reward.Coins)
	return reward, nil
}

// BuyItem purchases a catalog item for diamonds and adds it to the
// player's inventory. Limited-stock items decrement the shared counter.
func (s *Service) BuyItem(ctx context.Context, userID, itemID int64, quantity int) (*domain.ItemDefinition, error) {
	if quantity <= 0 {
		quantity = 1
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if item.Stock != domain.UnlimitedStock && item.Stock < quantity {
		return nil, ErrOutOfStock
	}

	cost := item.PriceDiamonds * int64(quantity)
	_, err = s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		if acc.Diamonds < cost {
			return economy.ErrCannotAfford("diamonds")
		}
		acc.Diamonds -= cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.inventory.AddQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}
	if item.Stock != domain.UnlimitedStock {
		if err := s.items.DecrementStock(ctx, itemID, quantity); err != nil {
			s.log.Error("failed to decrement stock", slog.Int64("item_id", itemID), slog.Any("error", err))
		}
	}

	s.log.Info("item purchased",
		slog.Int64("user_id", userID), slog.String("item", item.Code), slog.Int("quantity", quantity))
	return item, nil
}

// ToggleMiner flips whether an owned miner stack contributes to mining.
func (s *Service) ToggleMiner(ctx context.Context, userID, itemID int64) (bool, error) {
	stack, err := s.inventory.FindStack(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrStackNotFound
		}
		return false, err
	}

	next := !stack.Active
	if err := s.inventory.SetActive(ctx, stack.ID, next); err != nil {
		return false, err
	}

	return next, nil
}

// EquipItem places an owned buff item into the first free equipment slot.
func (s *Service) EquipItem(ctx context.Context, userID, itemID int64) error {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		return err
	}
	if item.Type != domain.ItemTypeBuff {
		return ErrNotEquippable
	}

	if _, err := s.inventory.FindStack(ctx, userID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStackNotFound
		}
		return err
	}

	_, err = s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		if acc.IsEquipped(itemID) {
			return nil
		}
		return acc.Equip(itemID)
	})
	return err
}

// UnequipItem clears the item from its equipment slot if present.
func (s *Service) UnequipItem(ctx context.Context, userID, itemID int64) error {
	_, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		acc.Unequip(itemID)
		return nil
	})
	return err
}

// Inventory returns the player's stacks with catalog data attached.
func (s *Service) Inventory(ctx context.Context, userID int64) ([]*domain.OwnedStack, error) {
	return s.inventory.ListByUser(ctx, userID)
}

// Catalog lists purchasable items, optionally filtered by type.
func (s *Service) Catalog(ctx context.Context, itemType domain.ItemType) ([]*domain.ItemDefinition, error) {
	if itemType == "" {
		return s.items.ListAll(ctx)
	}
	return s.items.ListByType(ctx, itemType)
}

// SetLanguage stores the player's preferred message language.
func (s *Service) SetLanguage(ctx context.Context, userID int64, lang string) error {
	_, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		acc.Language = lang
		return nil
	})
	return err
}

// Leaderboard returns the richest players by coin balance.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*domain.PlayerAccount, error) {
	return s.accounts.TopByCoins(ctx, limit)
}

// Profile returns the account for display, served from cache when fresh.
func (s *Service) Profile(ctx context.Context, userID int64) (*domain.PlayerAccount, error) {
	if acc, err := s.cache.Get(ctx, userID); err == nil && acc != nil {
		return acc, nil
	} else if err != nil {
		s.log.Warn("profile cache read failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	acc, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, acc, profileCacheTTL); err != nil {
		s.log.Warn("profile cache write failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	return acc, nil
}

// updateAccount is the single mutation funnel: it applies fn under the row
// lock and drops the stale cache entry afterwards. Lapsed boosts are cleared
// before fn runs, so persisted rows never carry a stale multiplier.
func (s *Service) updateAccount(ctx context.Context, userID int64, fn func(acc *domain.PlayerAccount) error) (*domain.PlayerAccount, error) {
	engine := s.Engine()
	acc, err := s.accounts.Update(ctx, userID, func(acc *domain.PlayerAccount) error {
		engine.ExpireBoost(acc)
		return fn(acc)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("profile cache invalidation failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	return acc, nil
}

func (s *Service) equippedItems(ctx context.Context, acc *domain.PlayerAccount) ([]*domain.ItemDefinition, error) {
	ids := acc.EquippedItemIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	return s.items.FindByIDs(ctx, ids)
}

// observe records the action metric, classifying engine rejections
// separately from real failures.
func (s *Service) observe(action string, started time.Time, err error) {
	switch {
	case err == nil:
		metrics.RecordAction(action, "success", time.Since(started))
	case economy.KindOf(err) != "":
		metrics.RecordAction(action, "rejected", time.Since(started))
		metrics.RecordEngineRejection(string(economy.KindOf(err)))
	default:
		metrics.RecordAction(action, "error", time.Since(started))
	}
}

// notifyQuests enqueues quest progress fire and forget. A dead queue must
// not fail the player's action, so failures are logged and dropped.
func (s *Service) notifyQuests(ctx context.Context, userID int64, kind domain.QuestKind, delta int64) {
	if s.queue == nil || delta <= 0 {
		return
	}

	task, err := jobs.NewQuestProgressTask(userID, kind, delta)
	if err != nil {
		s.log.Error("failed to build quest task", slog.Any("error", err))
		return
	}

	// Transient queue failures are retried with backoff; the breaker opens
	// only when retries keep failing.
	err = s.breaker.Call(func() error {
		return apperrors.WithRetry(ctx, func() error {
			if _, err := s.queue.Enqueue(ctx, task); err != nil {
				return apperrors.NewQueueError(err)
			}
			return nil
		})
	})
	if err != nil {
		s.log.Warn("quest progress enqueue failed",
			slog.Int64("user_id", userID), slog.String("kind", string(kind)), slog.Any("error", err))
	}
}

// resolveStack is a small helper shared by market operations.
func (s *Service) resolveStack(ctx context.Context, userID, itemID int64, quantity int) (*domain.OwnedStack, error) {
	stack, err := s.inventory.FindStack(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStackNotFound
		}
		return nil, err
	}
	if stack.Quantity < quantity {
		return nil, fmt.Errorf("%w: only %d owned", ErrStackNotFound, stack.Quantity)
	}
	return stack, nil
}
