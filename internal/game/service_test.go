package game

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
	"github.com/nanocoin-game/nanocoin-bot/internal/jobs"
)

type fixture struct {
	svc          *Service
	accounts     *fakeAccounts
	items        *fakeItems
	inventory    *fakeInventory
	market       *fakeMarket
	quests       *fakeQuests
	achievements *fakeAchievements
	queue        *fakeQueue
}

func newFixture(t *testing.T, accs ...*domain.PlayerAccount) *fixture {
	t.Helper()

	items := newFakeItems()
	f := &fixture{
		accounts:     newFakeAccounts(accs...),
		items:        items,
		inventory:    newFakeInventory(items),
		market:       newFakeMarket(),
		quests:       &fakeQuests{},
		achievements: newFakeAchievements(),
		queue:        &fakeQueue{},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := economy.New(economy.DefaultConfig(), nil, nil)
	f.svc = NewService(f.accounts, f.items, f.inventory, f.market, f.quests, f.achievements, nil, f.queue, engine, log)
	return f
}

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func testAccount(userID int64) *domain.PlayerAccount {
	cfg := economy.DefaultConfig()
	return domain.NewPlayerAccount(userID, "tester", "Tester", cfg.MaxEnergy, cfg.MaxElectricity, time.Now().UTC().Add(-time.Hour))
}

func (f *fixture) addItem(item *domain.ItemDefinition) *domain.ItemDefinition {
	f.items.items[item.ID] = item
	return item
}

func (f *fixture) giveStack(t *testing.T, userID, itemID int64, quantity int) {
	t.Helper()
	require.NoError(t, f.inventory.AddQuantity(context.Background(), userID, itemID, quantity))
}

func TestGetOrCreateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	acc, err := f.svc.GetOrCreateAccount(ctx, 42, "alice", "Alice")
	require.NoError(t, err)

	cfg := f.svc.Engine().Config()
	assert.Equal(t, cfg.MaxEnergy, acc.Energy)
	assert.Equal(t, cfg.MaxElectricity, acc.Electricity)
	assert.Equal(t, "en", acc.Language)
	assert.Equal(t, []int64{42}, f.quests.seeded)

	again, err := f.svc.GetOrCreateAccount(ctx, 42, "alice", "Alice")
	require.NoError(t, err)
	assert.Same(t, acc, again)
	assert.Len(t, f.quests.seeded, 1, "existing accounts must not be reseeded")
}

func TestClick(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	f := newFixture(t, acc)

	outcome, err := f.svc.Click(ctx, 1)
	require.NoError(t, err)

	cfg := f.svc.Engine().Config()
	assert.Equal(t, cfg.MaxEnergy-1, acc.Energy)
	assert.Equal(t, outcome.CoinsEarned, acc.Coins)
	assert.Positive(t, outcome.CoinsEarned)

	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, jobs.TaskTypeQuestProgress, f.queue.tasks[0].taskType)

	var payload jobs.QuestProgressPayload
	require.NoError(t, json.Unmarshal(f.queue.tasks[0].payload, &payload))
	assert.Equal(t, int64(1), payload.UserID)
	assert.Equal(t, domain.QuestKindClick, payload.Kind)
	assert.Equal(t, int64(1), payload.Delta)
}

func TestClickWithoutEnergy(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	acc.Energy = 0
	acc.Coins = 500
	f := newFixture(t, acc)

	_, err := f.svc.Click(ctx, 1)
	require.Error(t, err)
	assert.True(t, economy.IsKind(err, economy.KindInsufficientResource))

	assert.Equal(t, int64(500), acc.Coins, "a rejected click must not touch the balance")
	assert.Empty(t, f.queue.tasks)
}

func TestMine(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	f := newFixture(t, acc)

	miner := f.addItem(&domain.ItemDefinition{
		ID: 10, Code: "miner_gpu", Type: domain.ItemTypeMiner,
		MiningRate: 60, ElectricityConsumption: 6, Stock: domain.UnlimitedStock,
	})
	f.giveStack(t, 1, miner.ID, 2)
	require.NoError(t, f.inventory.SetActive(ctx, 1, true))

	outcome, err := f.svc.Mine(ctx, 1)
	require.NoError(t, err)

	assert.Positive(t, outcome.CoinsEarned)
	assert.Positive(t, outcome.ElectricitySpent)
	assert.Equal(t, outcome.Coins, acc.Coins)
	assert.Less(t, acc.Electricity, acc.MaxElectricity)

	require.Len(t, f.queue.tasks, 1)
	var payload jobs.QuestProgressPayload
	require.NoError(t, json.Unmarshal(f.queue.tasks[0].payload, &payload))
	assert.Equal(t, domain.QuestKindMine, payload.Kind)
	assert.Equal(t, outcome.CoinsEarned, payload.Delta)
}

func TestMineUsesEngineClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	acc := testAccount(1)
	acc.LastMinedAt = now.Add(-time.Hour)
	f := newFixture(t, acc)
	f.svc.SwapEngine(economy.New(economy.DefaultConfig(), stubClock{now: now}, nil))

	miner := f.addItem(&domain.ItemDefinition{
		ID: 10, Code: "miner_gpu", Type: domain.ItemTypeMiner,
		MiningRate: 60, ElectricityConsumption: 6, Stock: domain.UnlimitedStock,
	})
	f.giveStack(t, 1, miner.ID, 2)
	require.NoError(t, f.inventory.SetActive(ctx, 1, true))

	outcome, err := f.svc.Mine(ctx, 1)
	require.NoError(t, err)

	// Exactly one hour on the injected clock: 2 miners at rate 60 yield 120
	// coins and burn 12 electricity. A wall-clock leak would inflate both
	// and stamp LastMinedAt with a different moment.
	assert.Equal(t, int64(120), outcome.CoinsEarned)
	assert.Equal(t, 12, outcome.ElectricitySpent)
	assert.True(t, acc.LastMinedAt.Equal(now))
}

func TestMineWithoutActiveMiners(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	f := newFixture(t, acc)

	_, err := f.svc.Mine(ctx, 1)
	require.Error(t, err)
	assert.True(t, economy.IsKind(err, economy.KindNoActiveMiners))
}

func TestBuyItem(t *testing.T) {
	ctx := context.Background()

	t.Run("limited stock purchase", func(t *testing.T) {
		acc := testAccount(1)
		acc.Diamonds = 100
		f := newFixture(t, acc)
		item := f.addItem(&domain.ItemDefinition{
			ID: 5, Code: "miner_quantum", Type: domain.ItemTypeMiner, PriceDiamonds: 30, Stock: 3,
		})

		bought, err := f.svc.BuyItem(ctx, 1, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, item.Code, bought.Code)
		assert.Equal(t, int64(40), acc.Diamonds)
		assert.Equal(t, 1, item.Stock)

		stack, err := f.inventory.FindStack(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, 2, stack.Quantity)
	})

	t.Run("out of stock", func(t *testing.T) {
		acc := testAccount(1)
		acc.Diamonds = 100
		f := newFixture(t, acc)
		f.addItem(&domain.ItemDefinition{ID: 5, PriceDiamonds: 30, Stock: 1})

		_, err := f.svc.BuyItem(ctx, 1, 5, 2)
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Equal(t, int64(100), acc.Diamonds)
	})

	t.Run("cannot afford", func(t *testing.T) {
		acc := testAccount(1)
		acc.Diamonds = 10
		f := newFixture(t, acc)
		f.addItem(&domain.ItemDefinition{ID: 5, PriceDiamonds: 30, Stock: domain.UnlimitedStock})

		_, err := f.svc.BuyItem(ctx, 1, 5, 1)
		require.Error(t, err)
		assert.True(t, economy.IsKind(err, economy.KindInsufficientCurrency))
		assert.Equal(t, int64(10), acc.Diamonds)
	})

	t.Run("unknown item", func(t *testing.T) {
		f := newFixture(t, testAccount(1))
		_, err := f.svc.BuyItem(ctx, 1, 999, 1)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestToggleMiner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testAccount(1))
	f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
	f.giveStack(t, 1, 10, 1)

	active, err := f.svc.ToggleMiner(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = f.svc.ToggleMiner(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = f.svc.ToggleMiner(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrStackNotFound)
}

func TestEquipItem(t *testing.T) {
	ctx := context.Background()

	t.Run("equips an owned buff", func(t *testing.T) {
		acc := testAccount(1)
		f := newFixture(t, acc)
		f.addItem(&domain.ItemDefinition{ID: 20, Type: domain.ItemTypeBuff, BuffClickCoins: 2})
		f.giveStack(t, 1, 20, 1)

		require.NoError(t, f.svc.EquipItem(ctx, 1, 20))
		assert.True(t, acc.IsEquipped(20))

		// Equipping again is a no-op, not a second slot.
		require.NoError(t, f.svc.EquipItem(ctx, 1, 20))
		assert.Equal(t, []int64{20}, acc.EquippedItemIDs())
	})

	t.Run("rejects non-buff items", func(t *testing.T) {
		f := newFixture(t, testAccount(1))
		f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
		f.giveStack(t, 1, 10, 1)

		assert.ErrorIs(t, f.svc.EquipItem(ctx, 1, 10), ErrNotEquippable)
	})

	t.Run("rejects unowned items", func(t *testing.T) {
		f := newFixture(t, testAccount(1))
		f.addItem(&domain.ItemDefinition{ID: 20, Type: domain.ItemTypeBuff})

		assert.ErrorIs(t, f.svc.EquipItem(ctx, 1, 20), ErrStackNotFound)
	})

	t.Run("no free slots", func(t *testing.T) {
		acc := testAccount(1)
		f := newFixture(t, acc)
		for id := int64(20); id < 24; id++ {
			f.addItem(&domain.ItemDefinition{ID: id, Type: domain.ItemTypeBuff})
			f.giveStack(t, 1, id, 1)
		}

		require.NoError(t, f.svc.EquipItem(ctx, 1, 20))
		require.NoError(t, f.svc.EquipItem(ctx, 1, 21))
		require.NoError(t, f.svc.EquipItem(ctx, 1, 22))
		assert.ErrorIs(t, f.svc.EquipItem(ctx, 1, 23), domain.ErrSlotsFull)
	})
}

func TestUnequipItem(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	f := newFixture(t, acc)
	f.addItem(&domain.ItemDefinition{ID: 20, Type: domain.ItemTypeBuff})
	f.giveStack(t, 1, 20, 1)
	require.NoError(t, f.svc.EquipItem(ctx, 1, 20))

	require.NoError(t, f.svc.UnequipItem(ctx, 1, 20))
	assert.False(t, acc.IsEquipped(20))
	assert.Empty(t, acc.EquippedItemIDs())
}

func TestActivateBoost(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	acc.Diamonds = 10
	f := newFixture(t, acc)

	updated, err := f.svc.ActivateBoost(ctx, 1)
	require.NoError(t, err)

	cfg := f.svc.Engine().Config()
	assert.Equal(t, 10-cfg.BoostCostDiamonds, updated.Diamonds)
	assert.True(t, updated.BoostActive(time.Now().UTC()))
}

func TestClickClearsLapsedBoost(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	expired := time.Now().UTC().Add(-time.Minute)
	acc.BoostUntil = &expired
	acc.BoostMultiplier = 2.0
	f := newFixture(t, acc)

	outcome, err := f.svc.Click(ctx, 1)
	require.NoError(t, err)

	// The stored multiplier must drop back to 1.0 the moment any mutation
	// touches the account after the window lapsed.
	assert.Nil(t, acc.BoostUntil)
	assert.Equal(t, 1.0, acc.BoostMultiplier)
	assert.Equal(t, int64(1), outcome.CoinsEarned, "a lapsed boost must not multiply the reward")
}

func TestClickRetriesTransientEnqueueFailure(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	f := newFixture(t, acc)
	f.queue.failures = 1

	_, err := f.svc.Click(ctx, 1)
	require.NoError(t, err)

	require.Len(t, f.queue.tasks, 1, "the progress task must land after a transient failure")
	assert.Equal(t, 2, f.queue.attempts)
}

func TestRefillEnergy(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	acc.Energy = 0
	acc.Diamonds = 10
	f := newFixture(t, acc)

	cfg := f.svc.Engine().Config()
	updated, err := f.svc.RefillEnergy(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cfg.EnergyRefillAmount, updated.Energy)
	assert.Equal(t, 10-cfg.EnergyRefillCost, updated.Diamonds)
}

func TestClaimDaily(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	f := newFixture(t, acc)

	cfg := f.svc.Engine().Config()
	reward, err := f.svc.ClaimDaily(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cfg.DailyRewardCoins[0], reward.Coins)
	assert.Equal(t, 1, reward.Streak)

	_, err = f.svc.ClaimDaily(ctx, 1)
	require.Error(t, err)
	assert.True(t, economy.IsKind(err, economy.KindAlreadyClaimed))
}

func TestSetLanguage(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(1)
	f := newFixture(t, acc)

	require.NoError(t, f.svc.SetLanguage(ctx, 1, "ru"))
	assert.Equal(t, "ru", acc.Language)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	rich := testAccount(1)
	rich.Coins = 1000
	mid := testAccount(2)
	mid.Coins = 500
	poor := testAccount(3)

	f := newFixture(t, rich, mid, poor)

	top, err := f.svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[0].UserID)
	assert.Equal(t, int64(2), top[1].UserID)
}
