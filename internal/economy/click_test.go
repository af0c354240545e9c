package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

func buffItem(clickCoins int64) *domain.ItemDefinition {
	return &domain.ItemDefinition{Type: domain.ItemTypeBuff, BuffClickCoins: clickCoins}
}

func TestProcessClick_NoEnergyFailsWithoutMutation(t *testing.T) {
	engine, clock := newTestEngine()
	acc := newTestAccount(clock)
	acc.Energy = 0

	before := *acc

	outcome, err := engine.ProcessClick(acc, nil)

	require.Nil(t, outcome)
	require.Error(t, err)
	assert.Equal(t, KindInsufficientResource, KindOf(err))
	assert.Equal(t, before, *acc)
}

func TestProcessClick_BasicReward(t *testing.T) {
	engine, clock := newTestEngine(0.99)
	acc := newTestAccount(clock)

	outcome, err := engine.ProcessClick(acc, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), outcome.CoinsEarned)
	assert.Equal(t, int64(1), acc.Coins)
	assert.Equal(t, acc.MaxEnergy-1, acc.Energy)
	assert.Equal(t, int64(1), acc.ClickXP)
	assert.False(t, outcome.LeveledUp)
	assert.False(t, outcome.DiamondFound)
}

func TestProcessClick_RewardComposition(t *testing.T) {
	boostUntil := testEpoch.Add(time.Hour)

	testCases := []struct {
		name     string
		level    int
		boosted  bool
		equipped []*domain.ItemDefinition
		expected int64
	}{
		{name: "level scaling", level: 5, expected: 5},
		{name: "boost multiplies", level: 3, boosted: true, expected: 6},
		{name: "buffs stack additively", level: 1, equipped: []*domain.ItemDefinition{buffItem(2), buffItem(3)}, expected: 6},
		{
			// Buffs are added after the boost multiplication, not inside it.
			name:     "boost then buffs",
			level:    3,
			boosted:  true,
			equipped: []*domain.ItemDefinition{buffItem(2), nil, buffItem(3)},
			expected: 11,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, clock := newTestEngine(0.99)
			acc := newTestAccount(clock)
			acc.ClickLevel = tc.level
			if tc.boosted {
				acc.BoostUntil = &boostUntil
				acc.BoostMultiplier = 2.0
			}

			outcome, err := engine.ProcessClick(acc, tc.equipped)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, outcome.CoinsEarned)
		})
	}
}

func TestProcessClick_ExpiredBoostIgnored(t *testing.T) {
	engine, clock := newTestEngine(0.99)
	acc := newTestAccount(clock)
	expired := testEpoch.Add(-time.Minute)
	acc.BoostUntil = &expired
	acc.BoostMultiplier = 2.0

	outcome, err := engine.ProcessClick(acc, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), outcome.CoinsEarned)
}

func TestProcessClick_DiamondDrop(t *testing.T) {
	engine, clock := newTestEngine(0.005)
	acc := newTestAccount(clock)

	outcome, err := engine.ProcessClick(acc, nil)

	require.NoError(t, err)
	assert.True(t, outcome.DiamondFound)
	assert.Equal(t, int64(1), acc.Diamonds)
}

func TestProcessClick_HundredClicksReachLevelTwo(t *testing.T) {
	engine, clock := newTestEngine(0.99)
	acc := newTestAccount(clock)

	var lastOutcome *ClickOutcome
	for i := 0; i < 100; i++ {
		outcome, err := engine.ProcessClick(acc, nil)
		require.NoError(t, err)
		lastOutcome = outcome
	}

	assert.True(t, lastOutcome.LeveledUp)
	assert.Equal(t, 2, acc.ClickLevel)
	assert.Equal(t, int64(0), acc.ClickXP)
	assert.Equal(t, int64(100), acc.Coins)
	assert.Equal(t, acc.MaxEnergy-100, acc.Energy)
}
