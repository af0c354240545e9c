package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateBoost(t *testing.T) {
	engine, clock := newTestEngine()
	acc := newTestAccount(clock)
	acc.Diamonds = 5

	err := engine.ActivateBoost(acc)

	require.NoError(t, err)
	assert.Equal(t, int64(0), acc.Diamonds)
	assert.Equal(t, 2.0, acc.BoostMultiplier)
	require.NotNil(t, acc.BoostUntil)
	assert.Equal(t, clock.Now().Add(15*time.Minute), *acc.BoostUntil)

	// Out of diamonds now, so the second activation must fail.
	err = engine.ActivateBoost(acc)
	assert.Equal(t, KindInsufficientCurrency, KindOf(err))
}

func TestActivateBoost_ReactivationResetsWindow(t *testing.T) {
	engine, clock := newTestEngine()
	acc := newTestAccount(clock)
	acc.Diamonds = 10

	require.NoError(t, engine.ActivateBoost(acc))
	clock.Advance(10 * time.Minute)
	require.NoError(t, engine.ActivateBoost(acc))

	require.NotNil(t, acc.BoostUntil)
	assert.Equal(t, clock.Now().Add(15*time.Minute), *acc.BoostUntil)
	assert.Equal(t, 2.0, acc.BoostMultiplier)
}

func TestExpireBoost(t *testing.T) {
	engine, clock := newTestEngine()
	acc := newTestAccount(clock)
	acc.Diamonds = 5
	require.NoError(t, engine.ActivateBoost(acc))

	assert.False(t, engine.ExpireBoost(acc), "active boost must not expire")

	clock.Advance(16 * time.Minute)

	assert.True(t, engine.ExpireBoost(acc))
	assert.Nil(t, acc.BoostUntil)
	assert.Equal(t, 1.0, acc.BoostMultiplier)
}

func TestRefillEnergy(t *testing.T) {
	testCases := []struct {
		name           string
		diamonds       int64
		energy         int
		expectedKind   Kind
		expectedEnergy int
	}{
		{name: "refill adds fixed amount", diamonds: 2, energy: 100, expectedEnergy: 150},
		{name: "refill clamps at max", diamonds: 2, energy: 980, expectedEnergy: 1000},
		{name: "not enough diamonds", diamonds: 1, energy: 100, expectedKind: KindInsufficientCurrency, expectedEnergy: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, clock := newTestEngine()
			acc := newTestAccount(clock)
			acc.Diamonds = tc.diamonds
			acc.Energy = tc.energy

			err := engine.RefillEnergy(acc)

			if tc.expectedKind != "" {
				assert.Equal(t, tc.expectedKind, KindOf(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedEnergy, acc.Energy)
		})
	}
}
