// Package economy implements the game's economic simulation engine: click
// rewards, passive mining, boosts, leveling, and daily streak rewards.
// Engine operations are pure functions of (account, equipment, time, RNG);
// persistence and transport are handled by callers.
package economy

import (
	"fmt"
	"time"
)

// Config carries every tunable economic constant. It is injected; the engine
// holds no package-level state so alternate economies can run side by side.
type Config struct {
	MaxEnergy      int `mapstructure:"max_energy" validate:"gt=0"`
	MaxElectricity int `mapstructure:"max_electricity" validate:"gt=0"`

	BaseClickCoins    int64   `mapstructure:"base_click_coins" validate:"gte=0"`
	XPPerClick        int64   `mapstructure:"xp_per_click" validate:"gt=0"`
	XPLevelBase       float64 `mapstructure:"xp_level_base" validate:"gt=0"`
	XPLevelExponent   float64 `mapstructure:"xp_level_exponent" validate:"gt=0"`
	DiamondDropChance float64 `mapstructure:"diamond_drop_chance" validate:"gte=0,lte=1"`

	MinMiningInterval time.Duration `mapstructure:"min_mining_interval" validate:"gt=0"`

	BoostCostDiamonds int64         `mapstructure:"boost_cost_diamonds" validate:"gte=0"`
	BoostDuration     time.Duration `mapstructure:"boost_duration" validate:"gt=0"`
	BoostMultiplier   float64       `mapstructure:"boost_multiplier" validate:"gte=1"`

	EnergyRefillCost   int64 `mapstructure:"energy_refill_cost" validate:"gte=0"`
	EnergyRefillAmount int   `mapstructure:"energy_refill_amount" validate:"gt=0"`

	// Regen amounts are credited by the background regen job every minute.
	EnergyRegenPerMinute      int `mapstructure:"energy_regen_per_minute" validate:"gte=0"`
	ElectricityRegenPerMinute int `mapstructure:"electricity_regen_per_minute" validate:"gte=0"`

	DailyRewardCoins    []int64 `mapstructure:"daily_reward_coins" validate:"min=1"`
	DailyRewardDiamonds []int64 `mapstructure:"daily_reward_diamonds" validate:"min=1"`

	MarketTaxPercent int64 `mapstructure:"market_tax_percent" validate:"gte=0,lte=100"`
}

// DefaultConfig returns the stock NanoCoin economy.
func DefaultConfig() Config {
	return Config{
		MaxEnergy:                 1000,
		MaxElectricity:            5000,
		BaseClickCoins:            1,
		XPPerClick:                1,
		XPLevelBase:               100,
		XPLevelExponent:           1.2,
		DiamondDropChance:         0.01,
		MinMiningInterval:         time.Minute,
		BoostCostDiamonds:         5,
		BoostDuration:             15 * time.Minute,
		BoostMultiplier:           2.0,
		EnergyRefillCost:          2,
		EnergyRefillAmount:        50,
		EnergyRegenPerMinute:      1,
		ElectricityRegenPerMinute: 5,
		DailyRewardCoins:          []int64{100, 200, 500, 1000, 2000, 5000, 10000},
		DailyRewardDiamonds:       []int64{1, 2, 3, 5, 7, 10, 20},
		MarketTaxPercent:          10,
	}
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	if len(c.DailyRewardCoins) != len(c.DailyRewardDiamonds) {
		return fmt.Errorf("daily reward tables must have equal length: coins=%d diamonds=%d",
			len(c.DailyRewardCoins), len(c.DailyRewardDiamonds))
	}
	return nil
}
