package economy

import (
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// ClickReward computes the coin value of one click at the given moment:
// a level-scaled base, multiplied by an active boost, plus the flat click
// bonus of every equipped item. The result is floored to an integer because
// the boost multiplier may be fractional.
func (e *Engine) ClickReward(acc *domain.PlayerAccount, equipped []*domain.ItemDefinition, now time.Time) int64 {
	reward := float64(e.cfg.BaseClickCoins + int64(acc.ClickLevel-1))

	if acc.BoostActive(now) {
		reward *= acc.BoostMultiplier
	}

	// Slot buffs are additive and stack independently of the boost.
	for _, item := range equipped {
		if item != nil {
			reward += float64(item.BuffClickCoins)
		}
	}

	return int64(reward)
}

// ProcessClick applies one click: spends 1 energy, credits coins and XP, and
// rolls for a diamond drop. Fails with KindInsufficientResource when the
// energy pool is empty, leaving the account unchanged.
func (e *Engine) ProcessClick(acc *domain.PlayerAccount, equipped []*domain.ItemDefinition) (*ClickOutcome, error) {
	if acc.Energy <= 0 {
		return nil, errInsufficientResource("energy")
	}

	now := e.clock.Now()
	reward := e.ClickReward(acc, equipped, now)

	acc.Coins += reward
	acc.Energy--

	leveledUp := e.AddClickXP(acc, e.cfg.XPPerClick)

	diamondFound := e.rng.Float64() < e.cfg.DiamondDropChance
	if diamondFound {
		acc.Diamonds++
	}

	return &ClickOutcome{
		CoinsEarned:  reward,
		LeveledUp:    leveledUp,
		DiamondFound: diamondFound,
		Energy:       acc.Energy,
		Coins:        acc.Coins,
		Diamonds:     acc.Diamonds,
		Level:        acc.ClickLevel,
	}, nil
}
