package economy

import (
	"math"
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// MiningRewards reconciles wall-clock time since the last claim against the
// account's electricity pool and computes the resulting yield. On success it
// applies the mutation: coins and diamonds are credited, electricity is
// debited, and LastMinedAt advances to now. Time beyond what electricity can
// fund is forfeited, not banked.
//
// Error kinds: KindTooSoon before the minimum claim interval,
// KindNoActiveMiners without yield-producing stacks, KindNoElectricity when
// the pool cannot fund any mining time. Failures never mutate the account.
func (e *Engine) MiningRewards(
	acc *domain.PlayerAccount,
	stacks []*domain.OwnedStack,
	equipped []*domain.ItemDefinition,
	now time.Time,
) (*MiningOutcome, error) {
	elapsed := now.Sub(acc.LastMinedAt)
	if elapsed < e.cfg.MinMiningInterval {
		return nil, errTooSoon()
	}

	hoursPassed := elapsed.Hours()

	var totalRate, totalConsumption, diamondChance float64
	for _, stack := range stacks {
		if stack == nil || stack.Item == nil || !stack.Active || stack.Item.Type != domain.ItemTypeMiner {
			continue
		}

		qty := float64(stack.Quantity)
		totalRate += stack.Item.MiningRate * qty
		totalConsumption += stack.Item.ElectricityConsumption * qty

		// The single best miner's luck applies; chances are not summed.
		if stack.Item.MinerDiamondChance > diamondChance {
			diamondChance = stack.Item.MinerDiamondChance
		}
	}

	if totalRate == 0 {
		return nil, errNoActiveMiners()
	}

	// Speed buffs compound multiplicatively in slot order, luck buffs stack additively.
	for _, item := range equipped {
		if item == nil {
			continue
		}
		if item.BuffMiningSpeed > 0 {
			totalRate *= 1 + item.BuffMiningSpeed
		}
		if item.BuffLuck > 0 {
			diamondChance += item.BuffLuck
		}
	}

	// Mining stops accruing once electricity would run out; the pool never
	// goes negative. Unconsumed time is uncapped when nothing draws power.
	maxHoursByElectricity := hoursPassed
	if totalConsumption > 0 {
		maxHoursByElectricity = float64(acc.Electricity) / totalConsumption
	}

	actualHours := math.Min(hoursPassed, maxHoursByElectricity)
	if actualHours <= 0 {
		return nil, errNoElectricity()
	}

	coinsEarned := int64(totalRate * actualHours)
	electricitySpent := int(totalConsumption * actualHours)

	var diamondsEarned int64
	if diamondChance > 0 {
		// One roll scaled by duration rather than per-hour trials. The scaled
		// probability can exceed 1 for long idle stretches, so clamp it.
		p := math.Min(diamondChance*actualHours, 1)
		if e.rng.Float64() < p {
			diamondsEarned = 1
		}
	}

	acc.Coins += coinsEarned
	acc.Electricity -= electricitySpent
	acc.Diamonds += diamondsEarned
	acc.LastMinedAt = now

	return &MiningOutcome{
		CoinsEarned:      coinsEarned,
		ElectricitySpent: electricitySpent,
		DiamondsEarned:   diamondsEarned,
		Electricity:      acc.Electricity,
		Coins:            acc.Coins,
		Diamonds:         acc.Diamonds,
	}, nil
}
