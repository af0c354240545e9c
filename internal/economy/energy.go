package economy

import "github.com/nanocoin-game/nanocoin-bot/internal/domain"

// RefillEnergy trades diamonds for a fixed energy top-up, clamped to the
// account's maximum. Fails with KindInsufficientCurrency when diamonds are
// short; the refill is never partial.
func (e *Engine) RefillEnergy(acc *domain.PlayerAccount) error {
	if acc.Diamonds < e.cfg.EnergyRefillCost {
		return errInsufficientCurrency("diamonds")
	}

	acc.Diamonds -= e.cfg.EnergyRefillCost

	acc.Energy += e.cfg.EnergyRefillAmount
	if acc.Energy > acc.MaxEnergy {
		acc.Energy = acc.MaxEnergy
	}

	return nil
}
