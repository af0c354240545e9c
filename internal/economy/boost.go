package economy

import "github.com/nanocoin-game/nanocoin-bot/internal/domain"

// ActivateBoost spends diamonds to start a temporary click multiplier.
// Reactivating while a boost is running simply resets the expiry window;
// multipliers never stack. Fails with KindInsufficientCurrency when the
// account cannot afford it.
func (e *Engine) ActivateBoost(acc *domain.PlayerAccount) error {
	if acc.Diamonds < e.cfg.BoostCostDiamonds {
		return errInsufficientCurrency("diamonds")
	}

	acc.Diamonds -= e.cfg.BoostCostDiamonds
	acc.BoostMultiplier = e.cfg.BoostMultiplier

	until := e.clock.Now().Add(e.cfg.BoostDuration)
	acc.BoostUntil = &until

	return nil
}

// ExpireBoost resets the multiplier to 1.0 once the boost window has passed.
// It keeps the account invariant that BoostMultiplier is 1.0 whenever no
// boost is active. Returns true when a change was made.
func (e *Engine) ExpireBoost(acc *domain.PlayerAccount) bool {
	if acc.BoostUntil == nil || acc.BoostUntil.After(e.clock.Now()) {
		return false
	}

	acc.BoostUntil = nil
	acc.BoostMultiplier = 1.0
	return true
}
