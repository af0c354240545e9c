package economy

import (
	"math"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// XPNeeded returns the XP threshold for leaving the given level:
// floor(base × level^exponent). The exponent is fractional, so the curve
// grows faster than linear but slower than quadratic.
func (e *Engine) XPNeeded(level int) int64 {
	return int64(math.Floor(e.cfg.XPLevelBase * math.Pow(float64(level), e.cfg.XPLevelExponent)))
}

// AddClickXP credits XP to the account and reports whether it leveled up.
// At most one level is granted per call: a grant large enough to cross
// several thresholds still yields a single level, with the XP counter reset
// to zero. The surplus is forfeited, which keeps big one-off quest rewards
// from skipping levels.
func (e *Engine) AddClickXP(acc *domain.PlayerAccount, amount int64) bool {
	acc.ClickXP += amount

	if acc.ClickXP < e.XPNeeded(acc.ClickLevel) {
		return false
	}

	acc.ClickLevel++
	acc.ClickXP = 0
	return true
}
