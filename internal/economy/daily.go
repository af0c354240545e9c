package economy

import (
	"math"
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

const (
	streakContinueWindow = 48 * time.Hour
	claimCooldown        = 24 * time.Hour
)

// ClaimDaily advances the daily streak and grants the matching reward tier.
//
// Streak rules: a first-ever claim starts at 1; a claim within 24h of the
// previous one fails with KindAlreadyClaimed (carrying the hours remaining);
// between 24h and 48h the streak continues; at 48h or later it resets to 1.
// Rewards grow with the streak up to the last table tier and then plateau.
func (e *Engine) ClaimDaily(acc *domain.PlayerAccount) (*DailyReward, error) {
	now := e.clock.Now()

	switch {
	case acc.LastDailyClaim == nil:
		acc.DailyStreak = 1
	default:
		sinceLast := now.Sub(*acc.LastDailyClaim)
		if sinceLast < claimCooldown {
			hoursLeft := int(math.Ceil((claimCooldown - sinceLast).Hours()))
			return nil, errAlreadyClaimed(hoursLeft)
		}

		if sinceLast < streakContinueWindow {
			acc.DailyStreak++
		} else {
			acc.DailyStreak = 1
		}
	}

	tier := acc.DailyStreak - 1
	if last := len(e.cfg.DailyRewardCoins) - 1; tier > last {
		tier = last
	}

	reward := &DailyReward{
		Coins:    e.cfg.DailyRewardCoins[tier],
		Diamonds: e.cfg.DailyRewardDiamonds[tier],
		Streak:   acc.DailyStreak,
	}

	acc.Coins += reward.Coins
	acc.Diamonds += reward.Diamonds
	acc.LastDailyClaim = &now

	return reward, nil
}
