package domain

import "time"

// AchievementTemplate is a lifetime milestone checked against account
// totals. The catalog is fixed; only unlocks are persisted.
type AchievementTemplate struct {
	Code           string
	Title          string
	Description    string
	Emoji          string
	TargetCoins    int64
	TargetDiamonds int64
	TargetMiners   int
	RewardCoins    int64
	RewardDiamonds int64
}

// Met reports whether the account state satisfies every target of the
// template. Zero targets are ignored.
func (a AchievementTemplate) Met(acc *PlayerAccount, minersOwned int) bool {
	if a.TargetCoins > 0 && acc.Coins < a.TargetCoins {
		return false
	}
	if a.TargetDiamonds > 0 && acc.Diamonds < a.TargetDiamonds {
		return false
	}
	if a.TargetMiners > 0 && minersOwned < a.TargetMiners {
		return false
	}
	return true
}

// DefaultAchievements returns the milestone catalog in display order.
func DefaultAchievements() []AchievementTemplate {
	return []AchievementTemplate{
		{Code: "first_fortune", Title: "First Fortune", Description: "Hold 10,000 coins at once", Emoji: "💰", TargetCoins: 10_000, RewardDiamonds: 5},
		{Code: "coin_magnate", Title: "Coin Magnate", Description: "Hold 1,000,000 coins at once", Emoji: "🏦", TargetCoins: 1_000_000, RewardDiamonds: 50},
		{Code: "gem_collector", Title: "Gem Collector", Description: "Hold 100 diamonds at once", Emoji: "💎", TargetDiamonds: 100, RewardCoins: 25_000},
		{Code: "rig_builder", Title: "Rig Builder", Description: "Own 5 miners", Emoji: "⛏", TargetMiners: 5, RewardCoins: 5_000},
		{Code: "server_farm", Title: "Server Farm", Description: "Own 25 miners", Emoji: "🏭", TargetMiners: 25, RewardCoins: 50_000, RewardDiamonds: 10},
	}
}

// PlayerAchievement records one unlocked milestone.
type PlayerAchievement struct {
	ID         int64
	UserID     int64
	Code       string
	AchievedAt time.Time
}

// AchievementStatus pairs a catalog entry with its unlock state for display.
type AchievementStatus struct {
	AchievementTemplate
	Unlocked   bool
	AchievedAt *time.Time
}
