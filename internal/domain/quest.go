package domain

import "time"

// QuestKind identifies which game action advances a quest.
type QuestKind string

const (
	// QuestKindClick quests advance by one per successful click.
	QuestKindClick QuestKind = "CLICK"
	// QuestKindMine quests advance by the number of coins mined.
	QuestKindMine QuestKind = "MINE"
)

// Valid reports whether the kind is one of the known quest kinds.
func (k QuestKind) Valid() bool {
	return k == QuestKindClick || k == QuestKindMine
}

// QuestTemplate describes a quest every player receives on first contact.
type QuestTemplate struct {
	Code           string
	Title          string
	Kind           QuestKind
	Goal           int64
	RewardCoins    int64
	RewardDiamonds int64
	RewardXP       int64
	Daily          bool
}

// DefaultQuests returns the quest set seeded for every new player.
// Daily quests reopen at midnight, the rest are one-shot.
func DefaultQuests() []QuestTemplate {
	return []QuestTemplate{
		{Code: "daily_clicks", Title: "Daily Grind", Kind: QuestKindClick, Goal: 100, RewardCoins: 500, RewardXP: 50, Daily: true},
		{Code: "daily_mining", Title: "Keep the Rigs Warm", Kind: QuestKindMine, Goal: 1000, RewardCoins: 750, RewardXP: 75, Daily: true},
		{Code: "click_1k", Title: "Thousand Taps", Kind: QuestKindClick, Goal: 1000, RewardCoins: 5000, RewardDiamonds: 5, RewardXP: 200},
		{Code: "mine_10k", Title: "Industrialist", Kind: QuestKindMine, Goal: 10000, RewardCoins: 10000, RewardDiamonds: 10, RewardXP: 500},
	}
}

// Quest is a per-player goal with a progress counter and a one-time reward.
type Quest struct {
	ID             int64
	UserID         int64
	Code           string
	Title          string
	Kind           QuestKind
	Goal           int64
	Progress       int64
	RewardCoins    int64
	RewardDiamonds int64
	RewardXP       int64
	Completed      bool
	ResetAt        *time.Time
	CreatedAt      time.Time
}
