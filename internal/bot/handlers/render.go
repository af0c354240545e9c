package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
)

// translated resolves an i18n key with a hardcoded fallback so screens stay
// usable when a catalog is incomplete.
func translated(t i18n.Translator, key, fallback string) string {
	if t == nil {
		return fallback
	}

	text := strings.TrimSpace(t.T(key))
	if text == "" || text == key {
		return fallback
	}

	return text
}

func renderProfile(acc *domain.PlayerAccount, xpNeeded int64) string {
	var b strings.Builder

	name := strings.TrimSpace(acc.Username)
	if name == "" {
		name = strings.TrimSpace(acc.FirstName)
	}
	if name == "" {
		name = fmt.Sprintf("ID:%d", acc.UserID)
	}

	fmt.Fprintf(&b, "👤 %s\n\n", name)
	fmt.Fprintf(&b, "🪙 Coins: %d\n", acc.Coins)
	fmt.Fprintf(&b, "💎 Diamonds: %d\n", acc.Diamonds)
	fmt.Fprintf(&b, "⚡ Energy: %d/%d\n", acc.Energy, acc.MaxEnergy)
	fmt.Fprintf(&b, "🔌 Electricity: %d/%d\n", acc.Electricity, acc.MaxElectricity)
	fmt.Fprintf(&b, "📈 Level %d (%d/%d XP)\n", acc.ClickLevel, acc.ClickXP, xpNeeded)
	fmt.Fprintf(&b, "🔥 Daily streak: %d\n", acc.DailyStreak)

	if acc.BoostActive(time.Now().UTC()) {
		left := time.Until(*acc.BoostUntil).Round(time.Second)
		fmt.Fprintf(&b, "🚀 Boost ×%.1f active (%s left)\n", acc.BoostMultiplier, left)
	}

	return b.String()
}

func renderClick(out *economy.ClickOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⛏ +%d coins (⚡ %d left)", out.CoinsEarned, out.Energy)
	if out.DiamondFound {
		b.WriteString("\n💎 You found a diamond!")
	}
	if out.LeveledUp {
		fmt.Fprintf(&b, "\n🎉 Level up! You are now level %d.", out.Level)
	}

	return b.String()
}

func renderMining(out *economy.MiningOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⛏ Mined %d coins for %d electricity.", out.CoinsEarned, out.ElectricitySpent)
	if out.DiamondsEarned > 0 {
		fmt.Fprintf(&b, "\n💎 Your miners dug up %d diamond(s)!", out.DiamondsEarned)
	}
	fmt.Fprintf(&b, "\n🔌 Electricity left: %d", out.Electricity)

	return b.String()
}

func renderDaily(reward *economy.DailyReward) string {
	return fmt.Sprintf("🎁 Day %d reward: %d coins, %d diamonds. Come back tomorrow!",
		reward.Streak, reward.Coins, reward.Diamonds)
}

func renderInventory(stacks []*domain.OwnedStack) string {
	if len(stacks) == 0 {
		return "🎒 Your inventory is empty. Visit the /shop to get started."
	}

	var b strings.Builder
	b.WriteString("🎒 Inventory:\n\n")
	for _, stack := range stacks {
		if stack.Item == nil {
			continue
		}

		status := ""
		if stack.Item.Type == domain.ItemTypeMiner {
			if stack.Active {
				status = " (running)"
			} else {
				status = " (off)"
			}
		}
		fmt.Fprintf(&b, "%s %s ×%d%s\n", stack.Item.Emoji, stack.Item.Name, stack.Quantity, status)
	}

	return b.String()
}

func renderQuests(quests []*domain.Quest) string {
	if len(quests) == 0 {
		return "📜 No quests available right now."
	}

	var b strings.Builder
	b.WriteString("📜 Quests:\n\n")
	for _, q := range quests {
		mark := "▫️"
		if q.Completed {
			mark = "✅"
		}

		progress := q.Progress
		if progress > q.Goal {
			progress = q.Goal
		}
		fmt.Fprintf(&b, "%s %s — %d/%d (+%d🪙 +%d💎)\n",
			mark, q.Title, progress, q.Goal, q.RewardCoins, q.RewardDiamonds)
	}

	return b.String()
}

func renderAchievements(statuses []domain.AchievementStatus) string {
	var b strings.Builder
	b.WriteString("🏆 Achievements:\n\n")
	for _, status := range statuses {
		mark := "🔒"
		if status.Unlocked {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %s %s\n📝 %s\n\n", mark, status.Emoji, status.Title, status.Description)
	}

	return b.String()
}

func renderLeaderboard(accounts []*domain.PlayerAccount) string {
	if len(accounts) == 0 {
		return "🏆 The leaderboard is empty."
	}

	medals := []string{"🥇", "🥈", "🥉"}

	var b strings.Builder
	b.WriteString("🏆 Top miners:\n\n")
	for i, acc := range accounts {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}

		name := strings.TrimSpace(acc.Username)
		if name == "" {
			name = strings.TrimSpace(acc.FirstName)
		}
		if name == "" {
			name = fmt.Sprintf("ID:%d", acc.UserID)
		}

		fmt.Fprintf(&b, "%s %s — %d🪙\n", rank, name, acc.Coins)
	}

	return b.String()
}
