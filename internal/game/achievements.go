package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// Achievements evaluates the milestone catalog against the player's current
// totals, unlocks any newly met milestones with their rewards, and returns
// the full catalog with unlock state for display. Each unlock pays exactly
// once: the insert is conditional, so a re-check of a held milestone is a
// no-op.
func (s *Service) Achievements(ctx context.Context, userID int64) ([]domain.AchievementStatus, error) {
	acc, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	minersOwned, err := s.minersOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked := map[string]*domain.PlayerAchievement{}
	if s.achievements != nil {
		rows, err := s.achievements.ListUnlocked(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			unlocked[row.Code] = row
		}
	}

	statuses := make([]domain.AchievementStatus, 0, len(domain.DefaultAchievements()))
	for _, tmpl := range domain.DefaultAchievements() {
		status := domain.AchievementStatus{AchievementTemplate: tmpl}

		if row, ok := unlocked[tmpl.Code]; ok {
			status.Unlocked = true
			status.AchievedAt = &row.AchievedAt
		} else if s.achievements != nil && tmpl.Met(acc, minersOwned) {
			fresh, err := s.unlockAchievement(ctx, userID, tmpl)
			if err != nil {
				return nil, err
			}
			if fresh != nil {
				status.Unlocked = true
				status.AchievedAt = fresh
			}
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// unlockAchievement records the milestone and credits its reward. Returns
// nil when a concurrent check already claimed it.
func (s *Service) unlockAchievement(ctx context.Context, userID int64, tmpl domain.AchievementTemplate) (*time.Time, error) {
	inserted, err := s.achievements.Unlock(ctx, userID, tmpl.Code)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, nil
	}

	if tmpl.RewardCoins > 0 || tmpl.RewardDiamonds > 0 {
		if _, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
			acc.Coins += tmpl.RewardCoins
			acc.Diamonds += tmpl.RewardDiamonds
			return nil
		}); err != nil {
			return nil, err
		}
	}

	s.log.Info("achievement unlocked",
		slog.Int64("user_id", userID), slog.String("code", tmpl.Code))

	now := time.Now().UTC()
	return &now, nil
}

// minersOwned sums the quantity of every miner stack the player holds.
func (s *Service) minersOwned(ctx context.Context, userID int64) (int, error) {
	stacks, err := s.inventory.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, stack := range stacks {
		if stack != nil && stack.Item != nil && stack.Item.Type == domain.ItemTypeMiner {
			total += stack.Quantity
		}
	}

	return total, nil
}
