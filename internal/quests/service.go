package quests

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
	"github.com/nanocoin-game/nanocoin-bot/internal/repository"
)

// Service advances quest counters and pays out rewards when a quest
// crosses its goal. It runs from the background worker, never from the
// player's request path.
type Service struct {
	quests   repository.QuestRepository
	accounts repository.AccountRepository
	engine   func() *economy.Engine
	log      *slog.Logger
}

// NewService wires the quest repositories to the live economy engine.
// The engine is taken through a getter so a config reload swap reaches
// quest payouts too.
func NewService(quests repository.QuestRepository, accounts repository.AccountRepository, engine func() *economy.Engine, log *slog.Logger) *Service {
	return &Service{
		quests:   quests,
		accounts: accounts,
		engine:   engine,
		log:      log,
	}
}

// Advance applies one progress delta and settles any quests it completed.
// Each completion pays its reward exactly once: MarkCompleted flips the
// flag under a conditional update, so a retried task skips settled quests.
func (s *Service) Advance(ctx context.Context, userID int64, kind domain.QuestKind, delta int64) error {
	if !kind.Valid() || delta <= 0 {
		return nil
	}

	crossed, err := s.quests.AddProgress(ctx, userID, kind, delta)
	if err != nil {
		return err
	}

	for _, quest := range crossed {
		if err := s.settle(ctx, quest); err != nil {
			s.log.Error("failed to settle completed quest",
				slog.Int64("quest_id", quest.ID), slog.Int64("user_id", userID), slog.Any("error", err))
			return err
		}
	}

	return nil
}

// List returns the player's quests for display.
func (s *Service) List(ctx context.Context, userID int64) ([]*domain.Quest, error) {
	return s.quests.ListByUser(ctx, userID)
}

// ResetDaily reopens quests whose reset window elapsed.
func (s *Service) ResetDaily(ctx context.Context) (int64, error) {
	return s.quests.ResetDaily(ctx)
}

func (s *Service) settle(ctx context.Context, quest *domain.Quest) error {
	if err := s.quests.MarkCompleted(ctx, quest.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already settled by a concurrent worker.
			return nil
		}
		return err
	}

	engine := s.engine()
	var leveledUp bool
	_, err := s.accounts.Update(ctx, quest.UserID, func(acc *domain.PlayerAccount) error {
		acc.Coins += quest.RewardCoins
		acc.Diamonds += quest.RewardDiamonds
		if quest.RewardXP > 0 {
			// XP goes through the engine so quest rewards obey the same
			// level thresholds as clicks.
			leveledUp = engine.AddClickXP(acc, quest.RewardXP)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("quest completed",
		slog.Int64("user_id", quest.UserID), slog.String("quest", quest.Code),
		slog.Int64("reward_coins", quest.RewardCoins), slog.Int64("reward_diamonds", quest.RewardDiamonds),
		slog.Bool("leveled_up", leveledUp))
	return nil
}
