package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// AchievementRepository persists milestone unlocks. The catalog itself
// lives in code, only unlock rows are stored.
type AchievementRepository interface {
	ListUnlocked(ctx context.Context, userID int64) ([]*domain.PlayerAchievement, error)
	// Unlock records the milestone once. Returns false when the player
	// already holds it, so a repeated check never pays twice.
	Unlock(ctx context.Context, userID int64, code string) (bool, error)
}

type achievementRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewAchievementRepository creates a SQL-backed achievement repository.
func NewAchievementRepository(db *sql.DB, log *slog.Logger) AchievementRepository {
	return &achievementRepository{db: db, log: log}
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID int64) ([]*domain.PlayerAchievement, error) {
	query := `
		SELECT id, user_id, achievement_code, achieved_at
		FROM player_achievements
		WHERE user_id = $1
		ORDER BY achieved_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list achievements", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, err
	}
	defer rows.Close()

	var unlocked []*domain.PlayerAchievement
	for rows.Next() {
		var pa domain.PlayerAchievement
		if err := rows.Scan(&pa.ID, &pa.UserID, &pa.Code, &pa.AchievedAt); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, &pa)
	}

	return unlocked, rows.Err()
}

func (r *achievementRepository) Unlock(ctx context.Context, userID int64, code string) (bool, error) {
	query := `
		INSERT INTO player_achievements (user_id, achievement_code)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_code) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query, userID, code)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to unlock achievement",
				slog.Int64("user_id", userID), slog.String("code", code), slog.Any("error", err))
		}
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
