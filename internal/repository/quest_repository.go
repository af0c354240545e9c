package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// QuestRepository persists per-player quest progress.
type QuestRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*domain.Quest, error)
	ListActiveByKind(ctx context.Context, userID int64, kind domain.QuestKind) ([]*domain.Quest, error)
	// AddProgress advances all open quests of the given kind for one player
	// and returns the quests that crossed their goal with this increment.
	AddProgress(ctx context.Context, userID int64, kind domain.QuestKind, delta int64) ([]*domain.Quest, error)
	MarkCompleted(ctx context.Context, questID int64) error
	// SeedDefaults inserts the default quest set for a player. Existing
	// quest codes are left untouched, so the call is safe to repeat.
	SeedDefaults(ctx context.Context, userID int64) error
	// ResetDaily reopens every quest whose reset window passed. Returns the
	// number of quests reopened.
	ResetDaily(ctx context.Context) (int64, error)
}

type questRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewQuestRepository creates a SQL-backed quest repository.
func NewQuestRepository(db *sql.DB, log *slog.Logger) QuestRepository {
	return &questRepository{db: db, log: log}
}

const questColumns = `
	id, user_id, quest_code, title, quest_kind, goal, progress,
	reward_coins, reward_diamonds, reward_xp, is_completed, reset_at, created_at
`

func (r *questRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Quest, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_quests WHERE user_id = $1 ORDER BY created_at`, questColumns)
	return r.queryQuests(ctx, query, userID)
}

func (r *questRepository) ListActiveByKind(ctx context.Context, userID int64, kind domain.QuestKind) ([]*domain.Quest, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM player_quests WHERE user_id = $1 AND quest_kind = $2 AND NOT is_completed ORDER BY created_at`,
		questColumns)
	return r.queryQuests(ctx, query, userID, string(kind))
}

func (r *questRepository) AddProgress(ctx context.Context, userID int64, kind domain.QuestKind, delta int64) ([]*domain.Quest, error) {
	query := fmt.Sprintf(`
		UPDATE player_quests
		SET progress = progress + $3
		WHERE user_id = $1 AND quest_kind = $2 AND NOT is_completed
		RETURNING %s
	`, questColumns)

	quests, err := r.queryQuests(ctx, query, userID, string(kind), delta)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to advance quest progress",
				slog.Int64("user_id", userID), slog.String("kind", string(kind)), slog.Any("error", err))
		}
		return nil, err
	}

	var crossed []*domain.Quest
	for _, q := range quests {
		if q.Progress >= q.Goal && q.Progress-delta < q.Goal {
			crossed = append(crossed, q)
		}
	}

	return crossed, nil
}

func (r *questRepository) MarkCompleted(ctx context.Context, questID int64) error {
	const query = `UPDATE player_quests SET is_completed = true WHERE id = $1 AND NOT is_completed`

	res, err := r.db.ExecContext(ctx, query, questID)
	if err != nil {
		return fmt.Errorf("mark quest completed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark quest completed result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *questRepository) SeedDefaults(ctx context.Context, userID int64) error {
	const query = `
		INSERT INTO player_quests
			(user_id, quest_code, title, quest_kind, goal,
			 reward_coins, reward_diamonds, reward_xp, reset_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (user_id, quest_code) DO NOTHING
	`

	for _, tpl := range domain.DefaultQuests() {
		var resetAt any
		if tpl.Daily {
			resetAt = time.Now().UTC().Add(24 * time.Hour)
		}

		if _, err := r.db.ExecContext(ctx, query,
			userID, tpl.Code, tpl.Title, string(tpl.Kind), tpl.Goal,
			tpl.RewardCoins, tpl.RewardDiamonds, tpl.RewardXP, resetAt,
		); err != nil {
			return fmt.Errorf("seed quest %q: %w", tpl.Code, err)
		}
	}

	return nil
}

func (r *questRepository) ResetDaily(ctx context.Context) (int64, error) {
	const query = `
		UPDATE player_quests
		SET progress = 0, is_completed = false, reset_at = now() + interval '24 hours'
		WHERE reset_at IS NOT NULL AND reset_at <= now()
	`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to reset daily quests", slog.Any("error", err))
		}
		return 0, fmt.Errorf("reset daily quests: %w", err)
	}

	return res.RowsAffected()
}

func (r *questRepository) queryQuests(ctx context.Context, query string, args ...any) ([]*domain.Quest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select quests: %w", err)
	}
	defer rows.Close()

	var quests []*domain.Quest
	for rows.Next() {
		var q domain.Quest
		if err := rows.Scan(
			&q.ID, &q.UserID, &q.Code, &q.Title, &q.Kind, &q.Goal, &q.Progress,
			&q.RewardCoins, &q.RewardDiamonds, &q.RewardXP, &q.Completed, &q.ResetAt, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quest row: %w", err)
		}
		quests = append(quests, &q)
	}

	return quests, rows.Err()
}
