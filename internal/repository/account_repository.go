// Package repository implements PostgreSQL persistence for game entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// AccountRepository defines persistence operations for player accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, userID int64) (*domain.PlayerAccount, error)
	Create(ctx context.Context, acc *domain.PlayerAccount) error
	// Update applies fn to the account inside a transaction while holding a
	// row lock, so concurrent economy operations on the same account
	// serialize and never lose updates. fn returning an error rolls back.
	Update(ctx context.Context, userID int64, fn func(acc *domain.PlayerAccount) error) (*domain.PlayerAccount, error)
	TopByCoins(ctx context.Context, limit int) ([]*domain.PlayerAccount, error)
	// RegenerateEnergy bulk-credits energy to every account below its cap,
	// clamping at max_energy. Returns the number of accounts touched.
	RegenerateEnergy(ctx context.Context, amount int) (int64, error)
	// RegenerateElectricity does the same for the electricity pool.
	RegenerateElectricity(ctx context.Context, amount int) (int64, error)
}

type accountRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewAccountRepository creates a SQL-backed account repository.
func NewAccountRepository(db *sql.DB, log *slog.Logger) AccountRepository {
	return &accountRepository{
		db:  db,
		log: log,
	}
}

const accountColumns = `
	user_id, username, first_name, language, coins, diamonds,
	energy, max_energy, electricity, max_electricity,
	click_level, click_xp, boost_until, boost_multiplier,
	slot_1_item_id, slot_2_item_id, slot_3_item_id,
	last_mined_at, last_daily_claim, daily_streak, created_at, updated_at
`

// FindByID retrieves an account by its Telegram user identifier.
func (r *accountRepository) FindByID(ctx context.Context, userID int64) (*domain.PlayerAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_accounts WHERE user_id = $1`, accountColumns)

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch account", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select account: %w", err)
	}

	return acc, nil
}

// Create persists a new account record.
func (r *accountRepository) Create(ctx context.Context, acc *domain.PlayerAccount) error {
	const query = `
		INSERT INTO player_accounts (
			user_id, username, first_name, language, coins, diamonds,
			energy, max_energy, electricity, max_electricity,
			click_level, click_xp, boost_until, boost_multiplier,
			slot_1_item_id, slot_2_item_id, slot_3_item_id,
			last_mined_at, last_daily_claim, daily_streak, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	if _, err := r.db.ExecContext(ctx, query, accountArgs(acc)...); err != nil {
		if r.log != nil {
			r.log.Error("failed to create account", slog.Int64("user_id", acc.UserID), slog.Any("error", err))
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// Update runs fn against the locked account row and writes the result back.
func (r *accountRepository) Update(ctx context.Context, userID int64, fn func(acc *domain.PlayerAccount) error) (*domain.PlayerAccount, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin account update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := fmt.Sprintf(`SELECT %s FROM player_accounts WHERE user_id = $1 FOR UPDATE`, accountColumns)

	acc, err := scanAccount(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("select account for update: %w", err)
	}

	if err := fn(acc); err != nil {
		return nil, err
	}

	const update = `
		UPDATE player_accounts SET
			username = $2, first_name = $3, language = $4, coins = $5, diamonds = $6,
			energy = $7, max_energy = $8, electricity = $9, max_electricity = $10,
			click_level = $11, click_xp = $12, boost_until = $13, boost_multiplier = $14,
			slot_1_item_id = $15, slot_2_item_id = $16, slot_3_item_id = $17,
			last_mined_at = $18, last_daily_claim = $19, daily_streak = $20,
			updated_at = now()
		WHERE user_id = $1
	`

	args := []any{
		acc.UserID, acc.Username, acc.FirstName, acc.Language, acc.Coins, acc.Diamonds,
		acc.Energy, acc.MaxEnergy, acc.Electricity, acc.MaxElectricity,
		acc.ClickLevel, acc.ClickXP, acc.BoostUntil, acc.BoostMultiplier,
		slotValue(acc.Slots[0]), slotValue(acc.Slots[1]), slotValue(acc.Slots[2]),
		acc.LastMinedAt, acc.LastDailyClaim, acc.DailyStreak,
	}

	if _, err := tx.ExecContext(ctx, update, args...); err != nil {
		if r.log != nil {
			r.log.Error("failed to update account", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit account update: %w", err)
	}

	return acc, nil
}

// TopByCoins returns the richest accounts for the leaderboard.
func (r *accountRepository) TopByCoins(ctx context.Context, limit int) ([]*domain.PlayerAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_accounts ORDER BY coins DESC LIMIT $1`, accountColumns)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select top accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.PlayerAccount
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan top account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func (r *accountRepository) RegenerateEnergy(ctx context.Context, amount int) (int64, error) {
	const query = `
		UPDATE player_accounts
		SET energy = LEAST(energy + $1, max_energy), updated_at = now()
		WHERE energy < max_energy
	`

	res, err := r.db.ExecContext(ctx, query, amount)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to regenerate energy", slog.Any("error", err))
		}
		return 0, fmt.Errorf("regenerate energy: %w", err)
	}

	return res.RowsAffected()
}

func (r *accountRepository) RegenerateElectricity(ctx context.Context, amount int) (int64, error) {
	const query = `
		UPDATE player_accounts
		SET electricity = LEAST(electricity + $1, max_electricity), updated_at = now()
		WHERE electricity < max_electricity
	`

	res, err := r.db.ExecContext(ctx, query, amount)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to regenerate electricity", slog.Any("error", err))
		}
		return 0, fmt.Errorf("regenerate electricity: %w", err)
	}

	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.PlayerAccount, error) {
	var (
		acc   domain.PlayerAccount
		slots [domain.SlotCount]sql.NullInt64
	)

	if err := row.Scan(
		&acc.UserID, &acc.Username, &acc.FirstName, &acc.Language, &acc.Coins, &acc.Diamonds,
		&acc.Energy, &acc.MaxEnergy, &acc.Electricity, &acc.MaxElectricity,
		&acc.ClickLevel, &acc.ClickXP, &acc.BoostUntil, &acc.BoostMultiplier,
		&slots[0], &slots[1], &slots[2],
		&acc.LastMinedAt, &acc.LastDailyClaim, &acc.DailyStreak, &acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	for i, slot := range slots {
		if slot.Valid {
			id := slot.Int64
			acc.Slots[i] = &id
		}
	}

	return &acc, nil
}

func accountArgs(acc *domain.PlayerAccount) []any {
	return []any{
		acc.UserID, acc.Username, acc.FirstName, acc.Language, acc.Coins, acc.Diamonds,
		acc.Energy, acc.MaxEnergy, acc.Electricity, acc.MaxElectricity,
		acc.ClickLevel, acc.ClickXP, acc.BoostUntil, acc.BoostMultiplier,
		slotValue(acc.Slots[0]), slotValue(acc.Slots[1]), slotValue(acc.Slots[2]),
		acc.LastMinedAt, acc.LastDailyClaim, acc.DailyStreak, acc.CreatedAt, acc.UpdatedAt,
	}
}

func slotValue(slot *int64) any {
	if slot == nil {
		return nil
	}
	return *slot
}
