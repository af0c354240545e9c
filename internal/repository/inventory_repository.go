package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// InventoryRepository persists per-player owned item stacks.
// A stack never survives with zero quantity: Remove deletes the row.
type InventoryRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*domain.OwnedStack, error)
	FindStack(ctx context.Context, userID, itemID int64) (*domain.OwnedStack, error)
	// AddQuantity upserts a stack, incrementing quantity when it already exists.
	AddQuantity(ctx context.Context, userID, itemID int64, quantity int) error
	// RemoveQuantity decrements a stack and deletes it when it reaches zero.
	// Returns sql.ErrNoRows when the stack is missing or too small.
	RemoveQuantity(ctx context.Context, userID, itemID int64, quantity int) error
	SetActive(ctx context.Context, stackID int64, active bool) error
}

type inventoryRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewInventoryRepository creates a SQL-backed inventory repository.
func NewInventoryRepository(db *sql.DB, log *slog.Logger) InventoryRepository {
	return &inventoryRepository{db: db, log: log}
}

// ListByUser returns all stacks with their catalog definitions joined in.
func (r *inventoryRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.OwnedStack, error) {
	const query = `
		SELECT
			inv.id, inv.user_id, inv.item_id, inv.quantity, inv.is_active, inv.created_at,
			it.id, it.item_code, it.name, it.emoji, it.item_type, it.price_diamonds, it.sell_price, it.stock,
			it.mining_rate, it.electricity_consumption, it.miner_diamond_chance,
			it.buff_click_coins, it.buff_mining_speed, it.buff_luck
		FROM inventory inv
		JOIN game_items it ON it.id = inv.item_id
		WHERE inv.user_id = $1
		ORDER BY inv.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list inventory", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	defer rows.Close()

	var stacks []*domain.OwnedStack
	for rows.Next() {
		var (
			stack domain.OwnedStack
			item  domain.ItemDefinition
		)

		if err := rows.Scan(
			&stack.ID, &stack.UserID, &stack.ItemID, &stack.Quantity, &stack.Active, &stack.CreatedAt,
			&item.ID, &item.Code, &item.Name, &item.Emoji, &item.Type, &item.PriceDiamonds, &item.SellPrice, &item.Stock,
			&item.MiningRate, &item.ElectricityConsumption, &item.MinerDiamondChance,
			&item.BuffClickCoins, &item.BuffMiningSpeed, &item.BuffLuck,
		); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}

		stack.Item = &item
		stacks = append(stacks, &stack)
	}

	return stacks, rows.Err()
}

func (r *inventoryRepository) FindStack(ctx context.Context, userID, itemID int64) (*domain.OwnedStack, error) {
	const query = `
		SELECT id, user_id, item_id, quantity, is_active, created_at
		FROM inventory
		WHERE user_id = $1 AND item_id = $2
	`

	var stack domain.OwnedStack
	if err := r.db.QueryRowContext(ctx, query, userID, itemID).Scan(
		&stack.ID, &stack.UserID, &stack.ItemID, &stack.Quantity, &stack.Active, &stack.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("select stack: %w", err)
	}

	return &stack, nil
}

func (r *inventoryRepository) AddQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	const query = `
		INSERT INTO inventory (user_id, item_id, quantity, is_active, created_at)
		VALUES ($1, $2, $3, false, now())
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity
	`

	if _, err := r.db.ExecContext(ctx, query, userID, itemID, quantity); err != nil {
		if r.log != nil {
			r.log.Error("failed to add to inventory",
				slog.Int64("user_id", userID), slog.Int64("item_id", itemID), slog.Any("error", err))
		}
		return fmt.Errorf("upsert stack: %w", err)
	}

	return nil
}

func (r *inventoryRepository) RemoveQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	const decrement = `
		UPDATE inventory SET quantity = quantity - $3
		WHERE user_id = $1 AND item_id = $2 AND quantity >= $3
	`

	res, err := r.db.ExecContext(ctx, decrement, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stack: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stack result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	// Zero-quantity stacks must not linger.
	const cleanup = `DELETE FROM inventory WHERE user_id = $1 AND item_id = $2 AND quantity <= 0`
	if _, err := r.db.ExecContext(ctx, cleanup, userID, itemID); err != nil {
		return fmt.Errorf("cleanup empty stack: %w", err)
	}

	return nil
}

func (r *inventoryRepository) SetActive(ctx context.Context, stackID int64, active bool) error {
	const query = `UPDATE inventory SET is_active = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, stackID, active)
	if err != nil {
		return fmt.Errorf("set stack active: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set stack active result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
