package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// ItemRepository provides read access to the shared item catalog.
type ItemRepository interface {
	FindByID(ctx context.Context, itemID int64) (*domain.ItemDefinition, error)
	FindByIDs(ctx context.Context, itemIDs []int64) ([]*domain.ItemDefinition, error)
	ListAll(ctx context.Context) ([]*domain.ItemDefinition, error)
	ListByType(ctx context.Context, itemType domain.ItemType) ([]*domain.ItemDefinition, error)
	// DecrementStock reduces a limited-stock item's counter, failing with
	// sql.ErrNoRows when the remaining stock cannot cover the quantity.
	DecrementStock(ctx context.Context, itemID int64, quantity int) error
}

type itemRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewItemRepository creates a SQL-backed item catalog repository.
func NewItemRepository(db *sql.DB, log *slog.Logger) ItemRepository {
	return &itemRepository{db: db, log: log}
}

const itemColumns = `
	id, item_code, name, emoji, item_type, price_diamonds, sell_price, stock,
	mining_rate, electricity_consumption, miner_diamond_chance,
	buff_click_coins, buff_mining_speed, buff_luck
`

func (r *itemRepository) FindByID(ctx context.Context, itemID int64) (*domain.ItemDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM game_items WHERE id = $1`, itemColumns)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}

		if r.log != nil {
			r.log.Error("failed to fetch item", slog.Int64("item_id", itemID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select item: %w", err)
	}

	return item, nil
}

// FindByIDs resolves catalog entries preserving the order of itemIDs, which
// keeps equipped-slot buffs applied in slot order.
func (r *itemRepository) FindByIDs(ctx context.Context, itemIDs []int64) ([]*domain.ItemDefinition, error) {
	items := make([]*domain.ItemDefinition, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := r.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *itemRepository) ListAll(ctx context.Context) ([]*domain.ItemDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM game_items ORDER BY price_diamonds`, itemColumns)
	return r.queryItems(ctx, query)
}

func (r *itemRepository) ListByType(ctx context.Context, itemType domain.ItemType) ([]*domain.ItemDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM game_items WHERE item_type = $1 ORDER BY price_diamonds`, itemColumns)
	return r.queryItems(ctx, query, string(itemType))
}

func (r *itemRepository) DecrementStock(ctx context.Context, itemID int64, quantity int) error {
	const query = `
		UPDATE game_items SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	res, err := r.db.ExecContext(ctx, query, itemID, quantity)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to decrement stock", slog.Int64("item_id", itemID), slog.Any("error", err))
		}
		return fmt.Errorf("decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *itemRepository) queryItems(ctx context.Context, query string, args ...any) ([]*domain.ItemDefinition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []*domain.ItemDefinition
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanItem(row rowScanner) (*domain.ItemDefinition, error) {
	var item domain.ItemDefinition

	if err := row.Scan(
		&item.ID, &item.Code, &item.Name, &item.Emoji, &item.Type,
		&item.PriceDiamonds, &item.SellPrice, &item.Stock,
		&item.MiningRate, &item.ElectricityConsumption, &item.MinerDiamondChance,
		&item.BuffClickCoins, &item.BuffMiningSpeed, &item.BuffLuck,
	); err != nil {
		return nil, err
	}

	return &item, nil
}
