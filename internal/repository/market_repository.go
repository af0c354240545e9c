package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// MarketRepository persists player-to-player sale listings.
type MarketRepository interface {
	Create(ctx context.Context, listing *domain.MarketListing) error
	FindByID(ctx context.Context, listingID int64) (*domain.MarketListing, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*domain.MarketListing, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*domain.MarketListing, error)
	// Delete removes a listing. Returns sql.ErrNoRows when it is already gone,
	// which makes concurrent buy attempts lose cleanly.
	Delete(ctx context.Context, listingID int64) error
}

type marketRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewMarketRepository creates a SQL-backed market repository.
func NewMarketRepository(db *sql.DB, log *slog.Logger) MarketRepository {
	return &marketRepository{db: db, log: log}
}

const listingSelect = `
	SELECT
		ml.id, ml.seller_id, ml.item_id, ml.quantity, ml.price_diamonds, ml.created_at,
		it.id, it.item_code, it.name, it.emoji, it.item_type, it.price_diamonds, it.sell_price, it.stock,
		it.mining_rate, it.electricity_consumption, it.miner_diamond_chance,
		it.buff_click_coins, it.buff_mining_speed, it.buff_luck
	FROM market_listings ml
	JOIN game_items it ON it.id = ml.item_id
`

func (r *marketRepository) Create(ctx context.Context, listing *domain.MarketListing) error {
	const query = `
		INSERT INTO market_listings (seller_id, item_id, quantity, price_diamonds, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, created_at
	`

	if err := r.db.QueryRowContext(ctx, query,
		listing.SellerID, listing.ItemID, listing.Quantity, listing.PriceDiamonds,
	).Scan(&listing.ID, &listing.CreatedAt); err != nil {
		if r.log != nil {
			r.log.Error("failed to create listing",
				slog.Int64("seller_id", listing.SellerID), slog.Int64("item_id", listing.ItemID), slog.Any("error", err))
		}
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

func (r *marketRepository) FindByID(ctx context.Context, listingID int64) (*domain.MarketListing, error) {
	query := listingSelect + ` WHERE ml.id = $1`

	listing, err := scanListing(r.db.QueryRowContext(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("select listing: %w", err)
	}

	return listing, nil
}

func (r *marketRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.MarketListing, error) {
	query := listingSelect + ` ORDER BY ml.created_at DESC LIMIT $1 OFFSET $2`
	return r.queryListings(ctx, query, limit, offset)
}

func (r *marketRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.MarketListing, error) {
	query := listingSelect + ` WHERE ml.seller_id = $1 ORDER BY ml.created_at DESC`
	return r.queryListings(ctx, query, sellerID)
}

func (r *marketRepository) Delete(ctx context.Context, listingID int64) error {
	const query = `DELETE FROM market_listings WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, listingID)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *marketRepository) queryListings(ctx context.Context, query string, args ...any) ([]*domain.MarketListing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list market listings", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select listings: %w", err)
	}
	defer rows.Close()

	var listings []*domain.MarketListing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

func scanListing(row rowScanner) (*domain.MarketListing, error) {
	var (
		listing domain.MarketListing
		item    domain.ItemDefinition
	)

	if err := row.Scan(
		&listing.ID, &listing.SellerID, &listing.ItemID, &listing.Quantity, &listing.PriceDiamonds, &listing.CreatedAt,
		&item.ID, &item.Code, &item.Name, &item.Emoji, &item.Type, &item.PriceDiamonds, &item.SellPrice, &item.Stock,
		&item.MiningRate, &item.ElectricityConsumption, &item.MinerDiamondChance,
		&item.BuffClickCoins, &item.BuffMiningSpeed, &item.BuffLuck,
	); err != nil {
		return nil, err
	}

	listing.Item = &item
	return &listing, nil
}
