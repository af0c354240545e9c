package game

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
)

// ListItem puts part of a player's stack on the market. The quantity leaves
// the inventory immediately so it cannot be double-listed or equipped away.
func (s *Service) ListItem(ctx context.Context, userID, itemID int64, quantity int, priceDiamonds int64) (*domain.MarketListing, error) {
	if quantity <= 0 || priceDiamonds <= 0 {
		return nil, ErrStackNotFound
	}

	if _, err := s.resolveStack(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}

	if err := s.inventory.RemoveQuantity(ctx, userID, itemID, quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStackNotFound
		}
		return nil, err
	}

	listing := &domain.MarketListing{
		SellerID:      userID,
		ItemID:        itemID,
		Quantity:      quantity,
		PriceDiamonds: priceDiamonds,
	}
	if err := s.market.Create(ctx, listing); err != nil {
		// Put the goods back so a storage failure does not eat them.
		if restoreErr := s.inventory.AddQuantity(ctx, userID, itemID, quantity); restoreErr != nil {
			s.log.Error("failed to restore stack after listing failure",
				slog.Int64("user_id", userID), slog.Int64("item_id", itemID), slog.Any("error", restoreErr))
		}
		return nil, err
	}

	s.log.Info("market listing created",
		slog.Int64("listing_id", listing.ID), slog.Int64("seller_id", userID),
		slog.Int64("item_id", itemID), slog.Int64("price", priceDiamonds))
	return listing, nil
}

// BuyListing settles a market purchase: the buyer pays the full price, the
// seller receives the price minus the market tax, and the goods move to the
// buyer's inventory. Deleting the listing first makes concurrent buyers
// lose with ErrListingNotFound instead of double-settling.
func (s *Service) BuyListing(ctx context.Context, buyerID, listingID int64) (*domain.MarketListing, error) {
	listing, err := s.market.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.SellerID == buyerID {
		return nil, ErrOwnListing
	}

	_, err = s.updateAccount(ctx, buyerID, func(acc *domain.PlayerAccount) error {
		if acc.Diamonds < listing.PriceDiamonds {
			return economy.ErrCannotAfford("diamonds")
		}
		acc.Diamonds -= listing.PriceDiamonds
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.market.Delete(ctx, listingID); err != nil {
		// Someone else bought it between FindByID and here. Refund.
		if refundErr := s.creditDiamonds(ctx, buyerID, listing.PriceDiamonds); refundErr != nil {
			s.log.Error("failed to refund buyer after lost race",
				slog.Int64("buyer_id", buyerID), slog.Int64("listing_id", listingID), slog.Any("error", refundErr))
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if err := s.inventory.AddQuantity(ctx, buyerID, listing.ItemID, listing.Quantity); err != nil {
		s.log.Error("failed to deliver purchased goods",
			slog.Int64("buyer_id", buyerID), slog.Int64("listing_id", listingID), slog.Any("error", err))
		return nil, err
	}

	tax := listing.PriceDiamonds * s.Engine().Config().MarketTaxPercent / 100
	payout := listing.PriceDiamonds - tax
	if err := s.creditDiamonds(ctx, listing.SellerID, payout); err != nil {
		s.log.Error("failed to pay out seller",
			slog.Int64("seller_id", listing.SellerID), slog.Int64("listing_id", listingID), slog.Any("error", err))
	}

	s.log.Info("market listing sold",
		slog.Int64("listing_id", listingID), slog.Int64("buyer_id", buyerID),
		slog.Int64("seller_id", listing.SellerID), slog.Int64("payout", payout), slog.Int64("tax", tax))
	return listing, nil
}

// CancelListing returns an unsold listing's goods to the seller.
func (s *Service) CancelListing(ctx context.Context, sellerID, listingID int64) error {
	listing, err := s.market.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}
	if listing.SellerID != sellerID {
		return ErrListingNotFound
	}

	if err := s.market.Delete(ctx, listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}

	return s.inventory.AddQuantity(ctx, sellerID, listing.ItemID, listing.Quantity)
}

// OpenListings pages through the market, newest first.
func (s *Service) OpenListings(ctx context.Context, limit, offset int) ([]*domain.MarketListing, error) {
	return s.market.ListOpen(ctx, limit, offset)
}

// MyListings returns the player's own open listings.
func (s *Service) MyListings(ctx context.Context, sellerID int64) ([]*domain.MarketListing, error) {
	return s.market.ListBySeller(ctx, sellerID)
}

func (s *Service) creditDiamonds(ctx context.Context, userID int64, amount int64) error {
	_, err := s.updateAccount(ctx, userID, func(acc *domain.PlayerAccount) error {
		acc.Diamonds += amount
		return nil
	})
	return err
}
