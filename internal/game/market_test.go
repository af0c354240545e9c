package game

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
)

func TestListItem(t *testing.T) {
	ctx := context.Background()

	t.Run("moves goods out of the inventory", func(t *testing.T) {
		f := newFixture(t, testAccount(1))
		f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
		f.giveStack(t, 1, 10, 5)

		listing, err := f.svc.ListItem(ctx, 1, 10, 3, 50)
		require.NoError(t, err)
		assert.NotZero(t, listing.ID)
		assert.Equal(t, 3, listing.Quantity)

		stack, err := f.inventory.FindStack(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, stack.Quantity)
	})

	t.Run("rejects more than owned", func(t *testing.T) {
		f := newFixture(t, testAccount(1))
		f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
		f.giveStack(t, 1, 10, 2)

		_, err := f.svc.ListItem(ctx, 1, 10, 3, 50)
		assert.ErrorIs(t, err, ErrStackNotFound)

		stack, err := f.inventory.FindStack(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, stack.Quantity)
	})

	t.Run("rejects zero quantity and price", func(t *testing.T) {
		f := newFixture(t, testAccount(1))

		_, err := f.svc.ListItem(ctx, 1, 10, 0, 50)
		assert.ErrorIs(t, err, ErrStackNotFound)

		_, err = f.svc.ListItem(ctx, 1, 10, 1, 0)
		assert.ErrorIs(t, err, ErrStackNotFound)
	})
}

func TestBuyListing(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *domain.PlayerAccount, *domain.PlayerAccount, *domain.MarketListing) {
		t.Helper()

		seller := testAccount(1)
		buyer := testAccount(2)
		buyer.Diamonds = 200

		f := newFixture(t, seller, buyer)
		f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
		f.giveStack(t, 1, 10, 5)

		listing, err := f.svc.ListItem(ctx, 1, 10, 5, 100)
		require.NoError(t, err)
		return f, seller, buyer, listing
	}

	t.Run("settles price, tax, and goods", func(t *testing.T) {
		f, seller, buyer, listing := setup(t)

		sold, err := f.svc.BuyListing(ctx, 2, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.ID, sold.ID)

		assert.Equal(t, int64(100), buyer.Diamonds, "buyer pays the full price")
		assert.Equal(t, int64(90), seller.Diamonds, "seller receives the price minus the 10 percent tax")

		stack, err := f.inventory.FindStack(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, 5, stack.Quantity)

		_, err = f.market.FindByID(ctx, listing.ID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("own listing", func(t *testing.T) {
		f, _, _, listing := setup(t)

		_, err := f.svc.BuyListing(ctx, 1, listing.ID)
		assert.ErrorIs(t, err, ErrOwnListing)
	})

	t.Run("cannot afford", func(t *testing.T) {
		f, _, buyer, listing := setup(t)
		buyer.Diamonds = 10

		_, err := f.svc.BuyListing(ctx, 2, listing.ID)
		require.Error(t, err)
		assert.True(t, economy.IsKind(err, economy.KindInsufficientCurrency))
		assert.Equal(t, int64(10), buyer.Diamonds)
	})

	t.Run("missing listing", func(t *testing.T) {
		f, _, _, _ := setup(t)

		_, err := f.svc.BuyListing(ctx, 2, 999)
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("lost race refunds the buyer", func(t *testing.T) {
		f, seller, buyer, listing := setup(t)

		// A concurrent buyer settles between FindByID and Delete.
		f.market.failDelete = true

		_, err := f.svc.BuyListing(ctx, 2, listing.ID)
		assert.ErrorIs(t, err, ErrListingNotFound)

		assert.Equal(t, int64(200), buyer.Diamonds, "losing buyer must be made whole")
		assert.Equal(t, int64(0), seller.Diamonds)

		_, err = f.inventory.FindStack(ctx, 2, 10)
		assert.ErrorIs(t, err, sql.ErrNoRows, "the goods must not be delivered twice")
	})
}

func TestCancelListing(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the goods", func(t *testing.T) {
		f := newFixture(t, testAccount(1))
		f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
		f.giveStack(t, 1, 10, 3)

		listing, err := f.svc.ListItem(ctx, 1, 10, 3, 50)
		require.NoError(t, err)

		require.NoError(t, f.svc.CancelListing(ctx, 1, listing.ID))

		stack, err := f.inventory.FindStack(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, stack.Quantity)
	})

	t.Run("only the seller can cancel", func(t *testing.T) {
		f := newFixture(t, testAccount(1), testAccount(2))
		f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
		f.giveStack(t, 1, 10, 3)

		listing, err := f.svc.ListItem(ctx, 1, 10, 3, 50)
		require.NoError(t, err)

		err = f.svc.CancelListing(ctx, 2, listing.ID)
		assert.ErrorIs(t, err, ErrListingNotFound)

		_, err = f.market.FindByID(ctx, listing.ID)
		require.NoError(t, err, "the listing must remain open")
	})
}

func TestOpenListingsPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testAccount(1))
	f.addItem(&domain.ItemDefinition{ID: 10, Type: domain.ItemTypeMiner})
	f.giveStack(t, 1, 10, 10)

	for i := 0; i < 7; i++ {
		_, err := f.svc.ListItem(ctx, 1, 10, 1, int64(10+i))
		require.NoError(t, err)
	}

	first, err := f.svc.OpenListings(ctx, 5, 0)
	require.NoError(t, err)
	assert.Len(t, first, 5)

	second, err := f.svc.OpenListings(ctx, 5, 5)
	require.NoError(t, err)
	assert.Len(t, second, 2)

	mine, err := f.svc.MyListings(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 7)
}
