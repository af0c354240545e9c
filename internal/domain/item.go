package domain

import "time"

// ItemType classifies catalog items by their gameplay role.
type ItemType string

const (
	// ItemTypeMiner items generate coins over time while consuming electricity.
	ItemTypeMiner ItemType = "MINER"
	// ItemTypeBuff items grant passive bonuses while placed in an equip slot.
	ItemTypeBuff ItemType = "BUFF"
	// ItemTypeSkin items are cosmetic.
	ItemTypeSkin ItemType = "SKIN"
	// ItemTypeAvatar items are cosmetic profile pictures.
	ItemTypeAvatar ItemType = "AVATAR"
	// ItemTypeEnergy items restore energy on use.
	ItemTypeEnergy ItemType = "ENERGY"
)

// UnlimitedStock marks catalog items without a stock cap.
const UnlimitedStock = -1

// ItemDefinition is a shared catalog entry. Per-player ownership lives in OwnedStack.
type ItemDefinition struct {
	ID            int64
	Code          string
	Name          string
	Emoji         string
	Type          ItemType
	PriceDiamonds int64
	SellPrice     int64
	Stock         int

	// Miner attributes, zero for non-miners.
	MiningRate             float64
	ElectricityConsumption float64
	MinerDiamondChance     float64

	// Buff attributes, active only while the item is equipped.
	BuffClickCoins  int64
	BuffMiningSpeed float64
	BuffLuck        float64
}

// OwnedStack is a player's holding of one catalog item.
// A stack with zero quantity must be removed, never persisted.
type OwnedStack struct {
	ID        int64
	UserID    int64
	ItemID    int64
	Quantity  int
	Active    bool
	Item      *ItemDefinition
	CreatedAt time.Time
}

// MarketListing is a player-to-player sale offer priced in diamonds.
type MarketListing struct {
	ID            int64
	SellerID      int64
	ItemID        int64
	Quantity      int
	PriceDiamonds int64
	Item          *ItemDefinition
	CreatedAt     time.Time
}
