// Package domain contains the persistent game entities.
package domain

import (
	"errors"
	"time"
)

// SlotCount is the number of equipment slots on every account.
const SlotCount = 3

// ErrSlotsFull is returned by Equip when no slot is free.
var ErrSlotsFull = errors.New("all equipment slots are occupied")

// PlayerAccount is the per-user economic state. One record per Telegram user.
type PlayerAccount struct {
	UserID          int64
	Username        string
	FirstName       string
	Language        string
	Coins           int64
	Diamonds        int64
	Energy          int
	MaxEnergy       int
	Electricity     int
	MaxElectricity  int
	ClickLevel      int
	ClickXP         int64
	BoostUntil      *time.Time
	BoostMultiplier float64
	Slots           [SlotCount]*int64
	LastMinedAt     time.Time
	LastDailyClaim  *time.Time
	DailyStreak     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPlayerAccount creates an account with both resource pools at their maximum.
func NewPlayerAccount(userID int64, username, firstName string, maxEnergy, maxElectricity int, now time.Time) *PlayerAccount {
	return &PlayerAccount{
		UserID:          userID,
		Username:        username,
		FirstName:       firstName,
		Language:        "en",
		Energy:          maxEnergy,
		MaxEnergy:       maxEnergy,
		Electricity:     maxElectricity,
		MaxElectricity:  maxElectricity,
		ClickLevel:      1,
		BoostMultiplier: 1.0,
		LastMinedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// BoostActive reports whether a click boost is in effect at the given moment.
func (a *PlayerAccount) BoostActive(now time.Time) bool {
	return a.BoostUntil != nil && a.BoostUntil.After(now)
}

// EquippedItemIDs returns the item IDs currently placed in slots, in slot order.
func (a *PlayerAccount) EquippedItemIDs() []int64 {
	ids := make([]int64, 0, SlotCount)
	for _, slot := range a.Slots {
		if slot != nil {
			ids = append(ids, *slot)
		}
	}
	return ids
}

// Equip places the item in the first empty slot. Returns ErrSlotsFull
// when every slot is taken.
func (a *PlayerAccount) Equip(itemID int64) error {
	for i, slot := range a.Slots {
		if slot == nil {
			id := itemID
			a.Slots[i] = &id
			return nil
		}
	}
	return ErrSlotsFull
}

// Unequip clears the first slot holding the item and reports whether one was found.
func (a *PlayerAccount) Unequip(itemID int64) bool {
	for i, slot := range a.Slots {
		if slot != nil && *slot == itemID {
			a.Slots[i] = nil
			return true
		}
	}
	return false
}

// IsEquipped reports whether the item occupies any slot.
func (a *PlayerAccount) IsEquipped(itemID int64) bool {
	for _, slot := range a.Slots {
		if slot != nil && *slot == itemID {
			return true
		}
	}
	return false
}
