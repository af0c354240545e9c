package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		from    State
		to      State
		allowed bool
	}{
		{name: "idle to select item", from: StateIdle, to: StateMarketSelectItem, allowed: true},
		{name: "select item to set price", from: StateMarketSelectItem, to: StateMarketSetPrice, allowed: true},
		{name: "set price to confirm", from: StateMarketSetPrice, to: StateMarketConfirm, allowed: true},
		{name: "set price back to select item", from: StateMarketSetPrice, to: StateMarketSelectItem, allowed: true},
		{name: "idle cannot skip to confirm", from: StateIdle, to: StateMarketConfirm, allowed: false},
		{name: "select item cannot skip to confirm", from: StateMarketSelectItem, to: StateMarketConfirm, allowed: false},
		{name: "any state can cancel to idle", from: StateMarketConfirm, to: StateIdle, allowed: true},
		{name: "any state can fall into error", from: StateMarketSetPrice, to: StateError, allowed: true},
		{name: "unknown state has no transitions", from: State("bogus"), to: StateMarketSetPrice, allowed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, IsTransitionAllowed(tc.from, tc.to))
		})
	}
}
