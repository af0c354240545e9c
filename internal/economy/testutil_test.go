package economy

import (
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/domain"
)

// fakeClock returns a fixed instant and can be advanced manually.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeRNG replays a scripted sequence of draws, repeating the last one.
type fakeRNG struct {
	draws []float64
	next  int
}

func (r *fakeRNG) Float64() float64 {
	if len(r.draws) == 0 {
		return 0.99
	}
	if r.next >= len(r.draws) {
		return r.draws[len(r.draws)-1]
	}

	v := r.draws[r.next]
	r.next++
	return v
}

var testEpoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(draws ...float64) (*Engine, *fakeClock) {
	clock := &fakeClock{now: testEpoch}
	return New(DefaultConfig(), clock, &fakeRNG{draws: draws}), clock
}

func newTestAccount(clock *fakeClock) *domain.PlayerAccount {
	cfg := DefaultConfig()
	return domain.NewPlayerAccount(42, "player", "Player", cfg.MaxEnergy, cfg.MaxElectricity, clock.Now())
}

func minerStack(rate, consumption, diamondChance float64, quantity int) *domain.OwnedStack {
	return &domain.OwnedStack{
		ItemID:   1,
		Quantity: quantity,
		Active:   true,
		Item: &domain.ItemDefinition{
			ID:                     1,
			Type:                   domain.ItemTypeMiner,
			MiningRate:             rate,
			ElectricityConsumption: consumption,
			MinerDiamondChance:     diamondChance,
		},
	}
}
