package economy

import "time"

// Engine evaluates economic state transitions for player accounts.
// All methods mutate the supplied account in place and return a transient
// outcome; callers persist the account afterwards. Failed operations never
// mutate the account.
type Engine struct {
	cfg   Config
	clock Clock
	rng   RNG
}

// New constructs an Engine with the provided constants, clock, and RNG.
// Nil clock or rng fall back to the system implementations.
func New(cfg Config, clock Clock, rng RNG) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if rng == nil {
		rng = SystemRNG()
	}

	return &Engine{
		cfg:   cfg,
		clock: clock,
		rng:   rng,
	}
}

// Config returns the constants the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Now returns the current time of the engine clock. Callers that stamp
// time themselves must use it so a test clock governs every calculation.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// ClickOutcome reports the effects of a single successful click.
type ClickOutcome struct {
	CoinsEarned  int64
	LeveledUp    bool
	DiamondFound bool

	// Post-mutation snapshot of the affected account fields.
	Energy   int
	Coins    int64
	Diamonds int64
	Level    int
}

// MiningOutcome reports the effects of a successful mining claim.
type MiningOutcome struct {
	CoinsEarned      int64
	ElectricitySpent int
	DiamondsEarned   int64

	Electricity int
	Coins       int64
	Diamonds    int64
}

// DailyReward reports the tier granted by a successful daily claim.
type DailyReward struct {
	Coins    int64
	Diamonds int64
	Streak   int
}
