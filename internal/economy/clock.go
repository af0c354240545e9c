package economy

import (
	"math/rand/v2"
	"time"
)

// Clock supplies the current time. Injected so that time-windowed mining and
// daily-streak logic stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RNG supplies uniform draws in [0, 1) for drop rolls.
type RNG interface {
	Float64() float64
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }

type systemRNG struct{}

func (systemRNG) Float64() float64 { return rand.Float64() }

// SystemRNG returns an RNG backed by math/rand/v2.
func SystemRNG() RNG { return systemRNG{} }
