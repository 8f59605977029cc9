package core

import "math/rand"

// Rand is the source of uniform randomness the encounter search draws from.
// It is injected so callers control seeding and tests can supply fixed
// sequences; given the same seed the search is fully deterministic.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int
}

type seededRand struct {
	r *rand.Rand
}

// NewRand returns a Rand backed by math/rand with the given seed.
func NewRand(seed int64) Rand {
	return &seededRand{r: rand.New(rand.NewSource(seed))}
}

func (s *seededRand) Float64() float64 { return s.r.Float64() }
func (s *seededRand) IntN(n int) int   { return s.r.Intn(n) }

// uniform draws a uniform value in [low, high).
func uniform(rng Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}
