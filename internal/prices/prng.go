// Package prices produces the intrinsic/guide price pair that drives a
// simulation. Everything here is deterministic: the same seed always
// yields the same sequence of prices, which is what makes seeded games
// replayable.
package prices

import (
	"math"
	"math/rand"
)

// PRNG is a seedable random source shared by the price model, the news
// scheduler and the bots. It wraps math/rand so a game seed fully
// determines every draw, and layers a Box-Muller transform on top for
// normal variates.
type PRNG struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewPRNG returns a generator positioned at the start of the sequence
// for seed.
func NewPRNG(seed int64) *PRNG {
	return &PRNG{rng: rand.New(rand.NewSource(seed))}
}

// Reseed rewinds the generator to the start of the sequence for seed,
// discarding any cached normal draw.
func (p *PRNG) Reseed(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
	p.hasSpare = false
	p.spare = 0
}

// Float64 returns a uniform draw in [0, 1).
func (p *PRNG) Float64() float64 {
	return p.rng.Float64()
}

// Bipolar returns a uniform draw in [-1, 1).
func (p *PRNG) Bipolar() float64 {
	return 2*p.rng.Float64() - 1
}

// Intn returns a uniform draw in [0, n).
func (p *PRNG) Intn(n int) int {
	return p.rng.Intn(n)
}

// Norm returns a standard normal draw. Box-Muller produces draws in
// pairs; the second of each pair is cached for the next call.
func (p *PRNG) Norm() float64 {
	if p.hasSpare {
		p.hasSpare = false
		return p.spare
	}
	u1 := p.rng.Float64()
	for u1 == 0 {
		u1 = p.rng.Float64()
	}
	u2 := p.rng.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	p.spare = r * math.Sin(theta)
	p.hasSpare = true
	return r * math.Cos(theta)
}
