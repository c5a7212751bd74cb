package prices

import (
	"math"

	"github.com/Benjythebee/stock-sim-server/internal/money"
)

const (
	// DefaultShockTicks is how long a shock lingers when the caller
	// does not pick a duration.
	DefaultShockTicks = 10

	minPrice   = 0.01
	historyCap = 20
)

// shockState is a transient additive drift applied to the guide price.
// Only one shock is in flight at a time; a new one replaces it.
type shockState struct {
	intensity      float64 // fractional drift added per tick
	ticksRemaining int
}

// Config seeds a Generator. OpeningPrice is in dollars; Volatility is the
// per-tick GBM volatility as a fraction (0.05 = 5%).
type Config struct {
	OpeningPrice  float64
	Drift         float64
	Volatility    float64
	MeanReversion float64
}

// Generator evolves an (intrinsic value, guide price) pair. The intrinsic
// value is the slow fundamental; the guide price random-walks around it
// under geometric Brownian motion, pulled back by mean reversion and
// pushed around by shocks. Prices leave the generator as integer cents,
// ceiling-rounded so they never understate the model value.
//
// A Generator is not safe for concurrent use; each room drives its own
// from a single goroutine.
type Generator struct {
	rng *PRNG

	intrinsic float64 // dollars
	guide     float64 // dollars

	drift         float64
	volatility    float64
	meanReversion float64

	shock *shockState

	history []int64 // rounded guide prices in cents, newest last
}

// NewGenerator builds a generator starting with guide == intrinsic ==
// cfg.OpeningPrice.
func NewGenerator(cfg Config, rng *PRNG) *Generator {
	opening := cfg.OpeningPrice
	if opening < minPrice {
		opening = minPrice
	}
	vol := cfg.Volatility
	if vol <= 0 {
		vol = 0.05
	}
	return &Generator{
		rng:           rng,
		intrinsic:     opening,
		guide:         opening,
		drift:         cfg.Drift,
		volatility:    vol,
		meanReversion: cfg.MeanReversion,
		history:       make([]int64, 0, historyCap),
	}
}

// Tick advances the model one step and returns the rounded
// (intrinsic, guide) pair in cents.
//
// The guide price follows guide ← guide · exp((d − ½σ²) + σ·z) with z a
// standard normal draw and d the total drift: the base drift, plus the
// active shock, plus a reversion force proportional to how far the guide
// has strayed from the intrinsic value.
func (g *Generator) Tick() (intrinsic, guide int64) {
	total := g.drift
	if g.shock != nil {
		total += g.shock.intensity
		g.shock.ticksRemaining--
		if g.shock.ticksRemaining <= 0 {
			g.shock = nil
		}
	}
	total += -((g.guide - g.intrinsic) / g.intrinsic) * g.meanReversion

	z := g.rng.Norm()
	g.guide *= math.Exp(total - 0.5*g.volatility*g.volatility + g.volatility*z)
	if g.guide < minPrice {
		g.guide = minPrice
	}

	guideCents := money.CeilCents(g.guide)
	g.history = append(g.history, guideCents)
	if len(g.history) > historyCap {
		g.history = g.history[1:]
	}
	return money.CeilCents(g.intrinsic), guideCents
}

// Shock schedules a transient drift of intensityPct percent per tick for
// the given number of ticks, replacing any shock already in flight.
// Pass DefaultShockTicks unless the caller has a reason to differ.
func (g *Generator) Shock(intensityPct float64, ticks int) {
	if ticks <= 0 {
		ticks = DefaultShockTicks
	}
	g.shock = &shockState{intensity: intensityPct / 100, ticksRemaining: ticks}
}

// IntrinsicShock reprices the fundamental by the given fraction
// (0.05 = +5%). The guide price is left alone; reversion drags it toward
// the new level over the following ticks.
func (g *Generator) IntrinsicShock(pct float64) {
	g.intrinsic *= 1 + pct
	if g.intrinsic < minPrice {
		g.intrinsic = minPrice
	}
}

// DriftIntrinsicValue applies IntrinsicShock(±pct) with the sign drawn
// from the PRNG.
func (g *Generator) DriftIntrinsicValue(pct float64) {
	if g.rng.Float64() < 0.5 {
		pct = -pct
	}
	g.IntrinsicShock(pct)
}

// History returns a copy of the recent rounded guide prices, newest last.
func (g *Generator) History() []int64 {
	out := make([]int64, len(g.history))
	copy(out, g.history)
	return out
}

// Intrinsic returns the current intrinsic value in rounded cents.
func (g *Generator) Intrinsic() int64 {
	return money.CeilCents(g.intrinsic)
}

// Guide returns the current guide price in rounded cents.
func (g *Generator) Guide() int64 {
	return money.CeilCents(g.guide)
}

// Volatility returns the current per-tick volatility fraction.
func (g *Generator) Volatility() float64 {
	return g.volatility
}

// SetVolatility overrides the per-tick volatility. Values are clamped
// into (0, 1].
func (g *Generator) SetVolatility(v float64) {
	if v <= 0 {
		v = 0.00001
	}
	if v > 1 {
		v = 1
	}
	g.volatility = v
}

// ShockActive reports whether a shock still has ticks remaining.
func (g *Generator) ShockActive() bool {
	return g.shock != nil
}
