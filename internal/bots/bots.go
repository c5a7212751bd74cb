// Package bots implements the automated traders that animate a room's
// market. Every strategy shares the same shape: a participant with cash
// and shares, a seeded random source, and a MakeDecision the simulator
// polls each tick. Strategies never duplicate intent: before posting
// they check for their own resting order at the target price.
package bots

import (
	"math"
	"time"

	"github.com/Benjythebee/stock-sim-server/internal/market"
	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/prices"
)

// Kind identifies a strategy. The values are part of the settings
// contract (botSelection) and the catalogue endpoint.
type Kind string

const (
	KindMomentum          Kind = "momentum"
	KindMeanReversion     Kind = "meanReversion"
	KindInformed          Kind = "informed"
	KindPartiallyInformed Kind = "partiallyInformed"
	KindLiquidity         Kind = "liquidity"
	KindRandom            Kind = "random"
	KindSpread            Kind = "spread"
)

// Descriptor is the public description of a strategy.
type Descriptor struct {
	Kind        Kind   `json:"kind"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Catalog lists every spawnable strategy.
var Catalog = []Descriptor{
	{KindMomentum, "Momentum", "Chases short-term trends, buying strength and selling weakness."},
	{KindMeanReversion, "Mean Reversion", "Fades moves away from the recent average price."},
	{KindInformed, "Informed", "Knows the fundamental value and takes liquidity when the market misprices it."},
	{KindPartiallyInformed, "Partially Informed", "Trades on a noisy estimate of the fundamental value."},
	{KindLiquidity, "Market Maker", "Quotes both sides around the current price and manages its inventory."},
	{KindRandom, "Random", "Trades on coin flips; pure noise."},
	{KindSpread, "Spread", "Posts orders inside a wide spread to tighten the market."},
}

// DescriptorFor returns the catalogue entry for a kind.
func DescriptorFor(kind Kind) (Descriptor, bool) {
	for _, d := range Catalog {
		if d.Kind == kind {
			return d, true
		}
	}
	return Descriptor{}, false
}

// base carries what every strategy shares: the participant doing the
// accounting, the bot's own random source, and its standing order size.
type base struct {
	part *market.Participant
	rng  *prices.PRNG
	kind Kind
	size int64
}

func (b *base) ID() string                       { return b.part.ID }
func (b *base) Kind() Kind                       { return b.kind }
func (b *base) Participant() *market.Participant { return b.part }

// buy and sell post orders through the participant, reporting success.
// Rejections for insufficient funds or a dry book are routine for bots
// and simply mean no action this tick.
func (b *base) buy(price, qty int64, kind orderbook.OrderType) bool {
	_, err := b.part.PlaceBuy(price, qty, kind)
	return err == nil
}

func (b *base) sell(price, qty int64, kind orderbook.OrderType) bool {
	_, err := b.part.PlaceSell(price, qty, kind)
	return err == nil
}

// pruneStale cancels the bot's own orders older than maxAge.
func (b *base) pruneStale(now time.Time, maxAge time.Duration) {
	for _, o := range b.part.OpenOrders() {
		if now.Sub(o.Placed) > maxAge {
			b.part.CancelOrder(o.ID)
		}
	}
}

// sellQty clamps the standing order size to the sellable shares.
func (b *base) sellQty() int64 {
	if s := b.part.Shares(); s < b.size {
		return s
	}
	return b.size
}

// computePriceChange returns prices up% above and down% below base,
// each at least minStep cents away.
func computePriceChange(basePrice, minStep int64, upPct, downPct float64) (up, down int64) {
	du := int64(float64(basePrice)*upPct + 0.5)
	if du < minStep {
		du = minStep
	}
	dd := int64(float64(basePrice)*downPct + 0.5)
	if dd < minStep {
		dd = minStep
	}
	up = basePrice + du
	down = basePrice - dd
	if down < 1 {
		down = 1
	}
	return up, down
}

// mulPrice scales a cent price by f, rounding half up, floored at 1.
func mulPrice(price int64, f float64) int64 {
	p := int64(float64(price)*f + 0.5)
	if p < 1 {
		return 1
	}
	return p
}

// sma is the arithmetic mean of the last n samples, 0 when empty.
func sma(samples []int64, n int) float64 {
	if len(samples) == 0 {
		return 0
	}
	if n > len(samples) {
		n = len(samples)
	}
	var sum int64
	for _, s := range samples[len(samples)-n:] {
		sum += s
	}
	return float64(sum) / float64(n)
}

// stdev is the population standard deviation.
func stdev(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	var sq float64
	for _, s := range samples {
		d := s - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(samples)))
}
