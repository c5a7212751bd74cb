package bots

import (
	"time"

	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

const (
	momentumLookback  = 5
	momentumThreshold = 0.01
	momentumOffset    = 0.01
	momentumStaleAge  = 5 * time.Second
	momentumGate      = 0.7

	reversionWindow = 20
	reversionBand   = 0.02
	reversionOffset = 0.005
	reversionGate   = 0.5
	reversionStale  = 10 * time.Second
)

// MomentumBot chases price trends. It measures the move over the last
// few guide prices and only acts when the move clears a threshold and
// a random gate, so a crowd of momentum bots does not fire in lockstep.
type MomentumBot struct {
	base
}

func newMomentumBot(b base) *MomentumBot { return &MomentumBot{base: b} }

func (m *MomentumBot) MakeDecision(view sim.MarketView) bool {
	m.pruneStale(view.Now, momentumStaleAge)

	h := view.History
	if len(h) < momentumLookback+1 {
		return false
	}
	prev := h[len(h)-1-momentumLookback]
	if prev <= 0 {
		return false
	}
	move := float64(h[len(h)-1]-prev) / float64(prev)

	up, down := computePriceChange(view.Guide, 1, momentumOffset, momentumOffset)
	switch {
	case move > momentumThreshold && m.rng.Float64() > momentumGate:
		if m.part.HasOrderAt(orderbook.Buy, up) {
			return false
		}
		return m.buy(up, m.size, orderbook.Limit)
	case move < -momentumThreshold && m.part.Shares() > 0 && m.rng.Float64() > momentumGate:
		if m.part.HasOrderAt(orderbook.Sell, down) {
			return false
		}
		return m.sell(down, m.sellQty(), orderbook.Limit)
	}
	return false
}

// MeanReversionBot fades large moves. When the price strays outside a
// band around its recent average it bets on a move back toward it.
type MeanReversionBot struct {
	base
}

func newMeanReversionBot(b base) *MeanReversionBot { return &MeanReversionBot{base: b} }

func (m *MeanReversionBot) MakeDecision(view sim.MarketView) bool {
	m.pruneStale(view.Now, reversionStale)

	avg := sma(view.History, reversionWindow)
	if avg <= 0 {
		return false
	}
	px := float64(view.Price)

	switch {
	case px < avg*(1-reversionBand) && m.rng.Float64() > reversionGate:
		bid := mulPrice(view.Guide, 1-reversionOffset)
		if m.part.HasOrderAt(orderbook.Buy, bid) {
			return false
		}
		return m.buy(bid, m.size, orderbook.Limit)
	case px > avg*(1+reversionBand) && m.part.Shares() > 0 && m.rng.Float64() > reversionGate:
		ask := mulPrice(view.Guide, 1+reversionOffset)
		if m.part.HasOrderAt(orderbook.Sell, ask) {
			return false
		}
		return m.sell(ask, m.sellQty(), orderbook.Limit)
	}
	return false
}
