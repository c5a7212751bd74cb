package bots

import (
	"time"

	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

const (
	randomBuyGate    = 0.9
	randomSellGate   = 0.1
	randomMarketProb = 0.5
	randomLevelCap   = 10
	randomJitter     = 0.01

	spreadMinPct  = 0.005
	spreadInside  = 0.3
	spreadRefresh = 2 * time.Second
)

// RandomBot places random orders to create market texture. Most ticks
// it does nothing; when the dice land it flips a second coin between a
// market order and a limit order near the guide price.
type RandomBot struct {
	base
}

func newRandomBot(b base) *RandomBot { return &RandomBot{base: b} }

func (r *RandomBot) MakeDecision(view sim.MarketView) bool {
	u := r.rng.Float64()
	switch {
	case u > randomBuyGate:
		// Too many resting bids means this bot is just stacking the book.
		if r.part.OpenLevels(orderbook.Buy) > randomLevelCap {
			return false
		}
		if r.rng.Float64() < randomMarketProb {
			return r.buy(0, r.size, orderbook.Market)
		}
		price := mulPrice(view.Guide, 1+r.rng.Bipolar()*randomJitter)
		if r.part.HasOrderAt(orderbook.Buy, price) {
			return false
		}
		return r.buy(price, r.size, orderbook.Limit)
	case u < randomSellGate && r.part.Shares() > 0:
		if r.part.OpenLevels(orderbook.Sell) > randomLevelCap {
			return false
		}
		if r.rng.Float64() < randomMarketProb {
			return r.sell(0, r.sellQty(), orderbook.Market)
		}
		price := mulPrice(view.Guide, 1+r.rng.Bipolar()*randomJitter)
		if r.part.HasOrderAt(orderbook.Sell, price) {
			return false
		}
		return r.sell(price, r.sellQty(), orderbook.Limit)
	}
	return false
}

// SpreadBot tightens a wide market. When the spread is a meaningful
// fraction of the price it posts limits a third of the way inside from
// both edges, refreshing them on a fixed cadence.
type SpreadBot struct {
	base

	lastRefresh time.Time
}

func newSpreadBot(b base) *SpreadBot { return &SpreadBot{base: b} }

func (s *SpreadBot) MakeDecision(view sim.MarketView) bool {
	bid, _ := view.Book.BestBid()
	ask, _ := view.Book.BestAsk()
	if bid <= 0 || ask <= 0 || view.Price <= 0 {
		return false
	}
	spread := ask - bid
	if float64(spread)/float64(view.Price) <= spreadMinPct {
		return false
	}
	if view.Now.Sub(s.lastRefresh) < spreadRefresh {
		return false
	}

	inside := int64(float64(spread)*spreadInside + 0.5)
	buyAt := bid + inside
	sellAt := ask - inside
	if buyAt >= sellAt {
		return false
	}
	s.lastRefresh = view.Now
	s.part.CancelAll()

	placed := s.buy(buyAt, s.size, orderbook.Limit)
	if qty := s.sellQty(); qty > 0 {
		if s.sell(sellAt, qty, orderbook.Limit) {
			placed = true
		}
	}
	return placed
}
