package bots

import (
	"time"

	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

const (
	informedBuyBelow  = 0.95
	informedSellAbove = 1.10
	informedExitMark  = 1.05

	partialNoise     = 0.10
	partialBuyBelow  = 0.96
	partialSellAbove = 1.08
	partialStaleAge  = 10 * time.Second
)

// InformedBot knows the fundamental value exactly. It takes liquidity
// whenever the market misprices the stock, which is what drags the
// traded price back toward the intrinsic value after a shock.
type InformedBot struct {
	base
}

func newInformedBot(b base) *InformedBot { return &InformedBot{base: b} }

func (ib *InformedBot) MakeDecision(view sim.MarketView) bool {
	iv := view.Intrinsic
	if iv <= 0 {
		return false
	}
	ib.pruneMispositioned(iv)

	px := float64(view.Price)
	switch {
	case px < informedBuyBelow*float64(iv):
		before := ib.part.Shares()
		if !ib.buy(0, ib.size, orderbook.Market) {
			return false
		}
		// Park whatever we picked up as an exit order above value.
		if got := ib.part.Shares() - before; got > 0 {
			target := mulPrice(iv, informedExitMark)
			if !ib.part.HasOrderAt(orderbook.Sell, target) {
				ib.sell(target, got, orderbook.Limit)
			}
		}
		return true
	case px > informedSellAbove*float64(iv) && ib.part.Shares() > 0:
		return ib.sell(0, ib.sellQty(), orderbook.Market)
	}
	return false
}

// pruneMispositioned cancels only orders on the wrong side of the
// intrinsic value: buys above it and sells below it. Correctly placed
// orders are left to work.
func (ib *InformedBot) pruneMispositioned(iv int64) {
	for _, o := range ib.part.OpenOrders() {
		switch {
		case o.Side == orderbook.Buy && o.Price > iv:
			ib.part.CancelOrder(o.ID)
		case o.Side == orderbook.Sell && o.Price < iv:
			ib.part.CancelOrder(o.ID)
		}
	}
}

// PartiallyInformedBot trades on a noisy estimate of the fundamental
// value. The estimate is redrawn whenever the intrinsic value moves,
// so a fresh news shock re-randomizes what this bot believes.
type PartiallyInformedBot struct {
	base

	estimate      float64
	lastIntrinsic int64
}

func newPartiallyInformedBot(b base) *PartiallyInformedBot {
	return &PartiallyInformedBot{base: b}
}

func (p *PartiallyInformedBot) MakeDecision(view sim.MarketView) bool {
	iv := view.Intrinsic
	if iv <= 0 {
		return false
	}
	if iv != p.lastIntrinsic {
		p.estimate = float64(iv) * (1 + p.rng.Bipolar()*partialNoise)
		p.lastIntrinsic = iv
	}
	p.pruneStale(view.Now, partialStaleAge)

	px := float64(view.Price)
	switch {
	case px < partialBuyBelow*float64(iv):
		if ask, _ := view.Book.BestAsk(); ask > 0 {
			return p.buy(0, p.size, orderbook.Market)
		}
		if p.part.HasOrderAt(orderbook.Buy, view.Price) {
			return false
		}
		return p.buy(view.Price, p.size, orderbook.Limit)
	case px > partialSellAbove*p.estimate && p.part.Shares() > 0:
		if bid, _ := view.Book.BestBid(); bid > 0 {
			return p.sell(0, p.sellQty(), orderbook.Market)
		}
		if p.part.HasOrderAt(orderbook.Sell, view.Price) {
			return false
		}
		return p.sell(view.Price, p.sellQty(), orderbook.Limit)
	}
	return false
}
