package bots

import (
	"time"

	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

const (
	mmBaseSpread   = 0.004 // fractional half-to-half spread at calm volatility
	mmMaxSpread    = 0.02
	mmWindow       = 20
	mmMaxDeviation = 50 // shares away from target before forced rebalance
	mmRequoteEvery = 2 * time.Second
)

// LiquidityBot quotes both sides of the book around the current price.
// The spread widens with realized volatility, quotes skew against the
// bot's inventory, and a runaway position is cut with a market order.
type LiquidityBot struct {
	base

	target    int64 // inventory the bot tries to hold
	lastPrice int64
	returns   []float64
	lastQuote time.Time
}

func newLiquidityBot(b base, targetInventory int64) *LiquidityBot {
	return &LiquidityBot{base: b, target: targetInventory}
}

func (lb *LiquidityBot) MakeDecision(view sim.MarketView) bool {
	px := view.Price
	if px <= 0 {
		return false
	}
	lb.trackVolatility(px)

	// Runaway inventory gets cut immediately, quotes can wait.
	inventory := lb.part.Shares() + lb.part.LockedShares()
	dev := inventory - lb.target
	if dev > mmMaxDeviation {
		lb.part.CancelAll()
		return lb.sell(0, lb.sellQty(), orderbook.Market)
	}
	if dev < -mmMaxDeviation {
		lb.part.CancelAll()
		return lb.buy(0, lb.size, orderbook.Market)
	}

	// If the book is already tighter than our calm spread there is
	// nothing for us to add.
	bid, _ := view.Book.BestBid()
	ask, _ := view.Book.BestAsk()
	if bid > 0 && ask > 0 {
		mid := float64(bid+ask) / 2
		if mid > 0 && float64(ask-bid)/mid < mmBaseSpread {
			return false
		}
	}

	if view.Now.Sub(lb.lastQuote) < mmRequoteEvery {
		return false
	}
	lb.lastQuote = view.Now

	// Requote from scratch: cancel stale quotes, then post fresh ones.
	lb.part.CancelAll()

	half := int64(float64(px)*lb.effectiveSpread()/2 + 0.5)
	if half < 1 {
		half = 1
	}
	// If long, shift both quotes down: eager to sell, reluctant to buy.
	skew := -int64(float64(dev) * float64(half) / float64(mmMaxDeviation))
	if skew > half {
		skew = half
	} else if skew < -half {
		skew = -half
	}

	quoteBid := px - half + skew
	quoteAsk := px + half + skew
	if quoteBid < 1 {
		quoteBid = 1
	}
	if quoteAsk <= quoteBid {
		quoteAsk = quoteBid + 1
	}

	placed := lb.buy(quoteBid, lb.size, orderbook.Limit)
	if qty := lb.sellQty(); qty > 0 {
		if lb.sell(quoteAsk, qty, orderbook.Limit) {
			placed = true
		}
	}
	return placed
}

func (lb *LiquidityBot) trackVolatility(px int64) {
	if lb.lastPrice > 0 {
		r := float64(px-lb.lastPrice) / float64(lb.lastPrice)
		lb.returns = append(lb.returns, r)
		if len(lb.returns) > mmWindow {
			lb.returns = lb.returns[1:]
		}
	}
	lb.lastPrice = px
}

// effectiveSpread widens the calm spread with realized volatility,
// capped so the bot never quotes absurdly wide.
func (lb *LiquidityBot) effectiveSpread() float64 {
	eff := mmBaseSpread * (1 + stdev(lb.returns)*100)
	if eff > mmMaxSpread {
		eff = mmMaxSpread
	}
	return eff
}
