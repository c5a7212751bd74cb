package market

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
)

var (
	ErrInsufficientCash   = errors.New("insufficient available cash")
	ErrInsufficientShares = errors.New("insufficient available shares")
	ErrTradingDisabled    = errors.New("trading is disabled")
	ErrNoLiquidity        = errors.New("no liquidity on the opposite side")
)

// orderRef is the participant's note about one of its own open orders,
// kept so fills and cancels release exactly what was reserved.
type orderRef struct {
	side      orderbook.Side
	kind      orderbook.OrderType
	price     int64 // limit price; 0 for market orders
	remaining int64
}

// Participant holds the cash and share books shared by humans and bots.
//
// Balances live in four buckets: available cash/shares can back new
// orders; locked cash/shares are reserved for open ones. Placing an
// order moves value from available to locked, fills settle out of
// locked, cancels move the remainder back. Every bucket stays >= 0 and
// the total only changes by what trades actually settle.
//
// A Participant belongs to one room loop and is not safe for concurrent
// use.
type Participant struct {
	ID   string
	Name string

	// OnFill, when set, runs after a fill has been applied to the
	// balances. The room uses it to push portfolio updates.
	OnFill func(Fill)

	ex *Exchange

	initialCash   int64
	availableCash int64
	lockedCash    int64
	shares        int64
	lockedShares  int64

	tradingDisabled bool

	orders map[string]*orderRef
	seq    uint64

	log zerolog.Logger
}

// NewParticipant creates a participant with the given starting balances
// (cents, shares) and registers its fill handler on the exchange.
func NewParticipant(id, name string, startingCash, startingShares int64, ex *Exchange, log zerolog.Logger) *Participant {
	p := &Participant{
		ID:            id,
		Name:          name,
		ex:            ex,
		initialCash:   startingCash,
		availableCash: startingCash,
		shares:        startingShares,
		orders:        make(map[string]*orderRef),
		log:           log.With().Str("participant", id).Logger(),
	}
	ex.RegisterFillCallback(id, p.ApplyFill)
	return p
}

func (p *Participant) nextOrderID() string {
	p.seq++
	return MakeOrderID(p.ID, fmt.Sprintf("%d-%d", time.Now().UnixNano(), p.seq))
}

// PlaceBuy submits a buy order. For limit orders the full price*qty is
// reserved up front. For market orders the exact sweep cost against the
// current asks is computed and reserved, capped by available cash, so
// the reservation always covers what the fills will settle.
func (p *Participant) PlaceBuy(price, qty int64, kind orderbook.OrderType) (string, error) {
	if p.tradingDisabled {
		return "", ErrTradingDisabled
	}
	if qty <= 0 {
		return "", orderbook.ErrInvalidQuantity
	}
	if kind == orderbook.Market {
		return p.placeMarketBuy(qty)
	}
	if price <= 0 {
		return "", orderbook.ErrInvalidPrice
	}

	// A cost that overflows int64 cents can never be covered.
	if qty > math.MaxInt64/price {
		return "", ErrInsufficientCash
	}
	cost := price * qty
	if cost > p.availableCash {
		return "", ErrInsufficientCash
	}
	p.availableCash -= cost
	p.lockedCash += cost

	id := p.nextOrderID()
	p.orders[id] = &orderRef{side: orderbook.Buy, kind: orderbook.Limit, price: price, remaining: qty}
	if err := p.ex.AddLimit(p.ID, id, orderbook.Buy, price, qty); err != nil {
		delete(p.orders, id)
		p.availableCash += cost
		p.lockedCash -= cost
		return "", err
	}
	return id, nil
}

func (p *Participant) placeMarketBuy(qty int64) (string, error) {
	if p.ex.BestAsk() == 0 {
		return "", ErrNoLiquidity
	}
	fillable, cost := p.ex.QuoteBuy(qty, p.availableCash)
	if fillable == 0 {
		return "", ErrInsufficientCash
	}
	p.availableCash -= cost
	p.lockedCash += cost

	id := p.nextOrderID()
	p.orders[id] = &orderRef{side: orderbook.Buy, kind: orderbook.Market, remaining: fillable}
	_, err := p.ex.AddMarket(p.ID, id, orderbook.Buy, fillable, func(t Totals) {
		// Release whatever part of the reservation the sweep did not
		// use before the fills consume the rest.
		if extra := cost - t.TotalCost; extra > 0 {
			p.lockedCash -= extra
			p.availableCash += extra
		}
	})
	delete(p.orders, id) // market orders never rest
	if err != nil {
		p.availableCash += cost
		p.lockedCash -= cost
		return "", err
	}
	return id, nil
}

// PlaceSell submits a sell order, reserving the shares it would deliver.
// Market sells reserve only what current bids can absorb.
func (p *Participant) PlaceSell(price, qty int64, kind orderbook.OrderType) (string, error) {
	if p.tradingDisabled {
		return "", ErrTradingDisabled
	}
	if qty <= 0 {
		return "", orderbook.ErrInvalidQuantity
	}
	if qty > p.shares {
		return "", ErrInsufficientShares
	}
	if kind == orderbook.Market {
		return p.placeMarketSell(qty)
	}
	if price <= 0 {
		return "", orderbook.ErrInvalidPrice
	}

	p.shares -= qty
	p.lockedShares += qty

	id := p.nextOrderID()
	p.orders[id] = &orderRef{side: orderbook.Sell, kind: orderbook.Limit, price: price, remaining: qty}
	if err := p.ex.AddLimit(p.ID, id, orderbook.Sell, price, qty); err != nil {
		delete(p.orders, id)
		p.shares += qty
		p.lockedShares -= qty
		return "", err
	}
	return id, nil
}

func (p *Participant) placeMarketSell(qty int64) (string, error) {
	fillable, _ := p.ex.QuoteSell(qty)
	if fillable == 0 {
		return "", ErrNoLiquidity
	}
	p.shares -= fillable
	p.lockedShares += fillable

	id := p.nextOrderID()
	p.orders[id] = &orderRef{side: orderbook.Sell, kind: orderbook.Market, remaining: fillable}
	_, err := p.ex.AddMarket(p.ID, id, orderbook.Sell, fillable, func(t Totals) {
		if back := fillable - t.TotalQty; back > 0 {
			p.lockedShares -= back
			p.shares += back
		}
	})
	delete(p.orders, id)
	if err != nil {
		p.shares += fillable
		p.lockedShares -= fillable
		return "", err
	}
	return id, nil
}

// ApplyFill settles one fill against the balances. Buy fills consume the
// cash reserved for the order; when a limit buy filled below its limit
// price the difference returns to available cash. Sell fills release the
// reserved shares and credit the proceeds.
func (p *Participant) ApplyFill(f Fill) {
	ref := p.orders[f.OrderID]
	if f.Quantity > 0 {
		unlock := f.Cost
		if ref != nil && ref.kind == orderbook.Limit {
			unlock = ref.price * f.Quantity
		}
		p.lockedCash -= unlock
		p.availableCash += unlock - f.Cost
		p.shares += f.Quantity
	} else {
		p.lockedShares += f.Quantity
		p.availableCash -= f.Cost
	}
	if ref != nil {
		q := f.Quantity
		if q < 0 {
			q = -q
		}
		ref.remaining -= q
		if ref.remaining <= 0 {
			delete(p.orders, f.OrderID)
		}
	}
	if p.OnFill != nil {
		p.OnFill(f)
	}
}

// CancelOrder pulls one of the participant's orders and releases the
// reservation backing its remaining quantity. Idempotent.
func (p *Participant) CancelOrder(orderID string) {
	removed, ok := p.ex.Cancel(orderID)
	delete(p.orders, orderID)
	if !ok {
		return
	}
	if removed.Side == orderbook.Buy {
		amount := removed.Price * removed.Size
		p.lockedCash -= amount
		p.availableCash += amount
	} else {
		p.lockedShares -= removed.Size
		p.shares += removed.Size
	}
}

// CancelAll pulls every open order the participant has.
func (p *Participant) CancelAll() {
	for _, o := range p.ex.OpenOrders(p.ID) {
		p.CancelOrder(o.ID)
	}
}

// HasOrderAt reports whether the participant already has intent at this
// side and price. Strategies use it to stay idempotent.
func (p *Participant) HasOrderAt(side orderbook.Side, price int64) bool {
	return p.ex.HasOrderAt(p.ID, side, price)
}

// OpenOrders returns the participant's live order slices.
func (p *Participant) OpenOrders() []OpenOrder {
	return p.ex.OpenOrders(p.ID)
}

// OpenLevels counts distinct price levels occupied on a side.
func (p *Participant) OpenLevels(side orderbook.Side) int {
	return p.ex.OpenLevels(p.ID, side)
}

// GrantCash credits the participant with free cash.
func (p *Participant) GrantCash(cents int64) {
	if cents > 0 {
		p.availableCash += cents
	}
}

// SetTradingDisabled flips the trading gate; while set, order placement
// is a no-op.
func (p *Participant) SetTradingDisabled(disabled bool) {
	p.tradingDisabled = disabled
}

func (p *Participant) TradingDisabled() bool { return p.tradingDisabled }

func (p *Participant) InitialCash() int64   { return p.initialCash }
func (p *Participant) AvailableCash() int64 { return p.availableCash }
func (p *Participant) LockedCash() int64    { return p.lockedCash }
func (p *Participant) Shares() int64        { return p.shares }
func (p *Participant) LockedShares() int64  { return p.lockedShares }

// Equity values the whole position, locked buckets included, at the
// given price.
func (p *Participant) Equity(currentPrice int64) int64 {
	return p.availableCash + p.lockedCash + (p.shares+p.lockedShares)*currentPrice
}

// PnL is the profit against the initial bankroll at the given price.
func (p *Participant) PnL(currentPrice int64) int64 {
	return p.Equity(currentPrice) - p.initialCash
}

// Portfolio is the participant's position as reported to clients and the
// game conclusion. Amounts are cents.
type Portfolio struct {
	ID           string
	Name         string
	Cash         int64
	LockedCash   int64
	Shares       int64
	LockedShares int64
	PnL          int64
}

// Portfolio captures the position valued at currentPrice.
func (p *Participant) Portfolio(currentPrice int64) Portfolio {
	return Portfolio{
		ID:           p.ID,
		Name:         p.Name,
		Cash:         p.availableCash,
		LockedCash:   p.lockedCash,
		Shares:       p.shares,
		LockedShares: p.lockedShares,
		PnL:          p.PnL(currentPrice),
	}
}
