// Package market wraps the matching engine with the accounting the game
// needs: per-participant order tracking, signed fill routing, and the
// locked-balance bookkeeping that keeps every participant's cash and
// shares conserved across trades.
package market

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
)

// ownerSep joins a participant id and an order suffix into an order id,
// so the owner can always be recovered from the id alone.
const ownerSep = "::"

// MakeOrderID builds a composite order id owned by ownerID.
func MakeOrderID(ownerID, suffix string) string {
	return ownerID + ownerSep + suffix
}

// OwnerOf extracts the owning participant from a composite order id.
// Returns "" for ids without an owner prefix.
func OwnerOf(orderID string) string {
	i := strings.Index(orderID, ownerSep)
	if i < 0 {
		return ""
	}
	return orderID[:i]
}

// Fill is one settled slice of an order, reported to the owner. Signs
// follow the side: buys carry positive quantity and cost, sells negative.
type Fill struct {
	OrderID  string
	Price    int64 // trade price in cents
	Quantity int64
	Cost     int64
}

// FillFunc receives fills for one participant.
type FillFunc func(Fill)

// Totals summarises a market-order sweep. Reported to the submitter
// before any fill callback runs so reservations can be reconciled first.
type Totals struct {
	TotalCost int64
	TotalQty  int64
}

// OpenOrder is the exchange's view of one live order slice.
type OpenOrder struct {
	ID      string
	OwnerID string
	Side    orderbook.Side
	Price   int64
	Size    int64 // remaining quantity
	Placed  time.Time
}

type levelKey struct {
	side  orderbook.Side
	price int64
}

// clientIndex answers "does this participant have an order at this side
// and price" in O(1), and finds entries by order id for fill settlement.
type clientIndex struct {
	byID    map[string][]*OpenOrder
	byLevel map[levelKey][]*OpenOrder
}

func newClientIndex() *clientIndex {
	return &clientIndex{
		byID:    make(map[string][]*OpenOrder),
		byLevel: make(map[levelKey][]*OpenOrder),
	}
}

func (ci *clientIndex) add(e *OpenOrder) {
	ci.byID[e.ID] = append(ci.byID[e.ID], e)
	k := levelKey{e.Side, e.Price}
	ci.byLevel[k] = append(ci.byLevel[k], e)
}

func (ci *clientIndex) remove(e *OpenOrder) {
	ci.byID[e.ID] = dropEntry(ci.byID[e.ID], e)
	if len(ci.byID[e.ID]) == 0 {
		delete(ci.byID, e.ID)
	}
	k := levelKey{e.Side, e.Price}
	ci.byLevel[k] = dropEntry(ci.byLevel[k], e)
	if len(ci.byLevel[k]) == 0 {
		delete(ci.byLevel, k)
	}
}

func dropEntry(s []*OpenOrder, e *OpenOrder) []*OpenOrder {
	for i, x := range s {
		if x == e {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// consume settles qty against the entry for orderID at the trade price.
// A limit taker filled at a better price has its entry at its own limit
// price, so fall back to any entry with the id.
func (ci *clientIndex) consume(orderID string, price, qty int64) {
	entries := ci.byID[orderID]
	if len(entries) == 0 {
		return
	}
	var target *OpenOrder
	for _, e := range entries {
		if e.Price == price {
			target = e
			break
		}
	}
	if target == nil {
		target = entries[0]
	}
	target.Size -= qty
	if target.Size <= 0 {
		ci.remove(target)
	}
}

// Exchange is the wrapper around the matching book. It routes fills to
// registered participants, keeps the per-client order index in lockstep
// with the book, and accumulates the aggregates the game conclusion
// reports.
//
// An Exchange is confined to its room's loop and is not safe for
// concurrent use.
type Exchange struct {
	book *orderbook.Book

	clients map[string]*clientIndex
	onFill  map[string]FillFunc

	lastPrice      int64
	highestPrice   int64
	lowestPrice    int64
	valueProcessed int64
	sharesTraded   int64

	log zerolog.Logger
}

// NewExchange creates an exchange for one asset. openingPrice seeds the
// last-trade price so the market has a price before the first trade.
func NewExchange(symbol string, openingPrice int64, log zerolog.Logger) *Exchange {
	return &Exchange{
		book:      orderbook.New(symbol),
		clients:   make(map[string]*clientIndex),
		onFill:    make(map[string]FillFunc),
		lastPrice: openingPrice,
		log:       log.With().Str("component", "exchange").Logger(),
	}
}

// RegisterFillCallback stores the fill callback for a participant,
// replacing any previous one.
func (e *Exchange) RegisterFillCallback(id string, fn FillFunc) {
	e.onFill[id] = fn
}

func (e *Exchange) indexFor(clientID string) *clientIndex {
	ci, ok := e.clients[clientID]
	if !ok {
		ci = newClientIndex()
		e.clients[clientID] = ci
	}
	return ci
}

// AddLimit submits a limit order. Immediate fills are dispatched before
// it returns; any remainder rests on the book and in the owner's index.
func (e *Exchange) AddLimit(clientID, orderID string, side orderbook.Side, price, qty int64) error {
	entry := &OpenOrder{
		ID:      orderID,
		OwnerID: clientID,
		Side:    side,
		Price:   price,
		Size:    qty,
		Placed:  time.Now(),
	}
	ci := e.indexFor(clientID)
	ci.add(entry)

	trades, err := e.book.Submit(&orderbook.Order{
		ID:       orderID,
		OwnerID:  clientID,
		Side:     side,
		Type:     orderbook.Limit,
		Price:    price,
		Quantity: qty,
	})
	if err != nil {
		ci.remove(entry)
		return err
	}
	e.settle(trades)
	return nil
}

// AddMarket submits a market order and returns the unfilled remainder.
// Executed slices are synthesised into the owner's index per price level
// before onTotals reports the sweep, then fills consume them.
func (e *Exchange) AddMarket(clientID, orderID string, side orderbook.Side, qty int64, onTotals func(Totals)) (int64, error) {
	order := &orderbook.Order{
		ID:       orderID,
		OwnerID:  clientID,
		Side:     side,
		Type:     orderbook.Market,
		Quantity: qty,
	}
	trades, err := e.book.Submit(order)
	if err != nil {
		return qty, err
	}

	ci := e.indexFor(clientID)
	now := time.Now()
	var totals Totals
	var levels []int64
	perLevel := make(map[int64]int64)
	for _, tr := range trades {
		if _, seen := perLevel[tr.Price]; !seen {
			levels = append(levels, tr.Price)
		}
		perLevel[tr.Price] += tr.Quantity
		totals.TotalCost += tr.Price * tr.Quantity
		totals.TotalQty += tr.Quantity
	}
	for _, price := range levels {
		ci.add(&OpenOrder{
			ID:      orderID,
			OwnerID: clientID,
			Side:    side,
			Price:   price,
			Size:    perLevel[price],
			Placed:  now,
		})
	}

	if onTotals != nil {
		onTotals(totals)
	}
	e.settle(trades)
	return order.Remaining(), nil
}

// Cancel removes a resting order and returns its remaining slice so the
// owner can release the reservation. Idempotent: cancelling an unknown
// or already-filled order reports ok=false and changes nothing.
func (e *Exchange) Cancel(orderID string) (OpenOrder, bool) {
	order, err := e.book.Cancel(orderID)
	if err != nil {
		return OpenOrder{}, false
	}
	removed := OpenOrder{
		ID:      order.ID,
		OwnerID: order.OwnerID,
		Side:    order.Side,
		Price:   order.Price,
		Size:    order.Remaining(),
	}
	if ci, ok := e.clients[order.OwnerID]; ok {
		for _, entry := range ci.byID[orderID] {
			removed.Placed = entry.Placed
			ci.remove(entry)
			break
		}
	}
	return removed, true
}

func (e *Exchange) settle(trades []orderbook.Trade) {
	for _, tr := range trades {
		value := tr.Price * tr.Quantity
		e.lastPrice = tr.Price
		e.valueProcessed += value
		e.sharesTraded += tr.Quantity
		if tr.Price > e.highestPrice {
			e.highestPrice = tr.Price
		}
		if e.lowestPrice == 0 || tr.Price < e.lowestPrice {
			e.lowestPrice = tr.Price
		}

		if ci, ok := e.clients[tr.BuyerID]; ok {
			ci.consume(tr.BuyOrderID, tr.Price, tr.Quantity)
		}
		if ci, ok := e.clients[tr.SellerID]; ok {
			ci.consume(tr.SellOrderID, tr.Price, tr.Quantity)
		}

		if fn := e.onFill[tr.BuyerID]; fn != nil {
			fn(Fill{OrderID: tr.BuyOrderID, Price: tr.Price, Quantity: tr.Quantity, Cost: value})
		}
		if fn := e.onFill[tr.SellerID]; fn != nil {
			fn(Fill{OrderID: tr.SellOrderID, Price: tr.Price, Quantity: -tr.Quantity, Cost: -value})
		}
	}
}

// HasOrderAt reports whether the participant has a live order at the
// given side and price.
func (e *Exchange) HasOrderAt(clientID string, side orderbook.Side, price int64) bool {
	ci, ok := e.clients[clientID]
	if !ok {
		return false
	}
	return len(ci.byLevel[levelKey{side, price}]) > 0
}

// OpenOrders returns copies of the participant's live order slices.
func (e *Exchange) OpenOrders(clientID string) []OpenOrder {
	ci, ok := e.clients[clientID]
	if !ok {
		return nil
	}
	out := make([]OpenOrder, 0, len(ci.byID))
	for _, entries := range ci.byID {
		for _, entry := range entries {
			out = append(out, *entry)
		}
	}
	return out
}

// OpenLevels counts the distinct price levels the participant occupies
// on one side.
func (e *Exchange) OpenLevels(clientID string, side orderbook.Side) int {
	ci, ok := e.clients[clientID]
	if !ok {
		return 0
	}
	n := 0
	for k := range ci.byLevel {
		if k.side == side {
			n++
		}
	}
	return n
}

// QuoteBuy walks the asks and returns how many of qty shares could fill
// right now without spending more than cashLimit, and their exact cost.
func (e *Exchange) QuoteBuy(qty, cashLimit int64) (fillable, cost int64) {
	_, asks := e.book.Depth()
	for _, level := range asks {
		if fillable == qty {
			break
		}
		price, avail := level[0], level[1]
		take := min64(qty-fillable, avail)
		if budget := (cashLimit - cost) / price; take > budget {
			take = budget
		}
		if take <= 0 {
			break
		}
		fillable += take
		cost += take * price
	}
	return fillable, cost
}

// QuoteSell walks the bids and returns how many of qty shares could fill
// right now and the exact proceeds.
func (e *Exchange) QuoteSell(qty int64) (fillable, proceeds int64) {
	bids, _ := e.book.Depth()
	for _, level := range bids {
		if fillable == qty {
			break
		}
		price, avail := level[0], level[1]
		take := min64(qty-fillable, avail)
		fillable += take
		proceeds += take * price
	}
	return fillable, proceeds
}

// Snapshot returns the aggregated book state.
func (e *Exchange) Snapshot() orderbook.BookSnapshot {
	return e.book.Snapshot()
}

// Depth returns [price, totalQty] pairs, bids descending and asks
// ascending.
func (e *Exchange) Depth() (bids, asks [][2]int64) {
	return e.book.Depth()
}

func (e *Exchange) BestBid() int64  { return e.book.BestBid() }
func (e *Exchange) BestAsk() int64  { return e.book.BestAsk() }
func (e *Exchange) MidPrice() int64 { return e.book.MidPrice() }

// LastPrice is the most recent trade price, or the opening price before
// any trade.
func (e *Exchange) LastPrice() int64 { return e.lastPrice }

// HighestPrice is the highest trade price seen, 0 before any trade.
func (e *Exchange) HighestPrice() int64 { return e.highestPrice }

// LowestPrice is the lowest trade price seen, 0 before any trade.
func (e *Exchange) LowestPrice() int64 { return e.lowestPrice }

// ValueProcessed is the total traded value in cents.
func (e *Exchange) ValueProcessed() int64 { return e.valueProcessed }

// SharesTraded is the total quantity matched.
func (e *Exchange) SharesTraded() int64 { return e.sharesTraded }

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
