// Package orderbook implements the in-memory matching engine behind each
// room's market. One book handles one asset: price levels keep orders in
// time priority, incoming orders match against the far side, and trades
// always execute at the resting order's price.
package orderbook

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// tradeLogCap bounds the retained trade history per book.
const tradeLogCap = 10000

var (
	ErrInvalidQuantity = errors.New("order quantity must be positive")
	ErrInvalidPrice    = errors.New("limit price must be positive")
)

// PriceLevel holds all orders resting at a specific price, oldest first.
type PriceLevel struct {
	Price  int64
	Orders []*Order
}

func (pl *PriceLevel) TotalQuantity() int64 {
	var total int64
	for _, o := range pl.Orders {
		total += o.Remaining()
	}
	return total
}

// Book is an in-memory order book for a single asset.
type Book struct {
	Symbol string

	mu     sync.RWMutex
	bids   []*PriceLevel // sorted descending, best bid first
	asks   []*PriceLevel // sorted ascending, best ask first
	orders map[string]*Order

	trades []Trade
}

func New(symbol string) *Book {
	return &Book{
		Symbol: symbol,
		bids:   make([]*PriceLevel, 0),
		asks:   make([]*PriceLevel, 0),
		orders: make(map[string]*Order),
		trades: make([]Trade, 0),
	}
}

// Submit matches an order against the book and returns the resulting
// trades in execution order. An unfilled limit remainder rests on the
// book; a market remainder is discarded.
func (b *Book) Submit(order *Order) ([]Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if order.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if order.Type == Limit && order.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now()
	}

	var trades []Trade
	if order.Type == Market {
		trades = b.matchMarketOrder(order)
	} else {
		trades = b.matchLimitOrder(order)
	}

	if order.Type == Limit && !order.IsFilled() {
		b.addToBook(order)
	}

	return trades, nil
}

func (b *Book) matchMarketOrder(order *Order) []Trade {
	var trades []Trade

	if order.Side == Buy {
		for len(b.asks) > 0 && !order.IsFilled() {
			level := b.asks[0]
			trades = append(trades, b.matchAtLevel(order, level)...)
			if len(level.Orders) == 0 {
				b.asks = b.asks[1:]
			}
		}
	} else {
		for len(b.bids) > 0 && !order.IsFilled() {
			level := b.bids[0]
			trades = append(trades, b.matchAtLevel(order, level)...)
			if len(level.Orders) == 0 {
				b.bids = b.bids[1:]
			}
		}
	}

	return trades
}

func (b *Book) matchLimitOrder(order *Order) []Trade {
	var trades []Trade

	if order.Side == Buy {
		for len(b.asks) > 0 && !order.IsFilled() {
			level := b.asks[0]
			if level.Price > order.Price {
				break
			}
			trades = append(trades, b.matchAtLevel(order, level)...)
			if len(level.Orders) == 0 {
				b.asks = b.asks[1:]
			}
		}
	} else {
		for len(b.bids) > 0 && !order.IsFilled() {
			level := b.bids[0]
			if level.Price < order.Price {
				break
			}
			trades = append(trades, b.matchAtLevel(order, level)...)
			if len(level.Orders) == 0 {
				b.bids = b.bids[1:]
			}
		}
	}

	return trades
}

func (b *Book) matchAtLevel(incoming *Order, level *PriceLevel) []Trade {
	var trades []Trade

	for len(level.Orders) > 0 && !incoming.IsFilled() {
		resting := level.Orders[0]
		matchQty := min(incoming.Remaining(), resting.Remaining())

		incoming.Filled += matchQty
		resting.Filled += matchQty

		var buyOrder, sellOrder *Order
		if incoming.Side == Buy {
			buyOrder, sellOrder = incoming, resting
		} else {
			buyOrder, sellOrder = resting, incoming
		}

		trade := Trade{
			ID:          uuid.New().String(),
			Price:       level.Price, // resting order's price wins
			Quantity:    matchQty,
			BuyOrderID:  buyOrder.ID,
			SellOrderID: sellOrder.ID,
			BuyerID:     buyOrder.OwnerID,
			SellerID:    sellOrder.OwnerID,
			Timestamp:   time.Now(),
		}
		trades = append(trades, trade)
		b.logTrade(trade)

		if resting.IsFilled() {
			delete(b.orders, resting.ID)
			level.Orders = level.Orders[1:]
		}
	}

	return trades
}

func (b *Book) logTrade(t Trade) {
	b.trades = append(b.trades, t)
	if len(b.trades) > tradeLogCap {
		b.trades = b.trades[len(b.trades)-tradeLogCap:]
	}
}

func (b *Book) addToBook(order *Order) {
	b.orders[order.ID] = order

	if order.Side == Buy {
		b.insertBid(order)
	} else {
		b.insertAsk(order)
	}
}

func (b *Book) insertBid(order *Order) {
	for i, level := range b.bids {
		if level.Price == order.Price {
			level.Orders = append(level.Orders, order)
			return
		}
		if level.Price < order.Price {
			newLevel := &PriceLevel{Price: order.Price, Orders: []*Order{order}}
			b.bids = append(b.bids[:i], append([]*PriceLevel{newLevel}, b.bids[i:]...)...)
			return
		}
	}
	b.bids = append(b.bids, &PriceLevel{Price: order.Price, Orders: []*Order{order}})
}

func (b *Book) insertAsk(order *Order) {
	for i, level := range b.asks {
		if level.Price == order.Price {
			level.Orders = append(level.Orders, order)
			return
		}
		if level.Price > order.Price {
			newLevel := &PriceLevel{Price: order.Price, Orders: []*Order{order}}
			b.asks = append(b.asks[:i], append([]*PriceLevel{newLevel}, b.asks[i:]...)...)
			return
		}
	}
	b.asks = append(b.asks, &PriceLevel{Price: order.Price, Orders: []*Order{order}})
}

// Cancel removes a resting order and returns it so the caller can release
// whatever it had reserved against the remaining quantity.
func (b *Book) Cancel(orderID string) (*Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, exists := b.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("order not found: %s", orderID)
	}

	delete(b.orders, orderID)

	if order.Side == Buy {
		b.removeFromLevels(order, &b.bids)
	} else {
		b.removeFromLevels(order, &b.asks)
	}

	return order, nil
}

func (b *Book) removeFromLevels(order *Order, levels *[]*PriceLevel) {
	for i, level := range *levels {
		if level.Price == order.Price {
			for j, o := range level.Orders {
				if o.ID == order.ID {
					level.Orders = append(level.Orders[:j], level.Orders[j+1:]...)
					break
				}
			}
			if len(level.Orders) == 0 {
				*levels = append((*levels)[:i], (*levels)[i+1:]...)
			}
			return
		}
	}
}

// GetOrder returns a resting order by ID.
func (b *Book) GetOrder(orderID string) (*Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	order, exists := b.orders[orderID]
	return order, exists
}

// BookSnapshot is an aggregated view of the book, bids best-first and
// asks best-first.
type BookSnapshot struct {
	Symbol string          `json:"symbol"`
	Bids   []LevelSnapshot `json:"bids"`
	Asks   []LevelSnapshot `json:"asks"`
}

type LevelSnapshot struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// BestBid returns the best bid level, or zero values when empty.
func (s BookSnapshot) BestBid() (price, qty int64) {
	if len(s.Bids) == 0 {
		return 0, 0
	}
	return s.Bids[0].Price, s.Bids[0].Quantity
}

// BestAsk returns the best ask level, or zero values when empty.
func (s BookSnapshot) BestAsk() (price, qty int64) {
	if len(s.Asks) == 0 {
		return 0, 0
	}
	return s.Asks[0].Price, s.Asks[0].Quantity
}

func (b *Book) Snapshot() BookSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := BookSnapshot{
		Symbol: b.Symbol,
		Bids:   make([]LevelSnapshot, len(b.bids)),
		Asks:   make([]LevelSnapshot, len(b.asks)),
	}

	for i, level := range b.bids {
		snap.Bids[i] = LevelSnapshot{
			Price:    level.Price,
			Quantity: level.TotalQuantity(),
		}
	}

	for i, level := range b.asks {
		snap.Asks[i] = LevelSnapshot{
			Price:    level.Price,
			Quantity: level.TotalQuantity(),
		}
	}

	return snap
}

// Depth returns [price, totalQuantity] pairs per level, bids descending
// and asks ascending. This is the shape price movement broadcasts carry.
func (b *Book) Depth() (bids, asks [][2]int64) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = make([][2]int64, len(b.bids))
	for i, level := range b.bids {
		bids[i] = [2]int64{level.Price, level.TotalQuantity()}
	}
	asks = make([][2]int64, len(b.asks))
	for i, level := range b.asks {
		asks[i] = [2]int64{level.Price, level.TotalQuantity()}
	}
	return bids, asks
}

// RecentTrades returns the last n trades.
func (b *Book) RecentTrades(n int) []Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > len(b.trades) {
		n = len(b.trades)
	}
	start := len(b.trades) - n
	result := make([]Trade, n)
	copy(result, b.trades[start:])
	return result
}

// BestBid returns the highest bid price, or 0 if no bids.
func (b *Book) BestBid() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.bids) == 0 {
		return 0
	}
	return b.bids[0].Price
}

// BestAsk returns the lowest ask price, or 0 if no asks.
func (b *Book) BestAsk() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.asks) == 0 {
		return 0
	}
	return b.asks[0].Price
}

// MidPrice returns the midpoint between best bid and ask.
func (b *Book) MidPrice() int64 {
	bid := b.BestBid()
	ask := b.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}
