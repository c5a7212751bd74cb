package orderbook

import (
	"time"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

type OrderType int

const (
	Limit OrderType = iota
	Market
)

func (t OrderType) String() string {
	if t == Market {
		return "market"
	}
	return "limit"
}

// Order is a single buy or sell intent. IDs are assigned by the caller so
// an owner can be recovered from the ID alone; the book generates one only
// as a fallback.
type Order struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Side      Side      `json:"side"`
	Type      OrderType `json:"type"`
	Price     int64     `json:"price"` // cents; ignored for market orders
	Quantity  int64     `json:"quantity"`
	Filled    int64     `json:"filled"`
	Timestamp time.Time `json:"timestamp"`
}

func (o *Order) Remaining() int64 {
	return o.Quantity - o.Filled
}

func (o *Order) IsFilled() bool {
	return o.Filled >= o.Quantity
}

// Trade records one match between a buy and a sell order, executed at the
// resting order's price.
type Trade struct {
	ID          string    `json:"id"`
	Price       int64     `json:"price"`
	Quantity    int64     `json:"quantity"`
	BuyOrderID  string    `json:"buyOrderId"`
	SellOrderID string    `json:"sellOrderId"`
	BuyerID     string    `json:"buyerId"`
	SellerID    string    `json:"sellerId"`
	Timestamp   time.Time `json:"timestamp"`
}
