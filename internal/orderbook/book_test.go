package orderbook

import (
	"testing"
)

func TestLimitOrderAddToBook(t *testing.T) {
	book := New("AAPL")

	order := &Order{
		ID:       "order1",
		OwnerID:  "user1",
		Side:     Buy,
		Type:     Limit,
		Price:    10000, // $100.00
		Quantity: 10,
	}

	trades, err := book.Submit(order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected 0 trades, got %d", len(trades))
	}

	snap := book.Snapshot()
	if len(snap.Bids) != 1 {
		t.Fatalf("expected 1 bid level, got %d", len(snap.Bids))
	}
	if snap.Bids[0].Price != 10000 {
		t.Errorf("expected bid price 10000, got %d", snap.Bids[0].Price)
	}
	if snap.Bids[0].Quantity != 10 {
		t.Errorf("expected bid quantity 10, got %d", snap.Bids[0].Quantity)
	}
}

func TestLimitOrderMatching(t *testing.T) {
	book := New("AAPL")

	sell := &Order{
		ID:       "sell1",
		OwnerID:  "seller",
		Side:     Sell,
		Type:     Limit,
		Price:    10000,
		Quantity: 10,
	}
	book.Submit(sell)

	buy := &Order{
		ID:       "buy1",
		OwnerID:  "buyer",
		Side:     Buy,
		Type:     Limit,
		Price:    10000,
		Quantity: 10,
	}
	trades, err := book.Submit(buy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	trade := trades[0]
	if trade.Price != 10000 {
		t.Errorf("expected trade price 10000, got %d", trade.Price)
	}
	if trade.Quantity != 10 {
		t.Errorf("expected trade quantity 10, got %d", trade.Quantity)
	}
	if trade.BuyerID != "buyer" {
		t.Errorf("expected buyer 'buyer', got %s", trade.BuyerID)
	}
	if trade.SellerID != "seller" {
		t.Errorf("expected seller 'seller', got %s", trade.SellerID)
	}

	// Book should be empty
	snap := book.Snapshot()
	if len(snap.Bids) != 0 || len(snap.Asks) != 0 {
		t.Errorf("expected empty book, got %d bids and %d asks", len(snap.Bids), len(snap.Asks))
	}
}

func TestPartialFill(t *testing.T) {
	book := New("AAPL")

	// Sell 20 shares
	book.Submit(&Order{ID: "sell1", OwnerID: "seller", Side: Sell, Type: Limit, Price: 10000, Quantity: 20})

	// Buy only 10 shares
	trades, _ := book.Submit(&Order{ID: "buy1", OwnerID: "buyer", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Quantity != 10 {
		t.Errorf("expected trade quantity 10, got %d", trades[0].Quantity)
	}

	// 10 shares should remain on the ask
	snap := book.Snapshot()
	if len(snap.Asks) != 1 {
		t.Fatalf("expected 1 ask level, got %d", len(snap.Asks))
	}
	if snap.Asks[0].Quantity != 10 {
		t.Errorf("expected 10 remaining, got %d", snap.Asks[0].Quantity)
	}
}

func TestPriceTimePriority(t *testing.T) {
	book := New("AAPL")

	// Two sells at same price - first in should match first
	book.Submit(&Order{ID: "sell1", OwnerID: "seller1", Side: Sell, Type: Limit, Price: 10000, Quantity: 10})
	book.Submit(&Order{ID: "sell2", OwnerID: "seller2", Side: Sell, Type: Limit, Price: 10000, Quantity: 10})

	trades, _ := book.Submit(&Order{ID: "buy1", OwnerID: "buyer", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].SellerID != "seller1" {
		t.Errorf("expected seller1 to match first, got %s", trades[0].SellerID)
	}

	snap := book.Snapshot()
	if len(snap.Asks) != 1 || snap.Asks[0].Quantity != 10 {
		t.Errorf("expected sell2 remaining on book")
	}
}

func TestPricePriority(t *testing.T) {
	book := New("AAPL")

	book.Submit(&Order{ID: "sell1", OwnerID: "expensive", Side: Sell, Type: Limit, Price: 10100, Quantity: 10})
	book.Submit(&Order{ID: "sell2", OwnerID: "cheap", Side: Sell, Type: Limit, Price: 10000, Quantity: 10})

	// Buy at 10100 - should match cheaper sell2 first, at its price
	trades, _ := book.Submit(&Order{ID: "buy1", OwnerID: "buyer", Side: Buy, Type: Limit, Price: 10100, Quantity: 10})

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Price != 10000 {
		t.Errorf("expected trade at 10000, got %d", trades[0].Price)
	}
	if trades[0].SellerID != "cheap" {
		t.Errorf("expected cheap seller to match, got %s", trades[0].SellerID)
	}
}

func TestMarketOrderSweep(t *testing.T) {
	book := New("AAPL")

	book.Submit(&Order{ID: "sell1", OwnerID: "seller1", Side: Sell, Type: Limit, Price: 10000, Quantity: 10})
	book.Submit(&Order{ID: "sell2", OwnerID: "seller2", Side: Sell, Type: Limit, Price: 10100, Quantity: 10})

	// Market buy 15 shares sweeps through both levels
	trades, _ := book.Submit(&Order{ID: "buy1", OwnerID: "buyer", Side: Buy, Type: Market, Quantity: 15})

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Quantity != 10 || trades[0].Price != 10000 {
		t.Errorf("first trade wrong: qty=%d price=%d", trades[0].Quantity, trades[0].Price)
	}
	if trades[1].Quantity != 5 || trades[1].Price != 10100 {
		t.Errorf("second trade wrong: qty=%d price=%d", trades[1].Quantity, trades[1].Price)
	}

	snap := book.Snapshot()
	if len(snap.Asks) != 1 || snap.Asks[0].Quantity != 5 {
		t.Errorf("expected 5 remaining at 10100")
	}
}

func TestMarketOrderEmptyBook(t *testing.T) {
	book := New("AAPL")

	order := &Order{ID: "buy1", OwnerID: "buyer", Side: Buy, Type: Market, Quantity: 10}
	trades, err := book.Submit(order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected 0 trades against an empty book, got %d", len(trades))
	}
	if order.Remaining() != 10 {
		t.Errorf("expected full quantity remaining, got %d", order.Remaining())
	}
	// Market remainders never rest
	if _, ok := book.GetOrder("buy1"); ok {
		t.Error("market order should not rest on the book")
	}
}

func TestSubmitValidation(t *testing.T) {
	book := New("AAPL")

	if _, err := book.Submit(&Order{ID: "bad1", Side: Buy, Type: Limit, Price: 0, Quantity: 10}); err == nil {
		t.Error("expected error for zero limit price")
	}
	if _, err := book.Submit(&Order{ID: "bad2", Side: Buy, Type: Limit, Price: 100, Quantity: 0}); err == nil {
		t.Error("expected error for zero quantity")
	}
	if _, err := book.Submit(&Order{ID: "bad3", Side: Sell, Type: Market, Quantity: -5}); err == nil {
		t.Error("expected error for negative quantity")
	}
}

func TestCancelOrder(t *testing.T) {
	book := New("AAPL")

	book.Submit(&Order{ID: "order1", OwnerID: "user1", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})

	removed, err := book.Cancel("order1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Remaining() != 10 {
		t.Errorf("expected 10 remaining on the cancelled order, got %d", removed.Remaining())
	}

	snap := book.Snapshot()
	if len(snap.Bids) != 0 {
		t.Errorf("expected empty bids after cancel")
	}

	// Cancel again should error
	if _, err := book.Cancel("order1"); err == nil {
		t.Error("expected error canceling non-existent order")
	}
}

func TestCancelAfterPartialFill(t *testing.T) {
	book := New("AAPL")

	book.Submit(&Order{ID: "sell1", OwnerID: "seller", Side: Sell, Type: Limit, Price: 10000, Quantity: 20})
	book.Submit(&Order{ID: "buy1", OwnerID: "buyer", Side: Buy, Type: Limit, Price: 10000, Quantity: 8})

	removed, err := book.Cancel("sell1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Remaining() != 12 {
		t.Errorf("expected 12 remaining after partial fill, got %d", removed.Remaining())
	}
}

func TestBestBidAsk(t *testing.T) {
	book := New("AAPL")

	if book.BestBid() != 0 || book.BestAsk() != 0 {
		t.Error("expected 0 for empty book")
	}

	book.Submit(&Order{ID: "bid1", Side: Buy, Type: Limit, Price: 9900, Quantity: 10})
	book.Submit(&Order{ID: "bid2", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})
	book.Submit(&Order{ID: "ask1", Side: Sell, Type: Limit, Price: 10100, Quantity: 10})
	book.Submit(&Order{ID: "ask2", Side: Sell, Type: Limit, Price: 10200, Quantity: 10})

	if book.BestBid() != 10000 {
		t.Errorf("expected best bid 10000, got %d", book.BestBid())
	}
	if book.BestAsk() != 10100 {
		t.Errorf("expected best ask 10100, got %d", book.BestAsk())
	}
	if book.MidPrice() != 10050 {
		t.Errorf("expected mid 10050, got %d", book.MidPrice())
	}
}

func TestDepth(t *testing.T) {
	book := New("AAPL")

	book.Submit(&Order{ID: "bid1", Side: Buy, Type: Limit, Price: 9900, Quantity: 5})
	book.Submit(&Order{ID: "bid2", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})
	book.Submit(&Order{ID: "bid3", Side: Buy, Type: Limit, Price: 10000, Quantity: 3})
	book.Submit(&Order{ID: "ask1", Side: Sell, Type: Limit, Price: 10100, Quantity: 7})

	bids, asks := book.Depth()
	if len(bids) != 2 {
		t.Fatalf("expected 2 bid levels, got %d", len(bids))
	}
	// Bids descending, quantities aggregated per level
	if bids[0] != [2]int64{10000, 13} {
		t.Errorf("expected best bid level [10000 13], got %v", bids[0])
	}
	if bids[1] != [2]int64{9900, 5} {
		t.Errorf("expected second bid level [9900 5], got %v", bids[1])
	}
	if len(asks) != 1 || asks[0] != [2]int64{10100, 7} {
		t.Errorf("unexpected asks %v", asks)
	}
}

func TestRecentTrades(t *testing.T) {
	book := New("AAPL")

	book.Submit(&Order{ID: "sell1", OwnerID: "seller", Side: Sell, Type: Limit, Price: 10000, Quantity: 30})
	book.Submit(&Order{ID: "buy1", OwnerID: "buyer1", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})
	book.Submit(&Order{ID: "buy2", OwnerID: "buyer2", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})
	book.Submit(&Order{ID: "buy3", OwnerID: "buyer3", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})

	trades := book.RecentTrades(2)
	if len(trades) != 2 {
		t.Fatalf("expected 2 recent trades, got %d", len(trades))
	}
	// Most recent last
	if trades[0].BuyerID != "buyer2" || trades[1].BuyerID != "buyer3" {
		t.Errorf("unexpected trade order")
	}
}

func TestSelfTradeAllowed(t *testing.T) {
	// The engine does not prevent an owner's orders from crossing; the
	// strategies avoid it by checking their own resting orders first.
	book := New("AAPL")

	book.Submit(&Order{ID: "sell1", OwnerID: "user1", Side: Sell, Type: Limit, Price: 10000, Quantity: 10})
	trades, _ := book.Submit(&Order{ID: "buy1", OwnerID: "user1", Side: Buy, Type: Limit, Price: 10000, Quantity: 10})

	if len(trades) != 1 {
		t.Errorf("expected trade (self-trade allowed), got %d trades", len(trades))
	}
}
