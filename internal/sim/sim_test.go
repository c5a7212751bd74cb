package sim

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/market"
	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/prices"
)

type stubBot struct {
	id     string
	calls  int
	decide func(v MarketView) bool
}

func (b *stubBot) ID() string { return b.id }

func (b *stubBot) MakeDecision(v MarketView) bool {
	b.calls++
	if b.decide != nil {
		return b.decide(v)
	}
	return false
}

func newTestSim(bots []Bot, durationSec int) (*Simulator, *market.Exchange) {
	gen := prices.NewGenerator(prices.Config{OpeningPrice: 100, Volatility: 0.05, MeanReversion: 0.1}, prices.NewPRNG(42))
	ex := market.NewExchange("AAPL", 10000, zerolog.Nop())
	s := NewSimulator(gen, ex, bots, NewBus(), durationSec, zerolog.Nop())
	return s, ex
}

func TestBusSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.SubscribeClock(func(ClockTick) { got = append(got, "first") })
	bus.SubscribeClock(func(ClockTick) { got = append(got, "second") })
	bus.SubscribeClock(func(ClockTick) { got = append(got, "third") })

	bus.PublishClock(ClockTick{})
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery order %v, want %v", got, want)
		}
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	count := 0
	unsub := bus.SubscribeClock(func(ClockTick) { count++ })
	bus.PublishClock(ClockTick{})
	unsub()
	unsub() // second call is a no-op
	bus.PublishClock(ClockTick{})
	if count != 1 {
		t.Errorf("handler ran %d times, want 1", count)
	}
}

func TestBusUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	var unsub func()
	ran := 0
	unsub = bus.SubscribeClock(func(ClockTick) {
		ran++
		unsub()
	})
	after := 0
	bus.SubscribeClock(func(ClockTick) { after++ })

	bus.PublishClock(ClockTick{})
	bus.PublishClock(ClockTick{})

	if ran != 1 {
		t.Errorf("self-unsubscribing handler ran %d times, want 1", ran)
	}
	if after != 2 {
		t.Errorf("later handler ran %d times, want 2 (same-round delivery preserved)", after)
	}
}

func TestSimulatorStartsPaused(t *testing.T) {
	bot := &stubBot{id: "b1"}
	s, _ := newTestSim([]Bot{bot}, 60)

	if !s.IsPaused() {
		t.Fatal("new simulator should be paused")
	}
	s.TickMarket(time.Now())
	s.TickClock(time.Now())
	if bot.calls != 0 {
		t.Errorf("bot polled %d times while paused, want 0", bot.calls)
	}
}

func TestResumeSetsClock(t *testing.T) {
	s, _ := newTestSim(nil, 60)
	now := time.Now()
	s.Resume(now)
	if s.IsPaused() {
		t.Fatal("simulator still paused after Resume")
	}
	if s.Clock() != now.UnixMilli() {
		t.Errorf("clock %d, want %d", s.Clock(), now.UnixMilli())
	}
}

func TestBotsPolledInOrder(t *testing.T) {
	var order []string
	mk := func(id string) *stubBot {
		return &stubBot{id: id, decide: func(MarketView) bool {
			order = append(order, id)
			return false
		}}
	}
	bots := []Bot{mk("a"), mk("b"), mk("c")}
	s, _ := newTestSim(bots, 60)
	s.Resume(time.Now())

	s.TickMarket(time.Now())
	s.TickMarket(time.Now())

	want := []string{"a", "b", "c", "a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("polled %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("polled %v, want stable order %v", order, want)
		}
	}
}

func TestPanickingBotIsolated(t *testing.T) {
	bad := &stubBot{id: "bad", decide: func(MarketView) bool { panic("boom") }}
	good := &stubBot{id: "good"}
	s, _ := newTestSim([]Bot{bad, good}, 60)
	s.Resume(time.Now())

	s.TickMarket(time.Now())
	s.TickMarket(time.Now())

	if good.calls != 2 {
		t.Errorf("bot after the panicking one polled %d times, want 2", good.calls)
	}
}

func TestViewComputedBeforeDecisions(t *testing.T) {
	var seenHistory int
	bot := &stubBot{id: "b1", decide: func(v MarketView) bool {
		seenHistory = len(v.History)
		if v.Intrinsic <= 0 || v.Guide <= 0 {
			t.Errorf("bot saw unset model pair: %d/%d", v.Intrinsic, v.Guide)
		}
		return false
	}}
	s, _ := newTestSim([]Bot{bot}, 60)
	s.Resume(time.Now())

	s.TickMarket(time.Now())
	if seenHistory != 1 {
		t.Errorf("bot saw %d history samples on first tick, want 1 (tick ran first)", seenHistory)
	}
}

func TestOnPriceOnlyOnChange(t *testing.T) {
	ex := market.NewExchange("AAPL", 10000, zerolog.Nop())
	seller := market.NewParticipant("s", "s", 0, 100, ex, zerolog.Nop())
	buyer := market.NewParticipant("b", "b", 10000000, 0, ex, zerolog.Nop())

	step := 0
	trader := &stubBot{id: "trader", decide: func(MarketView) bool {
		step++
		if step == 2 {
			seller.PlaceSell(10100, 5, orderbook.Limit)
			buyer.PlaceBuy(10100, 5, orderbook.Limit)
			return true
		}
		return false
	}}

	gen := prices.NewGenerator(prices.Config{OpeningPrice: 100, Volatility: 0.05}, prices.NewPRNG(42))
	s := NewSimulator(gen, ex, []Bot{trader}, NewBus(), 60, zerolog.Nop())

	var emitted []int64
	s.OnPrice = func(px int64) { emitted = append(emitted, px) }
	s.Resume(time.Now())

	s.TickMarket(time.Now()) // no trade
	s.TickMarket(time.Now()) // trade at 10100
	s.TickMarket(time.Now()) // no trade, price unchanged

	if len(emitted) != 1 || emitted[0] != 10100 {
		t.Errorf("emitted %v, want exactly [10100]", emitted)
	}
}

func TestNotePriceSuppressesEmission(t *testing.T) {
	ex := market.NewExchange("AAPL", 10000, zerolog.Nop())
	seller := market.NewParticipant("s", "s", 0, 100, ex, zerolog.Nop())
	buyer := market.NewParticipant("b", "b", 10000000, 0, ex, zerolog.Nop())

	gen := prices.NewGenerator(prices.Config{OpeningPrice: 100, Volatility: 0.05}, prices.NewPRNG(42))
	s := NewSimulator(gen, ex, nil, NewBus(), 60, zerolog.Nop())

	fired := 0
	s.OnPrice = func(int64) { fired++ }
	s.Resume(time.Now())

	// A client trade handled outside the tick loop, already broadcast
	seller.PlaceSell(10100, 5, orderbook.Limit)
	buyer.PlaceBuy(10100, 5, orderbook.Limit)
	s.NotePrice(10100)

	s.TickMarket(time.Now())
	if fired != 0 {
		t.Errorf("OnPrice fired %d times for an already-broadcast price, want 0", fired)
	}
}

func TestClockTickAdvancesAndEnds(t *testing.T) {
	s, _ := newTestSim(nil, 3)
	s.Resume(time.Now())

	var ticks []ClockTick
	s.OnClockTick = func(t ClockTick) { ticks = append(ticks, t) }
	ends := 0
	s.OnEnd = func() { ends++ }

	for i := 0; i < 6; i++ {
		s.TickClock(time.Now())
	}

	if len(ticks) != 3 {
		t.Fatalf("got %d clock ticks, want 3 (game over after)", len(ticks))
	}
	if ticks[0].Elapsed != 1 || ticks[0].TimeLeft != 2 {
		t.Errorf("first tick elapsed/left = %d/%d, want 1/2", ticks[0].Elapsed, ticks[0].TimeLeft)
	}
	if ticks[2].TimeLeft != 0 {
		t.Errorf("final tick timeLeft = %d, want 0", ticks[2].TimeLeft)
	}
	if ends != 1 {
		t.Errorf("OnEnd fired %d times, want exactly 1", ends)
	}
	if !s.Ended() || !s.IsPaused() {
		t.Error("simulator should be ended and paused after the duration")
	}
	// Ended simulators cannot resume
	s.Resume(time.Now())
	if !s.IsPaused() {
		t.Error("ended simulator resumed")
	}
}

func TestBusReceivesTicksBeforeCallback(t *testing.T) {
	s, _ := newTestSim(nil, 60)
	var order []string
	s.Bus().SubscribeClock(func(ClockTick) { order = append(order, "bus") })
	s.OnClockTick = func(ClockTick) { order = append(order, "callback") }
	s.Resume(time.Now())

	s.TickClock(time.Now())
	if len(order) != 2 || order[0] != "bus" || order[1] != "callback" {
		t.Errorf("delivery order %v, want [bus callback]", order)
	}
}

func TestDriftScheduleSpacing(t *testing.T) {
	marks := driftSchedule(300)
	if len(marks) == 0 {
		t.Fatal("no drift marks for a 5 minute game")
	}
	var times []int
	for m := range marks {
		times = append(times, m)
	}
	for _, m := range times {
		if m > 300-driftMinGap {
			t.Errorf("mark %d within %ds of game end", m, driftMinGap)
		}
		for _, n := range times {
			if n != m && abs(n-m) < driftMinGap {
				t.Errorf("marks %d and %d closer than %ds", m, n, driftMinGap)
			}
		}
	}

	if len(driftSchedule(10)) != 0 {
		t.Error("expected no marks for a game too short to drift")
	}
}

func TestIntrinsicDriftsAtMark(t *testing.T) {
	gen := prices.NewGenerator(prices.Config{OpeningPrice: 100, Volatility: 0.05}, prices.NewPRNG(42))
	ex := market.NewExchange("AAPL", 10000, zerolog.Nop())
	s := NewSimulator(gen, ex, nil, NewBus(), 60, zerolog.Nop())
	s.Resume(time.Now())

	mark := 0
	for m := range s.driftMarks {
		if mark == 0 || m < mark {
			mark = m
		}
	}
	if mark == 0 {
		t.Fatal("no drift marks scheduled")
	}

	before := gen.Intrinsic()
	for i := 0; i < mark; i++ {
		s.TickClock(time.Now())
	}
	if gen.Intrinsic() == before {
		t.Errorf("intrinsic unchanged at drift mark %d", mark)
	}
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
