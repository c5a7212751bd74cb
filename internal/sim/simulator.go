package sim

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/market"
	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/prices"
)

const (
	// TickInterval is the market step cadence.
	TickInterval = 200 * time.Millisecond
	// ClockInterval is the game clock cadence.
	ClockInterval = time.Second

	driftSegments = 10
	driftMinGap   = 8 // seconds between intrinsic drifts, and before game end
	driftPct      = 0.05
)

// MarketView is the slice of market state a bot sees when polled.
type MarketView struct {
	Price     int64   // last trade price, cents
	Intrinsic int64   // fundamental value, cents
	Guide     int64   // model guide price, cents
	History   []int64 // recent guide prices, newest last
	Book      orderbook.BookSnapshot
	Now       time.Time
}

// Bot is anything the simulator polls each market tick. MakeDecision
// returns true when the bot submitted an order, meaning the market price
// may have moved.
type Bot interface {
	ID() string
	MakeDecision(view MarketView) bool
}

// Simulator steps one room's market. It owns the price generator and the
// bot list, and surfaces everything the room reacts to through callback
// fields set before the first tick.
//
// The simulator does no scheduling of its own: the room loop calls
// TickMarket every 200ms and TickClock every second, so all mutation
// happens on that single goroutine.
type Simulator struct {
	// OnPrice fires when bot activity changed the market price, at most
	// once per market tick.
	OnPrice func(price int64)
	// OnDebugPrices fires every market tick with the raw model pair.
	OnDebugPrices func(intrinsic, guide int64)
	// OnClockTick fires every clock tick after bus subscribers ran.
	OnClockTick func(t ClockTick)
	// OnEnd fires once when the game duration elapses.
	OnEnd func()

	gen  *prices.Generator
	ex   *market.Exchange
	bots []Bot
	bus  *Bus

	gameDuration int // seconds
	totalTime    int
	clock        int64 // unix millis shown to clients
	paused       bool
	ended        bool

	driftMarks map[int]bool
	lastPrice  int64

	snapshot orderbook.BookSnapshot

	log zerolog.Logger
}

// NewSimulator builds a paused simulator. gameDuration is in seconds.
func NewSimulator(gen *prices.Generator, ex *market.Exchange, bots []Bot, bus *Bus, gameDuration int, log zerolog.Logger) *Simulator {
	return &Simulator{
		gen:          gen,
		ex:           ex,
		bots:         bots,
		bus:          bus,
		gameDuration: gameDuration,
		paused:       true,
		driftMarks:   driftSchedule(gameDuration),
		lastPrice:    ex.LastPrice(),
		log:          log.With().Str("component", "simulator").Logger(),
	}
}

// driftSchedule splits the game into roughly driftSegments windows and
// returns the elapsed-second marks at which the intrinsic value drifts.
// Marks stay at least driftMinGap apart and stop driftMinGap seconds
// before the end.
func driftSchedule(durationSec int) map[int]bool {
	marks := make(map[int]bool)
	usable := durationSec - driftMinGap
	if usable <= driftMinGap {
		return marks
	}
	step := usable / driftSegments
	if step < driftMinGap {
		step = driftMinGap
	}
	for t := step; t <= usable; t += step {
		marks[t] = true
	}
	return marks
}

// Bus returns the clock bus factories subscribe to.
func (s *Simulator) Bus() *Bus { return s.bus }

// Pause halts both tick paths. Idempotent.
func (s *Simulator) Pause() { s.paused = true }

// Resume restarts the simulation and pins the surfaced clock to now.
func (s *Simulator) Resume(now time.Time) {
	if s.ended {
		return
	}
	s.paused = false
	s.clock = now.UnixMilli()
}

func (s *Simulator) IsPaused() bool { return s.paused }
func (s *Simulator) Ended() bool    { return s.ended }

// Clock returns the surfaced clock in unix millis.
func (s *Simulator) Clock() int64 { return s.clock }

// TimeLeft returns the seconds remaining in the game.
func (s *Simulator) TimeLeft() int {
	left := s.gameDuration - s.totalTime
	if left < 0 {
		return 0
	}
	return left
}

// MarketPrice is the current market price: the last trade, or the
// opening price before any trade.
func (s *Simulator) MarketPrice() int64 { return s.ex.LastPrice() }

// NotePrice records a price the room already broadcast through another
// path, so the next tick does not re-emit it.
func (s *Simulator) NotePrice(price int64) { s.lastPrice = price }

// Snapshot returns the book snapshot cached at the last market tick.
func (s *Simulator) Snapshot() orderbook.BookSnapshot { return s.snapshot }

// TickMarket advances the price model one step and polls every bot.
// The model pair for the tick is computed before any bot observes it;
// fills land synchronously, so each bot sees the trades of the bots
// polled before it.
func (s *Simulator) TickMarket(now time.Time) {
	if s.paused || s.ended {
		return
	}

	s.snapshot = s.ex.Snapshot()
	intrinsic, guide := s.gen.Tick()
	if s.OnDebugPrices != nil {
		s.OnDebugPrices(intrinsic, guide)
	}

	view := MarketView{
		Intrinsic: intrinsic,
		Guide:     guide,
		History:   s.gen.History(),
		Book:      s.snapshot,
		Now:       now,
	}
	for _, b := range s.bots {
		view.Price = s.ex.LastPrice()
		s.pollBot(b, view)
	}

	if px := s.ex.LastPrice(); px != s.lastPrice {
		s.lastPrice = px
		if s.OnPrice != nil {
			s.OnPrice(px)
		}
	}
}

// pollBot isolates one bot's decision; a panicking bot is logged and the
// tick carries on with the rest.
func (s *Simulator) pollBot(b Bot, view MarketView) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("bot", b.ID()).Interface("panic", r).Msg("bot decision panicked")
		}
	}()
	b.MakeDecision(view)
}

// TickClock advances the game clock one second: publishes to the bus,
// applies any scheduled intrinsic drift, and ends the game when the
// duration is up.
func (s *Simulator) TickClock(now time.Time) {
	if s.paused || s.ended {
		return
	}

	s.clock = now.UnixMilli()
	s.totalTime++

	tick := ClockTick{
		Clock:    s.clock,
		Elapsed:  s.totalTime,
		TimeLeft: s.TimeLeft(),
	}
	s.bus.PublishClock(tick)
	if s.OnClockTick != nil {
		s.OnClockTick(tick)
	}

	if s.driftMarks[s.totalTime] {
		s.gen.DriftIntrinsicValue(driftPct)
	}

	if s.totalTime >= s.gameDuration {
		s.paused = true
		s.ended = true
		if s.OnEnd != nil {
			s.OnEnd()
		}
	}
}
