// Package news injects themed market events into a running room.
// Random items fire on a drawn schedule and mutate the price model
// through their callbacks; injected items (from powers) reuse the same
// lifecycle. Durations are counted in clock ticks, one per second.
package news

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/prices"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

const (
	delayFloor  = 15 // seconds
	delaySpread = 30
)

// Item is a single news event. Items are fire-and-forget: created,
// broadcast, advanced once per clock tick, then archived.
type Item struct {
	ID            string
	Title         string
	Description   string
	DurationTicks int

	ticksElapsed int
	exhausted    bool

	onStart func()
	onTick  func()
	onEnd   func()
}

// NewItem builds an item with optional lifecycle callbacks. Any of
// them may be nil.
func NewItem(title, description string, durationTicks int, onStart, onTick, onEnd func()) *Item {
	return &Item{
		ID:            uuid.New().String(),
		Title:         title,
		Description:   description,
		DurationTicks: durationTicks,
		onStart:       onStart,
		onTick:        onTick,
		onEnd:         onEnd,
	}
}

// Broadcast is the payload sent to clients when an item fires.
type Broadcast struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DurationTicks int    `json:"durationTicks"`
	Timestamp     int64  `json:"timestamp"`
}

// Factory owns the news lifecycle for one room. It is driven by the
// room's clock bus, so a paused game advances neither item durations
// nor the random schedule.
type Factory struct {
	gen     *prices.Generator
	rng     *prices.PRNG
	enabled bool
	onFire  func(Broadcast)

	countdown int
	active    []*Item
	archive   map[string]*Item
	unsub     func()
	log       zerolog.Logger
}

// NewFactory wires a factory to the clock bus. onFire receives every
// fired item's broadcast payload.
func NewFactory(gen *prices.Generator, rng *prices.PRNG, bus *sim.Bus, enabled bool, onFire func(Broadcast), log zerolog.Logger) *Factory {
	f := &Factory{
		gen:     gen,
		rng:     rng,
		enabled: enabled,
		onFire:  onFire,
		archive: make(map[string]*Item),
		log:     log.With().Str("component", "news").Logger(),
	}
	f.countdown = f.nextDelay()
	f.unsub = bus.SubscribeClock(f.onClockTick)
	return f
}

func (f *Factory) nextDelay() int {
	return delayFloor + int(f.rng.Float64()*delaySpread)
}

func (f *Factory) onClockTick(t sim.ClockTick) {
	f.advance()
	if !f.enabled {
		return
	}
	f.countdown--
	if f.countdown > 0 {
		return
	}
	f.fireRandom(t.Clock)
	f.countdown = f.nextDelay()
}

// advance moves every live item forward one tick and archives the
// exhausted ones. Iterates over a copy so a callback that injects a
// new item does not disturb the pass.
func (f *Factory) advance() {
	items := make([]*Item, len(f.active))
	copy(items, f.active)
	f.active = f.active[:0]
	for _, it := range items {
		it.ticksElapsed++
		if it.onTick != nil {
			it.onTick()
		}
		if it.ticksElapsed >= it.DurationTicks {
			f.finish(it)
			continue
		}
		f.active = append(f.active, it)
	}
}

func (f *Factory) finish(it *Item) {
	if it.exhausted {
		return
	}
	it.exhausted = true
	if it.onEnd != nil {
		it.onEnd()
	}
	f.archive[it.ID] = it
}

func (f *Factory) fireRandom(clock int64) {
	bp := catalogue[f.rng.Intn(len(catalogue))]
	f.launch(bp.build(f.gen, f.rng), clock)
}

// Inject fires an externally built item, such as one created by a
// power. It runs regardless of whether random news is enabled.
func (f *Factory) Inject(it *Item) {
	f.launch(it, time.Now().UnixMilli())
}

func (f *Factory) launch(it *Item, clock int64) {
	f.log.Info().Str("title", it.Title).Int("durationTicks", it.DurationTicks).Msg("news fired")
	if it.onStart != nil {
		it.onStart()
	}
	if f.onFire != nil {
		f.onFire(Broadcast{
			Title:         it.Title,
			Description:   it.Description,
			DurationTicks: it.DurationTicks,
			Timestamp:     clock,
		})
	}
	if it.DurationTicks <= 0 {
		f.finish(it)
		return
	}
	f.active = append(f.active, it)
}

// Dispose detaches from the clock bus and retires every live item so
// their onEnd effects still run.
func (f *Factory) Dispose() {
	if f.unsub != nil {
		f.unsub()
		f.unsub = nil
	}
	for _, it := range f.active {
		f.finish(it)
	}
	f.active = nil
}

// ActiveCount reports the number of items still running.
func (f *Factory) ActiveCount() int { return len(f.active) }

// ArchivedCount reports the number of retired items.
func (f *Factory) ArchivedCount() int { return len(f.archive) }
