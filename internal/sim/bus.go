// Package sim drives a room's market: it steps the price model, polls
// the bots in a stable order, and fans simulation events out to the
// components that react to them.
package sim

// ClockTick is published once per simulated second while the game runs.
type ClockTick struct {
	Clock    int64 // wall clock surfaced to clients, unix millis
	Elapsed  int   // seconds the game has been running
	TimeLeft int   // seconds until the game ends
}

type clockSub struct {
	id int
	fn func(ClockTick)
}

// Bus fans clock ticks out to subscribers. Handlers run synchronously on
// the simulation loop in subscription order, so factories that mutate
// market state see a deterministic schedule. Unsubscribing mid-publish
// takes effect on the next tick.
type Bus struct {
	nextID int
	subs   []clockSub
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeClock registers fn for clock ticks and returns its
// unsubscribe function.
func (b *Bus) SubscribeClock(fn func(ClockTick)) func() {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, clockSub{id: id, fn: fn})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// PublishClock delivers the tick to all subscribers in order.
func (b *Bus) PublishClock(t ClockTick) {
	// Copy first so a handler subscribing or unsubscribing does not
	// disturb this delivery round.
	subs := make([]clockSub, len(b.subs))
	copy(subs, b.subs)
	for _, s := range subs {
		s.fn(t)
	}
}
