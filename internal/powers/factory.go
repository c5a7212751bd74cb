package powers

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/news"
	"github.com/Benjythebee/stock-sim-server/internal/prices"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

const (
	offerCount    = 3
	maxOffers     = 8
	offerSpacing  = 10 // seconds between briefcases
	offerEndGuard = 10 // seconds before game end with no briefcases

	heritageBaseCents = 100_000 // a flat thousand dollars
	homelessGiftCents = 100
)

var (
	ErrNoOffer       = errors.New("powers: no pending offer")
	ErrBadOfferIndex = errors.New("powers: offer index out of range")
	ErrPowerNotFound = errors.New("powers: power not in inventory")
)

// InventoryItem is the client-facing view of a held power.
type InventoryItem struct {
	ID            string `json:"id"`
	PowerID       string `json:"powerId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	DurationTicks int    `json:"durationTicks"`
}

// Factory owns the power lifecycle for one room: briefcase offers on a
// schedule, per-client inventories, and active timed effects.
type Factory struct {
	env Env
	rng *prices.PRNG

	marks     map[int]bool
	clientIDs func() []string
	onOffer   func(clientID string, offer []Descriptor)

	offers    map[string][]Descriptor
	inventory map[string][]*Power
	active    []*Power
	unsub     func()
	log       zerolog.Logger
}

// NewFactory computes the briefcase schedule for the game duration and
// subscribes to the clock bus. clientIDs is polled when a briefcase
// opens; onOffer delivers each client's three candidates.
func NewFactory(env Env, rng *prices.PRNG, bus *sim.Bus, gameDurationSec int, clientIDs func() []string, onOffer func(string, []Descriptor), log zerolog.Logger) *Factory {
	f := &Factory{
		env:       env,
		rng:       rng,
		marks:     offerSchedule(gameDurationSec),
		clientIDs: clientIDs,
		onOffer:   onOffer,
		offers:    make(map[string][]Descriptor),
		inventory: make(map[string][]*Power),
		log:       log.With().Str("component", "powers").Logger(),
	}
	f.unsub = bus.SubscribeClock(f.onClockTick)
	return f
}

// offerSchedule spreads up to eight briefcase marks over the game,
// spaced at least ten seconds apart and ending at least ten seconds
// before the game does.
func offerSchedule(durationSec int) map[int]bool {
	marks := make(map[int]bool)
	usable := durationSec - offerEndGuard
	if usable < offerSpacing {
		return marks
	}
	n := usable / offerSpacing
	if n > maxOffers {
		n = maxOffers
	}
	step := usable / n
	for k := 1; k <= n; k++ {
		marks[k*step] = true
	}
	return marks
}

func (f *Factory) onClockTick(t sim.ClockTick) {
	f.advance()
	if !f.marks[t.Elapsed] {
		return
	}
	for _, id := range f.clientIDs() {
		offer := f.sampleOffer()
		f.offers[id] = offer
		if f.onOffer != nil {
			f.onOffer(id, offer)
		}
	}
}

// sampleOffer draws three distinct descriptors, each pick weighted by
// the inverse of its rarity.
func (f *Factory) sampleOffer() []Descriptor {
	pool := append([]Descriptor(nil), Catalogue...)
	offer := make([]Descriptor, 0, offerCount)
	for len(offer) < offerCount && len(pool) > 0 {
		total := 0.0
		for _, d := range pool {
			total += 1 / float64(d.Rarity)
		}
		r := f.rng.Float64() * total
		idx := len(pool) - 1
		for i, d := range pool {
			r -= 1 / float64(d.Rarity)
			if r <= 0 {
				idx = i
				break
			}
		}
		offer = append(offer, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return offer
}

// Select resolves a client's answer to a briefcase offer. Instant
// powers fire on the spot; the rest land in the client's inventory.
func (f *Factory) Select(clientID string, index int) (*Power, error) {
	offer, ok := f.offers[clientID]
	if !ok {
		return nil, ErrNoOffer
	}
	if index < 0 || index >= len(offer) {
		return nil, ErrBadOfferIndex
	}
	delete(f.offers, clientID)

	p := f.build(offer[index], clientID)
	f.log.Info().Str("client", clientID).Str("power", p.Def.ID).Msg("power selected")
	if p.Def.IsInstant {
		f.consume(p)
		return p, nil
	}
	f.inventory[clientID] = append(f.inventory[clientID], p)
	return p, nil
}

// Consume fires a held power by instance id.
func (f *Factory) Consume(clientID, powerID string) (*Power, error) {
	held := f.inventory[clientID]
	for i, p := range held {
		if p.ID != powerID {
			continue
		}
		f.inventory[clientID] = append(held[:i], held[i+1:]...)
		f.log.Info().Str("client", clientID).Str("power", p.Def.ID).Msg("power consumed")
		f.consume(p)
		return p, nil
	}
	return nil, ErrPowerNotFound
}

func (f *Factory) consume(p *Power) {
	if p.onConsume != nil {
		p.onConsume()
	}
	if p.Def.DurationTicks > 0 {
		f.active = append(f.active, p)
	} else {
		f.end(p)
	}
}

// advance ticks every active power, ending those whose duration has
// elapsed. Iterates over a copy so effect callbacks cannot disturb
// the pass.
func (f *Factory) advance() {
	running := make([]*Power, len(f.active))
	copy(running, f.active)
	f.active = f.active[:0]
	for _, p := range running {
		p.ticksElapsed++
		if p.onTick != nil {
			p.onTick()
		}
		if p.ticksElapsed >= p.Def.DurationTicks {
			f.end(p)
			continue
		}
		f.active = append(f.active, p)
	}
}

// end runs a power's onEnd exactly once.
func (f *Factory) end(p *Power) {
	if p.ended {
		return
	}
	p.ended = true
	if p.onEnd != nil {
		p.onEnd()
	}
}

// Inventory returns the client-facing view of a client's held powers.
func (f *Factory) Inventory(clientID string) []InventoryItem {
	held := f.inventory[clientID]
	items := make([]InventoryItem, 0, len(held))
	for _, p := range held {
		items = append(items, InventoryItem{
			ID:            p.ID,
			PowerID:       p.Def.ID,
			Title:         p.Def.Title,
			Description:   p.Def.Description,
			DurationTicks: p.Def.DurationTicks,
		})
	}
	return items
}

// PendingOffer returns a client's unanswered briefcase, if any.
func (f *Factory) PendingOffer(clientID string) []Descriptor {
	return f.offers[clientID]
}

// RemoveClient drops a departed client's offer and inventory. Powers
// it already consumed keep running.
func (f *Factory) RemoveClient(clientID string) {
	delete(f.offers, clientID)
	delete(f.inventory, clientID)
}

// ActiveCount reports the number of powers still ticking.
func (f *Factory) ActiveCount() int { return len(f.active) }

// Dispose detaches from the clock bus and ends every active power so
// their restore effects run even when the game ends mid-power.
func (f *Factory) Dispose() {
	if f.unsub != nil {
		f.unsub()
		f.unsub = nil
	}
	for _, p := range f.active {
		f.end(p)
	}
	f.active = nil
}

// build binds a descriptor's effect closures to the initiating client.
func (f *Factory) build(def Descriptor, initiator string) *Power {
	p := &Power{ID: uuid.New().String(), Def: def, OwnerID: initiator}
	switch def.ID {
	case "volatility-storm":
		var prev float64
		p.onConsume = func() {
			g := f.env.Generator()
			prev = g.Volatility()
			next := prev * 4
			if next > 1 {
				next = 1
			}
			g.SetVolatility(next)
			f.env.NotifyAll("warning", def.Title, "Market volatility has exploded.")
		}
		p.onEnd = func() {
			f.env.Generator().SetVolatility(prev)
		}
	case "rumor-mill":
		p.onConsume = func() {
			f.env.InjectNews(news.NewItem(
				"Rumor Mill",
				"Whispers on the trading floor move the market.",
				0,
				func() { f.env.Generator().Shock(f.rng.Float64()*5, prices.DefaultShockTicks) },
				nil, nil))
		}
	case "cash-heritage":
		p.onConsume = func() {
			grant := heritageBaseCents + (int64(f.rng.Float64()*float64(f.env.StartingCashCents()/100)))*100
			f.env.GrantCash(initiator, grant)
			f.env.NotifyAll("info", def.Title, "Someone just inherited a fortune.")
		}
	case "the-homeless-gift":
		p.onConsume = func() {
			f.env.GrantCash(initiator, homelessGiftCents)
			f.env.NotifyClient(initiator, "info", def.Title, "You received one dollar.")
		}
	case "the-hacker-ddos":
		var affected []string
		p.onConsume = func() {
			affected = f.env.DisableOthers(initiator)
		}
		p.onEnd = func() {
			f.env.EnableClients(affected)
			for _, id := range affected {
				f.env.NotifyClient(id, "info", def.Title, "Your connection has recovered.")
			}
		}
	}
	return p
}
