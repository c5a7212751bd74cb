package bots

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/market"
	"github.com/Benjythebee/stock-sim-server/internal/prices"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

const (
	// DefaultStartingShares seeds each bot with inventory so the ask
	// side of a fresh book is not empty.
	DefaultStartingShares = 100
	// DefaultOrderSize is the standing size bots trade in.
	DefaultOrderSize = 5

	// botSeedStride separates the per-bot random streams derived from
	// the room seed.
	botSeedStride = 7919
)

// SpawnConfig describes the roster of bots for one room.
type SpawnConfig struct {
	Count          int
	Selection      []Kind // empty means every kind is eligible
	StartingCash   int64  // cents
	StartingShares int64
	OrderSize      int64
	Seed           int64
}

// Trader is a bot together with the participant doing its accounting.
type Trader interface {
	sim.Bot
	Kind() Kind
	Participant() *market.Participant
}

// Spawn builds cfg.Count bots against the exchange. Kinds are drawn
// from the selection with a PRNG derived from the room seed, so the
// same seed always produces the same roster.
func Spawn(cfg SpawnConfig, ex *market.Exchange, log zerolog.Logger) []Trader {
	if cfg.Count <= 0 {
		return nil
	}
	if cfg.StartingShares <= 0 {
		cfg.StartingShares = DefaultStartingShares
	}
	if cfg.OrderSize <= 0 {
		cfg.OrderSize = DefaultOrderSize
	}

	kinds := eligibleKinds(cfg.Selection)
	pick := prices.NewPRNG(cfg.Seed)

	traders := make([]Trader, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		kind := kinds[pick.Intn(len(kinds))]
		id := fmt.Sprintf("bot-%s-%d", kind, i+1)
		desc, _ := DescriptorFor(kind)
		name := fmt.Sprintf("%s %d", desc.Label, i+1)

		blog := log.With().Str("bot", id).Logger()
		part := market.NewParticipant(id, name, cfg.StartingCash, cfg.StartingShares, ex, blog)
		b := base{
			part: part,
			rng:  prices.NewPRNG(cfg.Seed + int64(i+1)*botSeedStride),
			kind: kind,
			size: cfg.OrderSize,
		}
		traders = append(traders, build(kind, b, cfg.StartingShares))
	}
	return traders
}

// eligibleKinds filters the selection down to known kinds, falling
// back to the full catalogue when nothing valid remains.
func eligibleKinds(selection []Kind) []Kind {
	var kinds []Kind
	for _, k := range selection {
		if _, ok := DescriptorFor(k); ok {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		for _, d := range Catalog {
			kinds = append(kinds, d.Kind)
		}
	}
	return kinds
}

func build(kind Kind, b base, startingShares int64) Trader {
	switch kind {
	case KindMomentum:
		return newMomentumBot(b)
	case KindMeanReversion:
		return newMeanReversionBot(b)
	case KindInformed:
		return newInformedBot(b)
	case KindPartiallyInformed:
		return newPartiallyInformedBot(b)
	case KindLiquidity:
		return newLiquidityBot(b, startingShares)
	case KindSpread:
		return newSpreadBot(b)
	default:
		return newRandomBot(b)
	}
}
