// Package powers implements briefcase powers: timed offers of market
// or player effects that clients collect and consume mid-game. The
// factory owns offer scheduling, inventories, and the lifecycle of
// consumed powers with a duration.
package powers

import (
	"github.com/Benjythebee/stock-sim-server/internal/news"
	"github.com/Benjythebee/stock-sim-server/internal/prices"
)

// Descriptor is the public description of a power.
type Descriptor struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Rarity        int    `json:"rarity"` // offer weight is 1/rarity
	Type          string `json:"type"`   // market, client or others
	IsInstant     bool   `json:"isInstant"`
	DurationTicks int    `json:"durationTicks"`
}

// Catalogue lists every obtainable power.
var Catalogue = []Descriptor{
	{
		ID:            "volatility-storm",
		Title:         "Volatility Storm",
		Description:   "Quadruples market volatility for twenty seconds.",
		Rarity:        3,
		Type:          "market",
		DurationTicks: 20,
	},
	{
		ID:          "rumor-mill",
		Title:       "Rumor Mill",
		Description: "Starts a rumor that jolts the market in a random direction.",
		Rarity:      2,
		Type:        "market",
	},
	{
		ID:          "cash-heritage",
		Title:       "Cash Heritage",
		Description: "A distant relative leaves you a sudden fortune.",
		Rarity:      4,
		Type:        "client",
		IsInstant:   true,
	},
	{
		ID:          "the-homeless-gift",
		Title:       "The Homeless Gift",
		Description: "A stranger hands you a single dollar. Every bit counts.",
		Rarity:      1,
		Type:        "client",
		IsInstant:   true,
	},
	{
		ID:            "the-hacker-ddos",
		Title:         "The Hacker",
		Description:   "Knocks every other trader offline for fifteen seconds.",
		Rarity:        5,
		Type:          "others",
		DurationTicks: 15,
	},
}

// DescriptorFor returns the catalogue entry for a power id.
func DescriptorFor(id string) (Descriptor, bool) {
	for _, d := range Catalogue {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Env is the slice of the room a power effect may touch. The room
// implements it; powers never hold the room itself.
type Env interface {
	Generator() *prices.Generator
	InjectNews(it *news.Item)
	GrantCash(clientID string, cents int64)
	DisableOthers(initiatorID string) []string
	EnableClients(ids []string)
	NotifyAll(level, title, description string)
	NotifyClient(id, level, title, description string)
	StartingCashCents() int64
}

// Power is one instantiated power, bound to the client who selected
// it. Consumed powers with a duration keep ticking until onEnd fires,
// which happens exactly once.
type Power struct {
	ID      string // instance id
	Def     Descriptor
	OwnerID string

	ticksElapsed int
	ended        bool

	onConsume func()
	onTick    func()
	onEnd     func()
}
