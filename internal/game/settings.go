package game

import (
	"github.com/Benjythebee/stock-sim-server/internal/bots"
)

// Settings clamp bounds, applied to admin patches.
const (
	maxBots          = 50
	maxStartingCash  = 999_999_999 // dollars
	minGameDuration  = 1           // minutes
	maxGameDuration  = 60
	minOpeningPrice  = 0.01 // dollars
	maxOpeningPrice  = 10_000
	minVolatilityPct = 0.001
	maxVolatilityPct = 1
)

// Settings configure one room's game. Cash and prices are in dollars on
// this struct; they are converted to cents at the engine boundary.
//
// MarketVolatility is a percent figure. Patched values are coerced into
// [0.001, 1] before storage and the generator receives stored/100, so
// the default of 5 runs the market at 0.05 while any admin-set value
// lands at or below 0.01.
type Settings struct {
	StartingCash     float64  `json:"startingCash"`
	OpeningPrice     float64  `json:"openingPrice"`
	Seed             int64    `json:"seed"`
	MarketVolatility float64  `json:"marketVolatility"`
	GameDuration     int      `json:"gameDuration"` // minutes
	EnableRandomNews bool     `json:"enableRandomNews"`
	Bots             int      `json:"bots"`
	TicketName       string   `json:"ticketName"`
	BotSelection     []string `json:"botSelection,omitempty"`
	DebugPrices      bool     `json:"debugPrices"`
}

// DefaultSettings is the state of a freshly created room.
func DefaultSettings() Settings {
	return Settings{
		StartingCash:     10_000,
		OpeningPrice:     1,
		Seed:             42,
		MarketVolatility: 5,
		GameDuration:     5,
		EnableRandomNews: true,
		Bots:             0,
		TicketName:       "AAPL",
	}
}

// SettingsPatch is a partial settings update. Nil fields are left
// untouched, so a seed of 0 is distinguishable from an absent seed.
type SettingsPatch struct {
	StartingCash     *float64 `json:"startingCash"`
	OpeningPrice     *float64 `json:"openingPrice"`
	Seed             *int64   `json:"seed"`
	MarketVolatility *float64 `json:"marketVolatility"`
	GameDuration     *int     `json:"gameDuration"`
	EnableRandomNews *bool    `json:"enableRandomNews"`
	Bots             *int     `json:"bots"`
	TicketName       *string  `json:"ticketName"`
	BotSelection     []string `json:"botSelection"`
	DebugPrices      *bool    `json:"debugPrices"`
}

// Apply merges the patch into the settings, clamping every numeric
// field into its documented range.
func (s *Settings) Apply(p SettingsPatch) {
	if p.StartingCash != nil {
		s.StartingCash = clampFloat(*p.StartingCash, 0, maxStartingCash)
	}
	if p.OpeningPrice != nil {
		s.OpeningPrice = clampFloat(*p.OpeningPrice, minOpeningPrice, maxOpeningPrice)
	}
	if p.Seed != nil {
		s.Seed = *p.Seed
	}
	if p.MarketVolatility != nil {
		s.MarketVolatility = clampFloat(*p.MarketVolatility, minVolatilityPct, maxVolatilityPct)
	}
	if p.GameDuration != nil {
		s.GameDuration = clampInt(*p.GameDuration, minGameDuration, maxGameDuration)
	}
	if p.EnableRandomNews != nil {
		s.EnableRandomNews = *p.EnableRandomNews
	}
	if p.Bots != nil {
		s.Bots = clampInt(*p.Bots, 0, maxBots)
	}
	if p.TicketName != nil && *p.TicketName != "" {
		s.TicketName = *p.TicketName
	}
	if p.BotSelection != nil {
		s.BotSelection = p.BotSelection
	}
	if p.DebugPrices != nil {
		s.DebugPrices = *p.DebugPrices
	}
}

// EffectiveVolatility is the per-tick volatility fraction handed to the
// price generator.
func (s Settings) EffectiveVolatility() float64 {
	return s.MarketVolatility / 100
}

// DurationSeconds is the game length in seconds.
func (s Settings) DurationSeconds() int {
	return s.GameDuration * 60
}

// BotKinds maps the botSelection strings onto bot kinds. Unknown names
// pass through; the spawner ignores them.
func (s Settings) BotKinds() []bots.Kind {
	if len(s.BotSelection) == 0 {
		return nil
	}
	kinds := make([]bots.Kind, 0, len(s.BotSelection))
	for _, name := range s.BotSelection {
		kinds = append(kinds, bots.Kind(name))
	}
	return kinds
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
