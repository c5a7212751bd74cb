package news

import (
	"github.com/Benjythebee/stock-sim-server/internal/prices"
)

// blueprint is a catalogue entry. build binds the effect closures to
// the room's price generator and random source.
type blueprint struct {
	title string
	build func(gen *prices.Generator, rng *prices.PRNG) *Item
}

var catalogue = []blueprint{
	{"Earnings Beat", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Earnings Beat",
			"Quarterly results come in well above consensus.",
			0, func() { gen.IntrinsicShock(0.05) }, nil, nil)
	}},
	{"Earnings Miss", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Earnings Miss",
			"Quarterly results disappoint across the board.",
			0, func() { gen.IntrinsicShock(-0.05) }, nil, nil)
	}},
	{"Analyst Upgrade", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Analyst Upgrade",
			"A major bank raises its price target.",
			0, func() { gen.Shock(rng.Float64()*2, prices.DefaultShockTicks) }, nil, nil)
	}},
	{"Analyst Downgrade", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Analyst Downgrade",
			"A major bank cuts the stock to underweight.",
			0, func() { gen.Shock(-rng.Float64()*2, prices.DefaultShockTicks) }, nil, nil)
	}},
	{"Short Squeeze", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Short Squeeze",
			"Short sellers scramble to cover their positions.",
			0, func() { gen.Shock(rng.Float64()*3, prices.DefaultShockTicks) }, nil, nil)
	}},
	{"Profit Warning", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Profit Warning",
			"Management guides next quarter sharply lower.",
			0, func() { gen.Shock(-rng.Float64()*3, prices.DefaultShockTicks) }, nil, nil)
	}},
	{"Options Expiry Chaos", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		var prev float64
		return NewItem("Options Expiry Chaos",
			"A massive options expiry whipsaws the market.",
			15,
			func() { prev = gen.Volatility(); gen.SetVolatility(prev * 2) },
			nil,
			func() { gen.SetVolatility(prev) })
	}},
	{"Market Jitters", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		var prev float64
		return NewItem("Market Jitters",
			"Traders grow nervous ahead of economic data.",
			10,
			func() { prev = gen.Volatility(); gen.SetVolatility(prev * 1.5) },
			nil,
			func() { gen.SetVolatility(prev) })
	}},
	{"Regulatory Probe", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Regulatory Probe",
			"Regulators open an investigation into the company.",
			0, func() { gen.IntrinsicShock(-0.10) }, nil, nil)
	}},
	{"Viral Product Demo", func(gen *prices.Generator, rng *prices.PRNG) *Item {
		return NewItem("Viral Product Demo",
			"A product demo takes off and the stock trends everywhere.",
			0, func() {
				gen.IntrinsicShock(0.08)
				gen.Shock(rng.Float64(), prices.DefaultShockTicks)
			}, nil, nil)
	}},
}
