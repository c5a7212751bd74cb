package prices

import (
	"math"
	"testing"
)

func TestPRNGDeterministic(t *testing.T) {
	a := NewPRNG(42)
	b := NewPRNG(42)
	for i := 0; i < 1000; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("sequences diverged at draw %d", i)
		}
	}
}

func TestPRNGReseed(t *testing.T) {
	p := NewPRNG(7)
	first := make([]float64, 10)
	for i := range first {
		first[i] = p.Norm()
	}
	p.Reseed(7)
	for i := range first {
		if got := p.Norm(); got != first[i] {
			t.Fatalf("draw %d after reseed = %v, want %v", i, got, first[i])
		}
	}
}

func TestPRNGBipolarRange(t *testing.T) {
	p := NewPRNG(1)
	for i := 0; i < 10000; i++ {
		v := p.Bipolar()
		if v < -1 || v >= 1 {
			t.Fatalf("Bipolar() = %v out of [-1, 1)", v)
		}
	}
}

func TestPRNGNormMoments(t *testing.T) {
	p := NewPRNG(99)
	n := 200000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := p.Norm()
		sum += v
		sumSq += v * v
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if math.Abs(mean) > 0.02 {
		t.Errorf("sample mean = %v, want ~0", mean)
	}
	if math.Abs(variance-1) > 0.03 {
		t.Errorf("sample variance = %v, want ~1", variance)
	}
}

func defaultGen(seed int64) *Generator {
	return NewGenerator(Config{
		OpeningPrice:  10,
		Volatility:    0.05,
		MeanReversion: 0.1,
	}, NewPRNG(seed))
}

func TestGeneratorDeterministic(t *testing.T) {
	a := defaultGen(42)
	b := defaultGen(42)
	for i := 0; i < 300; i++ {
		ia, ga := a.Tick()
		ib, gb := b.Tick()
		if ia != ib || ga != gb {
			t.Fatalf("tick %d: (%d,%d) vs (%d,%d)", i, ia, ga, ib, gb)
		}
	}
}

func TestGeneratorPriceFloorAndRounding(t *testing.T) {
	g := NewGenerator(Config{OpeningPrice: 0.02, Volatility: 0.5}, NewPRNG(3))
	for i := 0; i < 2000; i++ {
		intrinsic, guide := g.Tick()
		if guide < 1 {
			t.Fatalf("guide price %d cents fell below the floor", guide)
		}
		if intrinsic < 1 {
			t.Fatalf("intrinsic %d cents fell below the floor", intrinsic)
		}
	}
}

func TestGeneratorCeilingRounding(t *testing.T) {
	// The reported guide must never understate the model value, so the
	// rounded cents are always >= the raw dollars * 100.
	g := defaultGen(11)
	for i := 0; i < 500; i++ {
		_, guide := g.Tick()
		if float64(guide) < g.guide*100-1e-9 {
			t.Fatalf("tick %d: reported %d cents below raw %v dollars", i, guide, g.guide)
		}
	}
}

func TestGeneratorShockExpires(t *testing.T) {
	g := defaultGen(5)
	g.Shock(2, 4)
	if !g.ShockActive() {
		t.Fatal("shock not active after Shock()")
	}
	for i := 0; i < 4; i++ {
		g.Tick()
	}
	if g.ShockActive() {
		t.Fatal("shock still active after its duration elapsed")
	}
}

func TestGeneratorShockPushesPriceUp(t *testing.T) {
	// Compare a shocked run against a no-shock run with the same seed.
	// A strong positive shock must leave the guide higher.
	plain := defaultGen(42)
	shocked := defaultGen(42)
	shocked.Shock(5, 10)
	var lastPlain, lastShocked int64
	for i := 0; i < 10; i++ {
		_, lastPlain = plain.Tick()
		_, lastShocked = shocked.Tick()
	}
	if lastShocked <= lastPlain {
		t.Errorf("guide after shock = %d, unshocked = %d; want shocked run higher", lastShocked, lastPlain)
	}
}

func TestGeneratorShockReplaced(t *testing.T) {
	g := defaultGen(8)
	g.Shock(1, 100)
	g.Shock(1, 2)
	g.Tick()
	g.Tick()
	if g.ShockActive() {
		t.Fatal("replacing shock did not reset the remaining duration")
	}
}

func TestGeneratorMeanReversion(t *testing.T) {
	// With zero volatility the model is pure drift; a guide far above
	// intrinsic must be pulled back down.
	g := NewGenerator(Config{OpeningPrice: 10, Volatility: 0.00001, MeanReversion: 0.5}, NewPRNG(1))
	g.guide = 20
	_, first := g.Tick()
	var last int64
	for i := 0; i < 30; i++ {
		_, last = g.Tick()
	}
	if last >= first {
		t.Errorf("guide rose from %d to %d despite reversion pressure", first, last)
	}
	if last < 1000-100 || last > 1000+100 {
		t.Errorf("guide %d did not settle near intrinsic 1000", last)
	}
}

func TestGeneratorIntrinsicShock(t *testing.T) {
	g := defaultGen(2)
	before := g.Intrinsic()
	g.IntrinsicShock(0.10)
	after := g.Intrinsic()
	if after <= before {
		t.Errorf("intrinsic %d -> %d, want an increase", before, after)
	}
	g.IntrinsicShock(-0.9999)
	if g.Intrinsic() < 1 {
		t.Errorf("intrinsic %d fell below the floor", g.Intrinsic())
	}
}

func TestGeneratorHistoryBounded(t *testing.T) {
	g := defaultGen(6)
	for i := 0; i < 100; i++ {
		g.Tick()
	}
	h := g.History()
	if len(h) != historyCap {
		t.Fatalf("history length %d, want %d", len(h), historyCap)
	}
	_, guide := g.Tick()
	h = g.History()
	if h[len(h)-1] != guide {
		t.Errorf("history tail %d, want latest guide %d", h[len(h)-1], guide)
	}
}

func TestGeneratorVolatilityClamp(t *testing.T) {
	g := defaultGen(4)
	g.SetVolatility(4)
	if g.Volatility() != 1 {
		t.Errorf("volatility %v, want clamp to 1", g.Volatility())
	}
	g.SetVolatility(-2)
	if g.Volatility() <= 0 {
		t.Errorf("volatility %v, want a positive floor", g.Volatility())
	}
}
