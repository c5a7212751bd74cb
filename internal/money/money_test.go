package money

import "testing"

func TestToCents(t *testing.T) {
	cases := []struct {
		dollars float64
		want    int64
	}{
		{0, 0},
		{1, 100},
		{1.23, 123},
		{1.005, 101},  // half rounds away from zero
		{99.994, 9999},
		{99.995, 10000},
		{0.01, 1},
		{10000, 1000000},
	}
	for _, c := range cases {
		if got := ToCents(c.dollars); got != c.want {
			t.Errorf("ToCents(%v) = %d, want %d", c.dollars, got, c.want)
		}
	}
}

func TestCeilCents(t *testing.T) {
	cases := []struct {
		dollars float64
		want    int64
	}{
		{1.001, 101},
		{1.0001, 101},
		{1.00, 100},
		{0.001, 1},
		{2.999, 300},
		{154.321, 15433},
	}
	for _, c := range cases {
		if got := CeilCents(c.dollars); got != c.want {
			t.Errorf("CeilCents(%v) = %d, want %d", c.dollars, got, c.want)
		}
	}
}

func TestToDollarsRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345, 999999999} {
		if got := ToCents(ToDollars(cents)); got != cents {
			t.Errorf("round trip %d cents came back as %d", cents, got)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(123); got != "1.23" {
		t.Errorf("Format(123) = %q, want %q", got, "1.23")
	}
	if got := Format(100050); got != "1000.50" {
		t.Errorf("Format(100050) = %q, want %q", got, "1000.50")
	}
}
