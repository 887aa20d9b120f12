package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundDisplayBankerRounding(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   string
	}{
		{"1.005", 2, "1.00"}, // round-half-to-even: 0 is even
		{"1.015", 2, "1.02"}, // 2 is even
		{"1.25", 1, "1.2"},
	}
	for _, c := range cases {
		v, err := decimal.NewFromString(c.in)
		if err != nil {
			t.Fatalf("parse %s: %v", c.in, err)
		}
		got := RoundDisplay(v, c.places)
		if got.StringFixed(c.places) != c.want {
			t.Fatalf("RoundDisplay(%s, %d) = %s, want %s", c.in, c.places, got.StringFixed(c.places), c.want)
		}
	}
}

func TestRoundDownTruncates(t *testing.T) {
	v := decimal.RequireFromString("1.999")
	if got := RoundDown(v, 2); got.String() != "1.99" {
		t.Fatalf("RoundDown = %s, want 1.99", got.String())
	}

	neg := decimal.RequireFromString("-1.999")
	if got := RoundDown(neg, 2); got.String() != "-1.99" {
		t.Fatalf("RoundDown(negative) = %s, want -1.99", got.String())
	}
}

func TestSqrt(t *testing.T) {
	got := Sqrt(decimal.NewFromInt(9))
	want := decimal.NewFromInt(3)
	if !got.Round(10).Equal(want) {
		t.Fatalf("Sqrt(9) = %s, want 3", got.String())
	}
}

func TestSqrtOfZeroOrNegativeIsZero(t *testing.T) {
	if !Sqrt(decimal.Zero).IsZero() {
		t.Fatalf("Sqrt(0) should be zero")
	}
	if !Sqrt(decimal.NewFromInt(-4)).IsZero() {
		t.Fatalf("Sqrt(negative) should be zero")
	}
}

func TestIsPositive(t *testing.T) {
	if IsPositive(decimal.Zero) {
		t.Fatalf("zero should not be positive")
	}
	if !IsPositive(decimal.NewFromInt(1)) {
		t.Fatalf("1 should be positive")
	}
}
