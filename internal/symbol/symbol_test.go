package symbol

import "testing"

func TestCanonicalizeUppercasesAndFormats(t *testing.T) {
	got := Canonicalize("btc", "usdt", "usdt", "spot")
	want := "BTC/USDT-USDT:SPOT"
	if got != want {
		t.Fatalf("Canonicalize = %s, want %s", got, want)
	}
}

func TestParsePathSlashSeparated(t *testing.T) {
	got, err := ParsePath("BTC/USDT/USDT/spot")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if got != "BTC/USDT-USDT:SPOT" {
		t.Fatalf("unexpected canonical form: %s", got)
	}
}

func TestParsePathDashSeparated(t *testing.T) {
	got, err := ParsePath("BTC-USDT-USDT-spot")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if got != "BTC/USDT-USDT:SPOT" {
		t.Fatalf("unexpected canonical form: %s", got)
	}
}

func TestParsePathRejectsWrongSegmentCount(t *testing.T) {
	if _, err := ParsePath("BTC-USDT-spot"); err == nil {
		t.Fatalf("expected an error for a 3-segment path")
	}
}

func TestParsePathRejectsUnseparatedInput(t *testing.T) {
	if _, err := ParsePath("BTCUSDTSPOT"); err == nil {
		t.Fatalf("expected an error for input with no recognized separator")
	}
}

func TestParsePathFailsOnAlreadyCanonicalForm(t *testing.T) {
	// The canonical form mixes both separators in a 2-segment shape once
	// split on "/" — ParsePath must not silently accept it; callers fall
	// back to treating the raw string as already-canonical instead.
	if _, err := ParsePath("BTC/USDT-USDT:SPOT"); err == nil {
		t.Fatalf("expected canonical-form input to fail ParsePath's 4-segment check")
	}
}

func TestSymbolCanonicalMatchesCanonicalize(t *testing.T) {
	s := Symbol{Base: "eth", Quote: "usdt", Settle: "usdt", Market: MarketSpot}
	if s.Canonical() != Canonicalize("eth", "usdt", "usdt", "spot") {
		t.Fatalf("Symbol.Canonical should delegate to Canonicalize")
	}
}
