package clob

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEngineQuoteBuyWalksAskLadder(t *testing.T) {
	book := NewBook(1)
	book.insert(newTestOrder("ask1", SideSell, "100", "2"))
	book.insert(newTestOrder("ask2", SideSell, "110", "5"))
	e := &Engine{Book: book}

	res, err := e.Quote(SideBuy, decimal.RequireFromString("4"))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !res.AchievableQuantity.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected full achievable quantity, got %s", res.AchievableQuantity.String())
	}
	if !res.FullyFilled {
		t.Fatalf("expected FullyFilled since 2 asks @100 + 2 @110 covers 4")
	}
	// VWAP = (2*100 + 2*110) / 4 = 105
	if res.VWAP.String() != "105" {
		t.Fatalf("VWAP = %s, want 105", res.VWAP.String())
	}
}

func TestEngineQuotePartialFillWhenBookThin(t *testing.T) {
	book := NewBook(1)
	book.insert(newTestOrder("ask1", SideSell, "100", "1"))
	e := &Engine{Book: book}

	res, err := e.Quote(SideBuy, decimal.RequireFromString("5"))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.FullyFilled {
		t.Fatalf("expected FullyFilled=false when the book can't cover the request")
	}
	if !res.AchievableQuantity.Equal(decimal.RequireFromString("1")) {
		t.Fatalf("expected achievable quantity 1, got %s", res.AchievableQuantity.String())
	}
}

func TestEngineQuoteRejectsNonPositiveQuantity(t *testing.T) {
	e := &Engine{Book: NewBook(1)}
	if _, err := e.Quote(SideBuy, decimal.Zero); err == nil {
		t.Fatalf("expected an error for a zero quantity")
	}
}

func TestEngineQuoteSellWalksBidLadder(t *testing.T) {
	book := NewBook(1)
	book.insert(newTestOrder("bid1", SideBuy, "95", "3"))
	e := &Engine{Book: book}

	res, err := e.Quote(SideSell, decimal.RequireFromString("2"))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.VWAP.String() != "95" {
		t.Fatalf("VWAP = %s, want 95", res.VWAP.String())
	}
}
