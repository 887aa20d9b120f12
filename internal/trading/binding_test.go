package trading

import (
	"context"
	"testing"
	"time"

	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

func testSymbol() *symbol.Symbol {
	return &symbol.Symbol{ID: 1, Symbol: "BTC/USDT-USDT:SPOT", Engine: symbol.EngineCLOB}
}

func TestBindingAcquireReleaseRoundTrips(t *testing.T) {
	b := newBinding(testSymbol(), nil)
	ctx := context.Background()

	if err := b.acquire(ctx, time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	b.release()
	if err := b.acquire(ctx, time.Second); err != nil {
		t.Fatalf("second acquire after release: %v", err)
	}
	b.release()
}

func TestBindingAcquireTimesOutWhenHeld(t *testing.T) {
	b := newBinding(testSymbol(), nil)
	ctx := context.Background()
	if err := b.acquire(ctx, time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	err := b.acquire(ctx, 20*time.Millisecond)
	if err != vegaerr.ErrDeadlineExceeded {
		t.Fatalf("acquire while held = %v, want ErrDeadlineExceeded", err)
	}
}

func TestBindingAcquireRespectsCanceledContext(t *testing.T) {
	b := newBinding(testSymbol(), nil)
	if err := b.acquire(context.Background(), time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.acquire(ctx, time.Second); err != vegaerr.ErrDeadlineExceeded {
		t.Fatalf("acquire with canceled ctx = %v, want ErrDeadlineExceeded", err)
	}
}

func TestBindingQuarantineLatch(t *testing.T) {
	b := newBinding(testSymbol(), nil)

	if quarantined, _ := b.isQuarantined(); quarantined {
		t.Fatalf("a fresh binding must not start quarantined")
	}

	b.quarantine("book crossed")
	quarantined, reason := b.isQuarantined()
	if !quarantined || reason != "book crossed" {
		t.Fatalf("isQuarantined() = (%v, %q), want (true, %q)", quarantined, reason, "book crossed")
	}

	b.unquarantine()
	if quarantined, reason := b.isQuarantined(); quarantined || reason != "" {
		t.Fatalf("unquarantine should clear both flag and reason, got (%v, %q)", quarantined, reason)
	}
}
