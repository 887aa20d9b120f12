package trading

import (
	"context"
	"sync"
	"time"

	"github.com/davidting0918/VegaExchange/internal/clob"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// binding is the router's per-symbol entry of spec §4.6's binding cache:
// "symbol → (symbol_id, engine_kind, engine_handle, mutex)". Handles are
// singletons, reused on every request so the CLOB's in-memory ladders
// survive across calls for the process lifetime.
type binding struct {
	Symbol *symbol.Symbol
	Kind   symbol.EngineKind
	Book   *clob.Book // non-nil only when Kind == CLOB

	sem chan struct{} // 1-token semaphore standing in for the symbol mutex

	quarantineMu sync.Mutex
	quarantined  bool
	reason       string
}

func newBinding(sym *symbol.Symbol, book *clob.Book) *binding {
	b := &binding{Symbol: sym, Kind: sym.Engine, Book: book, sem: make(chan struct{}, 1)}
	b.sem <- struct{}{}
	return b
}

// acquire waits for the symbol's mutex, bounded by timeout and ctx, per
// spec §5's "the symbol-mutex acquisition honors [a deadline] (bounded
// wait)".
func (b *binding) acquire(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-b.sem:
		return nil
	case <-ctx.Done():
		return vegaerr.ErrDeadlineExceeded
	case <-timer.C:
		return vegaerr.ErrDeadlineExceeded
	}
}

func (b *binding) release() {
	b.sem <- struct{}{}
}

func (b *binding) isQuarantined() (bool, string) {
	b.quarantineMu.Lock()
	defer b.quarantineMu.Unlock()
	return b.quarantined, b.reason
}

// quarantine trips the latch of SPEC_FULL.md §C.1: every subsequent
// mutating call on this symbol fails fast until an operator clears it.
func (b *binding) quarantine(reason string) {
	b.quarantineMu.Lock()
	defer b.quarantineMu.Unlock()
	b.quarantined = true
	b.reason = reason
}

func (b *binding) unquarantine() {
	b.quarantineMu.Lock()
	defer b.quarantineMu.Unlock()
	b.quarantined = false
	b.reason = ""
}
