// Package trading implements the engine router of spec §4.6: symbol
// resolution, the binding cache, per-symbol serialization, and the
// uniform Trade Result shape HTTP callers see regardless of engine kind.
// Grounded on the teacher's matchingengine/application/matching_service.go
// application-service shape (orchestrating a domain engine behind a single
// entry point per operation) and on circuit_breaker.go for the quarantine
// latch adapted in binding.go.
package trading

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davidting0918/VegaExchange/internal/amm"
	"github.com/davidting0918/VegaExchange/internal/clob"
	"github.com/davidting0918/VegaExchange/internal/eventbus"
	"github.com/davidting0918/VegaExchange/internal/ledger"
	"github.com/davidting0918/VegaExchange/internal/platform/cache"
	"github.com/davidting0918/VegaExchange/internal/platform/dbx"
	"github.com/davidting0918/VegaExchange/internal/platform/logging"
	"github.com/davidting0918/VegaExchange/internal/platform/metrics"
	"github.com/davidting0918/VegaExchange/internal/storage"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// Router ties every engine, the ledger, persistence, and the event bus
// together behind spec §4.6's uniform operation set.
type Router struct {
	db      *dbx.DB
	symbols symbol.Repository
	pools   amm.Repository
	orders  clob.Repository
	trades  storage.TradeRepository
	bus     *eventbus.Bus
	metrics *metrics.Metrics
	cache   *cache.RedisCache

	lockTimeout          time.Duration
	priceImpactThreshold decimal.Decimal
	now                  func() time.Time

	mu       sync.RWMutex
	bindings map[string]*binding
}

// Config groups Router's non-repository dependencies.
type Config struct {
	LockTimeout          time.Duration
	PriceImpactThreshold decimal.Decimal
	Now                  func() time.Time
	// Cache backs the read-through pool/orderbook snapshot cache of spec
	// §4.3. Nil disables caching; every read falls through to its source.
	Cache *cache.RedisCache
}

// New constructs a Router. Repositories read/write through db's
// transaction handle, so they're passed in already bound to it — the
// binding cache and book construction below take their own short-lived
// read-only tx via db.DB directly for rehydration.
func New(db *dbx.DB, symbols symbol.Repository, pools amm.Repository, orders clob.Repository, trades storage.TradeRepository, bus *eventbus.Bus, m *metrics.Metrics, cfg Config) *Router {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Router{
		db: db, symbols: symbols, pools: pools, orders: orders, trades: trades, bus: bus, metrics: m, cache: cfg.Cache,
		lockTimeout: cfg.LockTimeout, priceImpactThreshold: cfg.PriceImpactThreshold, now: now,
		bindings: make(map[string]*binding),
	}
}

// resolveBinding populates the binding cache lazily (spec §4.6), rehydrating
// a fresh CLOB Book from persisted orders the first time a CLOB symbol is
// touched.
func (r *Router) resolveBinding(ctx context.Context, symbolStr string) (*binding, error) {
	r.mu.RLock()
	b, ok := r.bindings[symbolStr]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bindings[symbolStr]; ok {
		return b, nil
	}

	sym, err := r.symbols.GetBySymbol(ctx, symbolStr)
	if err != nil {
		return nil, err
	}

	var book *clob.Book
	if sym.Engine == symbol.EngineCLOB {
		book = clob.NewBook(sym.ID)
		if err := book.Rehydrate(ctx, r.orders); err != nil {
			return nil, err
		}
	}

	b = newBinding(sym, book)
	r.bindings[symbolStr] = b
	return b, nil
}

// InvalidateBinding drops a cached binding, per spec §4.6: "invalidated on
// admin create/update."
func (r *Router) InvalidateBinding(symbolStr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, symbolStr)
}

// Unquarantine clears a tripped quarantine latch (SPEC_FULL.md §C.1's
// internal, test-reachable operation).
func (r *Router) Unquarantine(ctx context.Context, symbolStr string) error {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return err
	}
	b.unquarantine()
	return nil
}

// withSymbol acquires b's mutex (bounded by the configured timeout),
// quarantine-checks, runs fn inside a transaction against a fresh Outbox,
// and on an invariant violation trips the quarantine latch and publishes
// an alert event before releasing the mutex. This is the single choke
// point every mutating router operation goes through. Events fn buffers
// into the outbox are only delivered to the bus once WithTx reports the
// transaction committed (spec.md:26) — a commit failure drops them along
// with the rolled-back write, instead of notifying subscribers of state
// that was never persisted.
func (r *Router) withSymbol(ctx context.Context, b *binding, op string, fn func(tx *gorm.DB, outbox *eventbus.Outbox) error) error {
	if quarantined, reason := b.isQuarantined(); quarantined {
		return vegaerr.ErrSymbolQuarantined.WithMessage(reason)
	}

	start := time.Now()
	if err := b.acquire(ctx, r.lockTimeout); err != nil {
		r.observe(op, "lock_timeout", start)
		return err
	}
	defer b.release()

	var outbox eventbus.Outbox
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(tx, &outbox)
	})
	if err != nil {
		if errors.Is(err, vegaerr.ErrInvariantViolation) {
			b.quarantine(err.Error())
			if r.metrics != nil {
				r.metrics.QuarantinedSymbols.Inc()
			}
			r.bus.Publish(eventbus.Topic(eventbus.KindAlert, b.Symbol.Symbol), eventbus.Event{
				Channel: eventbus.KindAlert, Symbol: b.Symbol.Symbol, Data: map[string]any{"reason": err.Error()},
			})
			logging.Error(ctx, "symbol quarantined", "symbol", b.Symbol.Symbol, "reason", err.Error())
		}
		r.observe(op, "error", start)
		return err
	}
	outbox.Flush(r.bus)
	r.observe(op, "success", start)
	return nil
}

func (r *Router) observe(op, outcome string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RouterOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	r.metrics.RouterOpsTotal.WithLabelValues(op, outcome).Inc()
}

// ammEngine and clobEngine are constructed per-call with a fresh
// transaction handle; outbox is nil for the read-only call sites (Quote,
// GetPosition) that never publish, and the caller's per-transaction Outbox
// everywhere else.
func (r *Router) ammEngine(ctx context.Context, tx *gorm.DB, b *binding, outbox *eventbus.Outbox) *amm.Engine {
	tradeRepo := storage.NewGormTradeRepository(tx)
	return &amm.Engine{
		Sym: b.Symbol, Ledger: ledger.New(tx), Pools: amm.NewGormRepository(tx),
		Trades: tradeRepo, Bus: outbox, Now: r.now, Cache: r.cache,
		TradeIDExists:        func(c string) (bool, error) { return tradeRepo.Exists(ctx, c) },
		PriceImpactThreshold: r.priceImpactThreshold,
	}
}

func (r *Router) clobEngine(ctx context.Context, tx *gorm.DB, b *binding, outbox *eventbus.Outbox) *clob.Engine {
	orderRepo := clob.NewGormRepository(tx)
	tradeRepo := storage.NewGormTradeRepository(tx)
	return &clob.Engine{
		Sym: b.Symbol, Ledger: ledger.New(tx), Orders: orderRepo, Trades: tradeRepo, Book: b.Book,
		Bus: outbox, Now: r.now,
		OrderIDExists: func(c string) (bool, error) { return orderRepo.Exists(ctx, c) },
		TradeIDExists: func(c string) (bool, error) { return tradeRepo.Exists(ctx, c) },
	}
}
