package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davidting0918/VegaExchange/internal/amm"
	"github.com/davidting0918/VegaExchange/internal/clob"
	"github.com/davidting0918/VegaExchange/internal/eventbus"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// depthSnapshotTTL bounds how stale a cached Depth read may be. The book
// itself is already in-memory and cheap to walk; this mainly spares the
// JSON re-marshal under a polling WS/HTTP client storm on a hot symbol.
const depthSnapshotTTL = 200 * time.Millisecond

type depthSnapshot struct {
	Bids []clob.DepthLevel
	Asks []clob.DepthLevel
}

func depthCacheKey(symbolStr string, levels int) string {
	return fmt.Sprintf("clob:depth:%s:%d", symbolStr, levels)
}

// Quote dispatches to whichever engine symbolStr is bound to, per spec
// §4.6's capability-set polymorphism. side follows the AMM encoding
// (0=buy, 1=sell); for a CLOB symbol it is translated to clob.Side.
func (r *Router) Quote(ctx context.Context, symbolStr string, side int, amountIn, amountOut *decimal.Decimal) (any, error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return nil, err
	}
	switch b.Kind {
	case symbol.EngineAMM:
		tx := r.db.WithContext(ctx)
		eng := r.ammEngine(ctx, tx, b, nil)
		return eng.Quote(ctx, amm.QuoteRequest{Side: amm.Side(side), AmountIn: amountIn, AmountOut: amountOut})
	case symbol.EngineCLOB:
		if amountIn == nil {
			return nil, vegaerr.ErrMissingParameter.WithMessage("quantity is required for a CLOB quote")
		}
		tx := r.db.WithContext(ctx)
		eng := r.clobEngine(ctx, tx, b, nil)
		return eng.Quote(clob.Side(side), *amountIn)
	default:
		return nil, vegaerr.ErrSymbolBindingMismatch
	}
}

// Swap executes an AMM swap (spec §4.4 operation 2). Fails with
// SymbolBindingMismatch if symbolStr is bound to the CLOB engine.
func (r *Router) Swap(ctx context.Context, userID, symbolStr string, side int, amountIn decimal.Decimal, minAmountOut *decimal.Decimal) (*TradeResult, error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return nil, err
	}
	if b.Kind != symbol.EngineAMM {
		return nil, vegaerr.ErrSymbolBindingMismatch
	}

	var result *TradeResult
	err = r.withSymbol(ctx, b, "swap", func(tx *gorm.DB, outbox *eventbus.Outbox) error {
		eng := r.ammEngine(ctx, tx, b, outbox)
		res, err := eng.Swap(ctx, userID, amm.QuoteRequest{Side: amm.Side(side), AmountIn: &amountIn}, minAmountOut)
		if err != nil {
			return err
		}
		result = resultFromTrade(res.Trade)
		if r.metrics != nil {
			r.metrics.TradesTotal.WithLabelValues(symbolStr, string(symbol.EngineAMM)).Inc()
		}
		return nil
	})
	return result, err
}

// AddLiquidity executes spec §4.4 operation 3.
func (r *Router) AddLiquidity(ctx context.Context, userID, symbolStr string, baseAmount, quoteAmount decimal.Decimal) (*amm.LPPosition, error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return nil, err
	}
	if b.Kind != symbol.EngineAMM {
		return nil, vegaerr.ErrSymbolBindingMismatch
	}
	var pos *amm.LPPosition
	err = r.withSymbol(ctx, b, "add_liquidity", func(tx *gorm.DB, outbox *eventbus.Outbox) error {
		eng := r.ammEngine(ctx, tx, b, outbox)
		p, err := eng.AddLiquidity(ctx, userID, baseAmount, quoteAmount)
		if err != nil {
			return err
		}
		pos = p
		return nil
	})
	return pos, err
}

// RemoveLiquidity executes spec §4.4 operation 4.
func (r *Router) RemoveLiquidity(ctx context.Context, userID, symbolStr string, lpShares decimal.Decimal) (baseOut, quoteOut decimal.Decimal, err error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if b.Kind != symbol.EngineAMM {
		return decimal.Zero, decimal.Zero, vegaerr.ErrSymbolBindingMismatch
	}
	err = r.withSymbol(ctx, b, "remove_liquidity", func(tx *gorm.DB, outbox *eventbus.Outbox) error {
		eng := r.ammEngine(ctx, tx, b, outbox)
		bo, qo, err := eng.RemoveLiquidity(ctx, userID, lpShares)
		if err != nil {
			return err
		}
		baseOut, quoteOut = bo, qo
		return nil
	})
	return baseOut, quoteOut, err
}

// GetPosition is the read-only IL view of SPEC_FULL.md §C.4.
func (r *Router) GetPosition(ctx context.Context, userID, symbolStr string) (*amm.PositionView, error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return nil, err
	}
	if b.Kind != symbol.EngineAMM {
		return nil, vegaerr.ErrSymbolBindingMismatch
	}
	tx := r.db.WithContext(ctx)
	eng := r.ammEngine(ctx, tx, b, nil)
	return eng.GetPosition(ctx, userID)
}

// PlaceOrder executes spec §4.5 operation 2.
func (r *Router) PlaceOrder(ctx context.Context, userID, symbolStr string, req clob.PlaceOrderRequest) (*clob.PlaceResult, error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return nil, err
	}
	if b.Kind != symbol.EngineCLOB {
		return nil, vegaerr.ErrSymbolBindingMismatch
	}
	var result *clob.PlaceResult
	err = r.withSymbol(ctx, b, "place_order", func(tx *gorm.DB, outbox *eventbus.Outbox) error {
		eng := r.clobEngine(ctx, tx, b, outbox)
		res, err := eng.PlaceOrder(ctx, userID, req)
		if err != nil {
			return err
		}
		result = res
		if r.metrics != nil {
			r.metrics.TradesTotal.WithLabelValues(symbolStr, string(symbol.EngineCLOB)).Add(float64(len(res.Trades)))
		}
		return nil
	})
	return result, err
}

// CancelOrder executes spec §4.5 operation 3.
func (r *Router) CancelOrder(ctx context.Context, userID, symbolStr, orderID string) (*clob.Order, error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return nil, err
	}
	if b.Kind != symbol.EngineCLOB {
		return nil, vegaerr.ErrSymbolBindingMismatch
	}
	var order *clob.Order
	err = r.withSymbol(ctx, b, "cancel_order", func(tx *gorm.DB, outbox *eventbus.Outbox) error {
		eng := r.clobEngine(ctx, tx, b, outbox)
		o, err := eng.CancelOrder(ctx, userID, orderID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	return order, err
}

// Depth is a read-only query (spec §4.5 operation 4); it does not take
// the symbol mutex, matching spec §4.6's "read-only endpoints (quote,
// depth) may skip the mutex."
func (r *Router) Depth(ctx context.Context, symbolStr string, levels int) (bids, asks []clob.DepthLevel, err error) {
	b, err := r.resolveBinding(ctx, symbolStr)
	if err != nil {
		return nil, nil, err
	}
	if b.Kind != symbol.EngineCLOB {
		return nil, nil, vegaerr.ErrSymbolBindingMismatch
	}

	key := depthCacheKey(symbolStr, levels)
	var snap depthSnapshot
	if ok, _ := r.cache.GetJSON(ctx, key, &snap); ok {
		return snap.Bids, snap.Asks, nil
	}
	bids, asks = b.Book.Depth(levels)
	r.cache.SetJSON(ctx, key, depthSnapshot{Bids: bids, Asks: asks}, depthSnapshotTTL)
	return bids, asks, nil
}

// ListUserTrades backs GET /api/user/trades.
func (r *Router) ListUserTrades(ctx context.Context, userID, symbolFilter string, engineFilter symbol.EngineKind, limit int) ([]*TradeResult, error) {
	ts, err := r.trades.ListByUser(ctx, userID, symbolFilter, engineFilter, limit)
	if err != nil {
		return nil, err
	}
	return resultsFromTrades(ts), nil
}

// GetSymbol and ListSymbols back GET /api/market[/symbol] (binding metadata).
func (r *Router) GetSymbol(ctx context.Context, symbolStr string) (*symbol.Symbol, error) {
	return r.symbols.GetBySymbol(ctx, symbolStr)
}

func (r *Router) ListSymbols(ctx context.Context) ([]*symbol.Symbol, error) {
	return r.symbols.List(ctx)
}

// CreateSymbol registers a new market and, for an AMM-bound symbol,
// provisions its (empty) pool row. This is the admin-side counterpart to
// spec §3's "a symbol's engine kind is immutable after creation" — there
// is deliberately no UpdateEngineKind operation.
func (r *Router) CreateSymbol(ctx context.Context, sym *symbol.Symbol, poolID string) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := symbol.NewGormRepository(tx).Create(ctx, sym); err != nil {
			return err
		}
		if sym.Engine == symbol.EngineAMM {
			pool := &amm.Pool{
				PoolID: poolID, SymbolID: sym.ID,
				ReserveBase: decimalZero(), ReserveQuote: decimalZero(), K: decimalZero(),
				FeeRate: sym.FeeRate, TotalLPShares: decimalZero(),
				VolumeBase: decimalZero(), VolumeQuote: decimalZero(),
				CumulativeFeesBase: decimalZero(), CumulativeFeesQuote: decimalZero(), LastTradePrice: decimalZero(),
			}
			if err := amm.NewGormRepository(tx).CreatePool(ctx, pool); err != nil {
				return err
			}
		}
		return nil
	})
}

func decimalZero() decimal.Decimal { return decimal.Zero }
