package amm

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/eventbus"
	"github.com/davidting0918/VegaExchange/internal/ledger"
	"github.com/davidting0918/VegaExchange/internal/numeric"
	"github.com/davidting0918/VegaExchange/internal/platform/cache"
	"github.com/davidting0918/VegaExchange/internal/storage"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// poolSnapshotTTL bounds how stale a cached Quote's pool read may be.
// Short enough that a quote never drifts far from the reserves a
// following swap will actually see, per spec §4.3's "snapshot reads."
const poolSnapshotTTL = 500 * time.Millisecond

func poolCacheKey(symbolID uint64) string {
	return fmt.Sprintf("amm:pool:%d", symbolID)
}

// Engine orchestrates the use cases of spec §4.4 for a single symbol's
// pool, mirroring the teacher's application-service shape: pure state
// lives in amm.go/quote.go, Engine wires it to the ledger, persistence,
// and the event bus. Every mutating method is called by the router while
// it holds the symbol's mutex and an open transaction — Engine never
// synchronizes internally.
type Engine struct {
	Sym                  *symbol.Symbol
	Ledger               ledger.Ledger
	Pools                Repository
	Trades               storage.TradeRepository
	Bus                  *eventbus.Outbox // buffers events until the enclosing transaction commits
	Now                  func() time.Time
	TradeIDExists        numeric.Exists
	PriceImpactThreshold decimal.Decimal // spec SPEC_FULL.md §C.2; zero disables tagging
	Cache                *cache.RedisCache // read-through pool snapshot cache; nil disables caching
}

// Quote evaluates spec §4.4 operation 1 against the current pool state.
// The pool read goes through Cache first: Quote is the hot read path
// polled repeatedly by clients pricing a trade before sending it, so a
// short-TTL snapshot avoids hitting Postgres on every poll.
func (e *Engine) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	pool, err := e.cachedPool(ctx)
	if err != nil {
		return nil, err
	}
	return EvaluateQuote(pool, req)
}

func (e *Engine) cachedPool(ctx context.Context) (*Pool, error) {
	key := poolCacheKey(e.Sym.ID)
	var pool Pool
	if ok, _ := e.Cache.GetJSON(ctx, key, &pool); ok {
		return &pool, nil
	}
	p, err := e.Pools.GetPoolBySymbolID(ctx, e.Sym.ID, false)
	if err != nil {
		return nil, err
	}
	e.Cache.SetJSON(ctx, key, p, poolSnapshotTTL)
	return p, nil
}

// invalidatePoolCache drops the cached snapshot the instant reserves
// change, so Quote never serves a stale pool state past the write that
// produced it.
func (e *Engine) invalidatePoolCache(ctx context.Context) {
	e.Cache.Delete(ctx, poolCacheKey(e.Sym.ID))
}

// SwapResult is what Swap hands back to the router for shaping into the
// uniform Trade Result (spec §4.6).
type SwapResult struct {
	Trade           *storage.Trade
	Pool            *Pool
	LargePriceImpact bool
}

// Swap executes spec §4.4 operation 2.
func (e *Engine) Swap(ctx context.Context, userID string, req QuoteRequest, minAmountOut *decimal.Decimal) (*SwapResult, error) {
	pool, err := e.Pools.GetPoolBySymbolID(ctx, e.Sym.ID, true)
	if err != nil {
		return nil, err
	}
	q, err := EvaluateQuote(pool, req)
	if err != nil {
		return nil, err
	}
	if minAmountOut != nil && q.AmountOut.LessThan(*minAmountOut) {
		return nil, vegaerr.ErrSlippageExceeded
	}

	kBefore := pool.K
	var inputAsset, outputAsset string
	switch q.Side {
	case SideBuy:
		inputAsset, outputAsset = e.Sym.Quote, e.Sym.Base
	case SideSell:
		inputAsset, outputAsset = e.Sym.Base, e.Sym.Quote
	}

	if err := e.Ledger.Debit(ctx, userID, inputAsset, q.AmountInGross); err != nil {
		return nil, err
	}
	if err := e.Ledger.Credit(ctx, userID, outputAsset, q.AmountOut); err != nil {
		return nil, err
	}

	effIn := q.AmountInGross.Mul(decimal.NewFromInt(1).Sub(pool.FeeRate))
	switch q.Side {
	case SideBuy:
		pool.ReserveQuote = pool.ReserveQuote.Add(effIn)
		pool.ReserveBase = pool.ReserveBase.Sub(q.AmountOut)
		pool.VolumeQuote = pool.VolumeQuote.Add(q.AmountInGross)
		pool.VolumeBase = pool.VolumeBase.Add(q.AmountOut)
		pool.CumulativeFeesQuote = pool.CumulativeFeesQuote.Add(q.Fee)
	case SideSell:
		pool.ReserveBase = pool.ReserveBase.Add(effIn)
		pool.ReserveQuote = pool.ReserveQuote.Sub(q.AmountOut)
		pool.VolumeBase = pool.VolumeBase.Add(q.AmountInGross)
		pool.VolumeQuote = pool.VolumeQuote.Add(q.AmountOut)
		pool.CumulativeFeesBase = pool.CumulativeFeesBase.Add(q.Fee)
	}
	pool.recomputeK()
	if pool.K.LessThan(kBefore) {
		return nil, vegaerr.ErrInvariantViolation.WithMessage("k decreased across a fee-bearing swap")
	}
	pool.LastTradePrice = q.ExecutionPrice

	if err := e.Pools.SavePool(ctx, pool); err != nil {
		return nil, err
	}
	e.invalidatePoolCache(ctx)

	tradeID, err := numeric.MintTimestampID(e.TradeIDExists, e.Now())
	if err != nil {
		return nil, err
	}
	feeAsset := inputAsset
	large := !e.PriceImpactThreshold.IsZero() && q.PriceImpact.GreaterThan(e.PriceImpactThreshold)
	tags := ""
	if large {
		tags = "large_price_impact"
	}
	trade := &storage.Trade{
		TradeID:     tradeID,
		SymbolID:    e.Sym.ID,
		Symbol:      e.Sym.Symbol,
		UserID:      userID,
		Side:        int(q.Side),
		Engine:      symbol.EngineAMM,
		Price:       numeric.RoundDisplay(q.ExecutionPrice, e.Sym.PricePrecision),
		Quantity:    quantityLeg(q),
		QuoteAmount: numeric.RoundDown(quoteLeg(q), e.Sym.PricePrecision),
		FeeAmount:   numeric.RoundDown(q.Fee, e.Sym.QtyPrecision),
		FeeAsset:    feeAsset,
		Status:      storage.TradeStatusExecuted,
		Tags:        tags,
	}
	if err := e.Trades.Insert(ctx, trade); err != nil {
		return nil, err
	}

	e.Bus.Publish(eventbus.Topic(eventbus.KindPool, e.Sym.Symbol), eventbus.Event{
		Channel: eventbus.KindPool, Symbol: e.Sym.Symbol,
		Data: map[string]any{"reserve_base": pool.ReserveBase, "reserve_quote": pool.ReserveQuote, "price": pool.SpotPrice(), "trade": trade},
	})
	e.Bus.Publish(eventbus.Topic(eventbus.KindUser, userID), eventbus.Event{
		Channel: eventbus.KindUser, UserID: userID, Data: map[string]any{"trade": trade},
	})
	e.Bus.Publish(eventbus.Topic(eventbus.KindTrade, ""), eventbus.Event{Channel: eventbus.KindTrade, Symbol: e.Sym.Symbol, Data: trade})

	return &SwapResult{Trade: trade, Pool: pool, LargePriceImpact: large}, nil
}

func quantityLeg(q *Quote) decimal.Decimal {
	if q.Side == SideBuy {
		return q.AmountOut
	}
	return q.AmountInGross
}

func quoteLeg(q *Quote) decimal.Decimal {
	if q.Side == SideBuy {
		return q.AmountInGross
	}
	return q.AmountOut
}

// AddLiquidity executes spec §4.4 operation 3, refunding the excess of
// whichever side was over-supplied (Open Question #1, resolved in
// DESIGN.md: refund, never reject).
func (e *Engine) AddLiquidity(ctx context.Context, userID string, baseAmount, quoteAmount decimal.Decimal) (*LPPosition, error) {
	if !numeric.IsPositive(baseAmount) || !numeric.IsPositive(quoteAmount) {
		return nil, vegaerr.ErrMalformedAmount
	}
	pool, err := e.Pools.GetPoolBySymbolID(ctx, e.Sym.ID, true)
	if err != nil {
		return nil, err
	}

	var acceptedBase, acceptedQuote, minted decimal.Decimal
	empty := pool.ReserveBase.IsZero() && pool.ReserveQuote.IsZero()
	if empty {
		acceptedBase, acceptedQuote = baseAmount, quoteAmount
		minted = numeric.Sqrt(baseAmount.Mul(quoteAmount)).Sub(MinLPShares)
		if !minted.IsPositive() {
			return nil, vegaerr.ErrMalformedAmount.WithMessage("deposit too small relative to the minimum LP share floor")
		}
		pool.TotalLPShares = minted.Add(MinLPShares)
	} else {
		baseRatio := baseAmount.Div(pool.ReserveBase)
		quoteRatio := quoteAmount.Div(pool.ReserveQuote)
		ratio := decimal.Min(baseRatio, quoteRatio)
		acceptedBase = pool.ReserveBase.Mul(ratio)
		acceptedQuote = pool.ReserveQuote.Mul(ratio)
		minted = pool.TotalLPShares.Mul(ratio)
		pool.TotalLPShares = pool.TotalLPShares.Add(minted)
	}

	refundBase := baseAmount.Sub(acceptedBase)
	refundQuote := quoteAmount.Sub(acceptedQuote)

	if err := e.Ledger.Debit(ctx, userID, e.Sym.Base, acceptedBase); err != nil {
		return nil, err
	}
	if err := e.Ledger.Debit(ctx, userID, e.Sym.Quote, acceptedQuote); err != nil {
		return nil, err
	}
	_ = refundBase  // never locked/debited; nothing to refund back, the over-supplied amount was simply never taken
	_ = refundQuote

	pool.ReserveBase = pool.ReserveBase.Add(acceptedBase)
	pool.ReserveQuote = pool.ReserveQuote.Add(acceptedQuote)
	pool.recomputeK()
	if err := e.Pools.SavePool(ctx, pool); err != nil {
		return nil, err
	}
	e.invalidatePoolCache(ctx)

	pos, err := e.Pools.GetPosition(ctx, pool.PoolID, userID)
	if err != nil {
		return nil, err
	}
	pos.Shares = pos.Shares.Add(minted)
	pos.InitialBase = pos.InitialBase.Add(acceptedBase)
	pos.InitialQuote = pos.InitialQuote.Add(acceptedQuote)
	if err := e.Pools.SavePosition(ctx, pos); err != nil {
		return nil, err
	}

	e.Bus.Publish(eventbus.Topic(eventbus.KindPool, e.Sym.Symbol), eventbus.Event{
		Channel: eventbus.KindPool, Symbol: e.Sym.Symbol,
		Data: map[string]any{"reserve_base": pool.ReserveBase, "reserve_quote": pool.ReserveQuote, "total_lp_shares": pool.TotalLPShares},
	})
	e.Bus.Publish(eventbus.Topic(eventbus.KindUser, userID), eventbus.Event{
		Channel: eventbus.KindUser, UserID: userID, Data: map[string]any{"lp_position": pos},
	})

	return pos, nil
}

// RemoveLiquidity executes spec §4.4 operation 4.
func (e *Engine) RemoveLiquidity(ctx context.Context, userID string, lpShares decimal.Decimal) (baseOut, quoteOut decimal.Decimal, err error) {
	if !numeric.IsPositive(lpShares) {
		return decimal.Zero, decimal.Zero, vegaerr.ErrMalformedAmount
	}
	pool, err := e.Pools.GetPoolBySymbolID(ctx, e.Sym.ID, true)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	pos, err := e.Pools.GetPosition(ctx, pool.PoolID, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if pos.Shares.LessThan(lpShares) {
		return decimal.Zero, decimal.Zero, vegaerr.ErrInsufficientShares
	}

	share := lpShares.Div(pool.TotalLPShares)
	baseOut = pool.ReserveBase.Mul(share)
	quoteOut = pool.ReserveQuote.Mul(share)

	pool.ReserveBase = pool.ReserveBase.Sub(baseOut)
	pool.ReserveQuote = pool.ReserveQuote.Sub(quoteOut)
	pool.TotalLPShares = pool.TotalLPShares.Sub(lpShares)
	pool.recomputeK()
	if err := e.Pools.SavePool(ctx, pool); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	e.invalidatePoolCache(ctx)

	pos.Shares = pos.Shares.Sub(lpShares)
	initialBaseOut := pos.InitialBase.Mul(share)
	initialQuoteOut := pos.InitialQuote.Mul(share)
	pos.InitialBase = pos.InitialBase.Sub(initialBaseOut)
	pos.InitialQuote = pos.InitialQuote.Sub(initialQuoteOut)
	if pos.Shares.IsZero() {
		if err := e.Pools.DeletePosition(ctx, pool.PoolID, userID); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	} else if err := e.Pools.SavePosition(ctx, pos); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if err := e.Ledger.Credit(ctx, userID, e.Sym.Base, baseOut); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if err := e.Ledger.Credit(ctx, userID, e.Sym.Quote, quoteOut); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	e.Bus.Publish(eventbus.Topic(eventbus.KindPool, e.Sym.Symbol), eventbus.Event{
		Channel: eventbus.KindPool, Symbol: e.Sym.Symbol,
		Data: map[string]any{"reserve_base": pool.ReserveBase, "reserve_quote": pool.ReserveQuote, "total_lp_shares": pool.TotalLPShares},
	})
	e.Bus.Publish(eventbus.Topic(eventbus.KindUser, userID), eventbus.Event{
		Channel: eventbus.KindUser, UserID: userID, Data: map[string]any{"base_out": baseOut, "quote_out": quoteOut},
	})

	return baseOut, quoteOut, nil
}

// PositionView is the computed read model of SPEC_FULL.md §C.4: current
// payout value of a position versus what was deposited, for informational
// impermanent-loss reporting.
type PositionView struct {
	Position       *LPPosition
	CurrentBaseOut decimal.Decimal
	CurrentQuoteOut decimal.Decimal
	SpotPrice      decimal.Decimal
}

// GetPosition returns the read-only IL view for a user's LP position.
func (e *Engine) GetPosition(ctx context.Context, userID string) (*PositionView, error) {
	pool, err := e.Pools.GetPoolBySymbolID(ctx, e.Sym.ID, false)
	if err != nil {
		return nil, err
	}
	pos, err := e.Pools.GetPosition(ctx, pool.PoolID, userID)
	if err != nil {
		return nil, err
	}
	view := &PositionView{Position: pos, SpotPrice: pool.SpotPrice()}
	if !pool.TotalLPShares.IsZero() {
		share := pos.Shares.Div(pool.TotalLPShares)
		view.CurrentBaseOut = pool.ReserveBase.Mul(share)
		view.CurrentQuoteOut = pool.ReserveQuote.Mul(share)
	}
	return view, nil
}
