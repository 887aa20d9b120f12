package amm

import (
	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/numeric"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// QuoteRequest describes one quote, direct or inverse. Exactly one of
// AmountIn / AmountOut must be set, per spec §4.4 operation 1.
type QuoteRequest struct {
	Side      Side
	AmountIn  *decimal.Decimal // gross input: quote for a buy, base for a sell
	AmountOut *decimal.Decimal // desired output: triggers inverse mode
}

// Quote is the pure (no-mutation) result of evaluating the constant-product
// curve against a pool's current reserves.
type Quote struct {
	Side            Side
	AmountInGross   decimal.Decimal
	AmountOut       decimal.Decimal
	Fee             decimal.Decimal // charged in the input asset
	ExecutionPrice  decimal.Decimal // quote per base, for this fill
	SpotPriceBefore decimal.Decimal
	PriceImpact     decimal.Decimal // |execution - spot| / spot
}

// EvaluateQuote runs the pure formulas of spec §4.4 operation 1 against the
// pool's current reserves. It never mutates pool.
func EvaluateQuote(pool *Pool, req QuoteRequest) (*Quote, error) {
	if pool.ReserveBase.IsZero() || pool.ReserveQuote.IsZero() {
		return nil, vegaerr.ErrInsufficientLiquidity.WithMessage("pool has no reserves")
	}
	if (req.AmountIn == nil) == (req.AmountOut == nil) {
		return nil, vegaerr.ErrMissingParameter.WithMessage("exactly one of amount_in or amount_out is required")
	}

	spot := pool.SpotPrice()
	oneMinusFee := decimal.NewFromInt(1).Sub(pool.FeeRate)

	switch req.Side {
	case SideBuy:
		var quoteIn decimal.Decimal
		if req.AmountIn != nil {
			quoteIn = *req.AmountIn
		} else {
			baseOut := *req.AmountOut
			if baseOut.GreaterThanOrEqual(pool.ReserveBase) {
				return nil, vegaerr.ErrInsufficientLiquidity
			}
			quoteInEff := pool.ReserveQuote.Mul(baseOut).Div(pool.ReserveBase.Sub(baseOut))
			quoteIn = quoteInEff.Div(oneMinusFee)
		}
		if !numeric.IsPositive(quoteIn) {
			return nil, vegaerr.ErrMalformedAmount
		}
		quoteInEff := quoteIn.Mul(oneMinusFee)
		// The output is truncated, never rounded up, so the pool never pays
		// out more than the exact curve allows and k cannot fall.
		baseOut, _ := pool.ReserveBase.Mul(quoteInEff).QuoRem(pool.ReserveQuote.Add(quoteInEff), int32(decimal.DivisionPrecision))
		if baseOut.GreaterThanOrEqual(pool.ReserveBase) {
			return nil, vegaerr.ErrInsufficientLiquidity
		}
		fee := quoteIn.Mul(pool.FeeRate)
		execPrice := quoteIn.Div(baseOut)
		return &Quote{
			Side: SideBuy, AmountInGross: quoteIn, AmountOut: baseOut, Fee: fee,
			ExecutionPrice: execPrice, SpotPriceBefore: spot, PriceImpact: priceImpact(execPrice, spot),
		}, nil

	case SideSell:
		var baseIn decimal.Decimal
		if req.AmountIn != nil {
			baseIn = *req.AmountIn
		} else {
			quoteOut := *req.AmountOut
			if quoteOut.GreaterThanOrEqual(pool.ReserveQuote) {
				return nil, vegaerr.ErrInsufficientLiquidity
			}
			baseInEff := pool.ReserveBase.Mul(quoteOut).Div(pool.ReserveQuote.Sub(quoteOut))
			baseIn = baseInEff.Div(oneMinusFee)
		}
		if !numeric.IsPositive(baseIn) {
			return nil, vegaerr.ErrMalformedAmount
		}
		baseInEff := baseIn.Mul(oneMinusFee)
		quoteOut, _ := pool.ReserveQuote.Mul(baseInEff).QuoRem(pool.ReserveBase.Add(baseInEff), int32(decimal.DivisionPrecision))
		if quoteOut.GreaterThanOrEqual(pool.ReserveQuote) {
			return nil, vegaerr.ErrInsufficientLiquidity
		}
		fee := baseIn.Mul(pool.FeeRate)
		execPrice := quoteOut.Div(baseIn)
		return &Quote{
			Side: SideSell, AmountInGross: baseIn, AmountOut: quoteOut, Fee: fee,
			ExecutionPrice: execPrice, SpotPriceBefore: spot, PriceImpact: priceImpact(execPrice, spot),
		}, nil
	}
	return nil, vegaerr.ErrMissingParameter.WithMessage("unknown side")
}

func priceImpact(execPrice, spot decimal.Decimal) decimal.Decimal {
	if spot.IsZero() {
		return decimal.Zero
	}
	return execPrice.Sub(spot).Abs().Div(spot)
}
