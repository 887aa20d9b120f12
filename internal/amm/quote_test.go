package amm

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testPool() *Pool {
	return &Pool{
		ReserveBase:  decimal.NewFromInt(1000),
		ReserveQuote: decimal.NewFromInt(100000),
		FeeRate:      decimal.NewFromFloat(0.003),
	}
}

func TestEvaluateQuoteBuyChargesFeeOnInput(t *testing.T) {
	pool := testPool()
	amountIn := decimal.NewFromInt(1000)
	q, err := EvaluateQuote(pool, QuoteRequest{Side: SideBuy, AmountIn: &amountIn})
	if err != nil {
		t.Fatalf("EvaluateQuote: %v", err)
	}
	wantFee := amountIn.Mul(pool.FeeRate)
	if !q.Fee.Equal(wantFee) {
		t.Fatalf("Fee = %s, want %s", q.Fee.String(), wantFee.String())
	}
	if !q.AmountOut.IsPositive() {
		t.Fatalf("expected a positive AmountOut")
	}
	if q.AmountOut.GreaterThanOrEqual(pool.ReserveBase) {
		t.Fatalf("AmountOut must never reach the full reserve")
	}
}

func TestEvaluateQuoteBuyPushesExecutionPriceAboveSpot(t *testing.T) {
	pool := testPool()
	amountIn := decimal.NewFromInt(1000)
	q, err := EvaluateQuote(pool, QuoteRequest{Side: SideBuy, AmountIn: &amountIn})
	if err != nil {
		t.Fatalf("EvaluateQuote: %v", err)
	}
	if !q.ExecutionPrice.GreaterThan(q.SpotPriceBefore) {
		t.Fatalf("a buy should execute above the pre-trade spot price: exec=%s spot=%s",
			q.ExecutionPrice.String(), q.SpotPriceBefore.String())
	}
	if !q.PriceImpact.IsPositive() {
		t.Fatalf("expected a positive price impact")
	}
}

func TestEvaluateQuoteSellPushesExecutionPriceBelowSpot(t *testing.T) {
	pool := testPool()
	amountIn := decimal.NewFromInt(10)
	q, err := EvaluateQuote(pool, QuoteRequest{Side: SideSell, AmountIn: &amountIn})
	if err != nil {
		t.Fatalf("EvaluateQuote: %v", err)
	}
	if !q.ExecutionPrice.LessThan(q.SpotPriceBefore) {
		t.Fatalf("a sell should execute below the pre-trade spot price: exec=%s spot=%s",
			q.ExecutionPrice.String(), q.SpotPriceBefore.String())
	}
}

func TestEvaluateQuoteRejectsBothAmountsSet(t *testing.T) {
	pool := testPool()
	in := decimal.NewFromInt(1)
	out := decimal.NewFromInt(1)
	if _, err := EvaluateQuote(pool, QuoteRequest{Side: SideBuy, AmountIn: &in, AmountOut: &out}); err == nil {
		t.Fatalf("expected an error when both amount_in and amount_out are set")
	}
}

func TestEvaluateQuoteRejectsNeitherAmountSet(t *testing.T) {
	pool := testPool()
	if _, err := EvaluateQuote(pool, QuoteRequest{Side: SideBuy}); err == nil {
		t.Fatalf("expected an error when neither amount_in nor amount_out is set")
	}
}

func TestEvaluateQuoteRejectsEmptyPool(t *testing.T) {
	pool := &Pool{ReserveBase: decimal.Zero, ReserveQuote: decimal.Zero, FeeRate: decimal.NewFromFloat(0.003)}
	in := decimal.NewFromInt(1)
	if _, err := EvaluateQuote(pool, QuoteRequest{Side: SideBuy, AmountIn: &in}); err == nil {
		t.Fatalf("expected an error quoting against an empty pool")
	}
}

func TestEvaluateQuoteInverseAmountOutIsConsistent(t *testing.T) {
	pool := testPool()
	desiredOut := decimal.NewFromInt(5)
	q, err := EvaluateQuote(pool, QuoteRequest{Side: SideBuy, AmountOut: &desiredOut})
	if err != nil {
		t.Fatalf("EvaluateQuote: %v", err)
	}
	if !q.AmountOut.Sub(desiredOut).Abs().LessThan(decimal.NewFromFloat(0.0000001)) {
		t.Fatalf("inverse quote's AmountOut = %s, want ~%s", q.AmountOut.String(), desiredOut.String())
	}
}

func TestEvaluateQuoteRejectsAmountOutAtOrAboveReserve(t *testing.T) {
	pool := testPool()
	tooMuch := pool.ReserveBase
	if _, err := EvaluateQuote(pool, QuoteRequest{Side: SideBuy, AmountOut: &tooMuch}); err == nil {
		t.Fatalf("expected an error requesting the entire base reserve")
	}
}
