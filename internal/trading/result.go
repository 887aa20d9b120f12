package trading

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/storage"
	"github.com/davidting0918/VegaExchange/internal/symbol"
)

// TradeResult is the uniform shape the router hands back to HTTP callers
// regardless of which engine produced it, per spec §4.6: "the router
// surfaces one uniform Trade Result shape to HTTP callers (§6) regardless
// of engine kind."
type TradeResult struct {
	TradeID            string
	Symbol             string
	Engine             symbol.EngineKind
	Side               int
	Price              decimal.Decimal
	Quantity           decimal.Decimal
	QuoteAmount        decimal.Decimal
	FeeAmount          decimal.Decimal
	FeeAsset           string
	CounterpartyUserID string
	Tags               string
	CreatedAt          time.Time
}

func resultFromTrade(t *storage.Trade) *TradeResult {
	return &TradeResult{
		TradeID: t.TradeID, Symbol: t.Symbol, Engine: t.Engine, Side: t.Side,
		Price: t.Price, Quantity: t.Quantity, QuoteAmount: t.QuoteAmount,
		FeeAmount: t.FeeAmount, FeeAsset: t.FeeAsset, CounterpartyUserID: t.CounterpartyUserID,
		Tags: t.Tags, CreatedAt: t.CreatedAt,
	}
}

func resultsFromTrades(ts []*storage.Trade) []*TradeResult {
	out := make([]*TradeResult, 0, len(ts))
	for _, t := range ts {
		out = append(out, resultFromTrade(t))
	}
	return out
}
