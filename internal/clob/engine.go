package clob

import (
	"context"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/eventbus"
	"github.com/davidting0918/VegaExchange/internal/ledger"
	"github.com/davidting0918/VegaExchange/internal/numeric"
	"github.com/davidting0918/VegaExchange/internal/storage"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// Engine orchestrates spec §4.5's operations against one symbol's Book.
// Like amm.Engine, every mutating method assumes the router already holds
// the symbol mutex and an open transaction.
type Engine struct {
	Sym      *symbol.Symbol
	Ledger   ledger.Ledger
	Orders   Repository
	Trades   storage.TradeRepository
	Book          *Book
	Bus           *eventbus.Outbox // buffers events until the enclosing transaction commits
	Now           func() time.Time
	OrderIDExists numeric.Exists
	TradeIDExists numeric.Exists
}

// QuoteResult is the pure, no-mutation result of spec §4.5 operation 1.
type QuoteResult struct {
	Side               Side
	RequestedQuantity  decimal.Decimal
	AchievableQuantity decimal.Decimal
	VWAP               decimal.Decimal
	FullyFilled        bool
}

// Quote walks the opposite ladder without mutating it.
func (e *Engine) Quote(side Side, quantity decimal.Decimal) (*QuoteResult, error) {
	if !numeric.IsPositive(quantity) {
		return nil, vegaerr.ErrMalformedAmount
	}
	remaining := quantity
	notional := decimal.Zero
	achievable := decimal.Zero
	walk := func(price, levelRemaining decimal.Decimal) bool {
		take := decimal.Min(remaining, levelRemaining)
		notional = notional.Add(take.Mul(price))
		achievable = achievable.Add(take)
		remaining = remaining.Sub(take)
		return remaining.IsPositive()
	}
	if side == SideBuy {
		e.Book.asks.Ascend(func(i btree.Item) bool {
			lv := i.(askItem).lvl
			return walk(lv.price, lv.remaining)
		})
	} else {
		e.Book.bids.Ascend(func(i btree.Item) bool {
			lv := i.(bidItem).lvl
			return walk(lv.price, lv.remaining)
		})
	}
	vwap := decimal.Zero
	if achievable.IsPositive() {
		vwap = notional.Div(achievable)
	}
	return &QuoteResult{
		Side: side, RequestedQuantity: quantity, AchievableQuantity: achievable,
		VWAP: vwap, FullyFilled: !remaining.IsPositive(),
	}, nil
}

// PlaceOrderRequest is the input to PlaceOrder.
type PlaceOrderRequest struct {
	Side          Side
	Type          OrderType
	Quantity      decimal.Decimal
	Price         *decimal.Decimal // required for TypeLimit
	ClientOrderID string
	TimeInForce   TimeInForce
}

// PlaceResult bundles the resulting order and every trade it produced, in
// arrival order, for the router to shape into the uniform Trade Result.
type PlaceResult struct {
	Order  *Order
	Trades []*storage.Trade
}

// PlaceOrder executes spec §4.5 operation 2.
func (e *Engine) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*PlaceResult, error) {
	if e.Sym.Market != symbol.MarketSpot {
		return nil, vegaerr.ErrEngineDisabled.WithMessage("CLOB matching is only enabled for spot markets")
	}
	if !numeric.IsPositive(req.Quantity) {
		return nil, vegaerr.ErrMalformedAmount
	}
	if req.Quantity.LessThan(e.Sym.MinTradeAmount) || req.Quantity.GreaterThan(e.Sym.MaxTradeAmount) {
		return nil, vegaerr.ErrQuantityBounds
	}
	if req.Type == TypeLimit {
		if req.Price == nil || !numeric.IsPositive(*req.Price) {
			return nil, vegaerr.ErrInvalidPrice
		}
	}

	if req.ClientOrderID != "" {
		if existing, err := e.Orders.FindByClientOrderID(ctx, userID, e.Sym.ID, req.ClientOrderID); err != nil {
			return nil, err
		} else if existing != nil {
			return &PlaceResult{Order: existing}, nil
		}
	}

	tif := req.TimeInForce
	if tif == "" {
		if req.Type == TypeMarket {
			tif = TIFIOC
		} else {
			tif = TIFGTC
		}
	}

	orderID, err := numeric.MintTimestampID(e.OrderIDExists, e.Now())
	if err != nil {
		return nil, err
	}
	taker := &Order{
		OrderID: orderID, ClientOrderID: req.ClientOrderID, SymbolID: e.Sym.ID, Symbol: e.Sym.Symbol,
		UserID: userID, Side: req.Side, Type: req.Type, TimeInForce: tif,
		Quantity: req.Quantity, Filled: decimal.Zero, Remaining: req.Quantity, Status: StatusOpen,
	}
	if req.Price != nil {
		taker.Price = *req.Price
	}

	lockedQuote, err := e.lockForTaker(ctx, taker)
	if err != nil {
		return nil, err
	}
	if err := e.Orders.Create(ctx, taker); err != nil {
		return nil, err
	}

	trades, spentQuote, err := e.match(ctx, taker)
	if err != nil {
		return nil, err
	}

	if err := e.finalizeTaker(ctx, taker, lockedQuote, spentQuote); err != nil {
		return nil, err
	}
	if err := e.Orders.Save(ctx, taker); err != nil {
		return nil, err
	}

	e.publishOrderBook()
	for _, t := range trades {
		e.Bus.Publish(eventbus.Topic(eventbus.KindUser, t.UserID), eventbus.Event{Channel: eventbus.KindUser, UserID: t.UserID, Data: map[string]any{"trade": t}})
		if t.CounterpartyUserID != "" {
			e.Bus.Publish(eventbus.Topic(eventbus.KindUser, t.CounterpartyUserID), eventbus.Event{Channel: eventbus.KindUser, UserID: t.CounterpartyUserID, Data: map[string]any{"trade": t}})
		}
		e.Bus.Publish(eventbus.Topic(eventbus.KindTrade, ""), eventbus.Event{Channel: eventbus.KindTrade, Symbol: e.Sym.Symbol, Data: t})
	}

	return &PlaceResult{Order: taker, Trades: trades}, nil
}

// lockForTaker locks the funds a new taker order requires before it can
// enter the matching loop, per spec §4.5 operation 2's preconditions.
// Returns the quote amount locked for a market buy's best-path estimate
// (zero otherwise — limit buys lock an exact, known amount).
func (e *Engine) lockForTaker(ctx context.Context, taker *Order) (decimal.Decimal, error) {
	switch {
	case taker.Side == SideBuy && taker.Type == TypeLimit:
		cost := taker.Price.Mul(taker.Quantity)
		return decimal.Zero, e.Ledger.Lock(ctx, taker.UserID, e.Sym.Quote, cost)
	case taker.Side == SideSell:
		return decimal.Zero, e.Ledger.Lock(ctx, taker.UserID, e.Sym.Base, taker.Quantity)
	default: // market buy
		estimate := e.estimateMarketBuyCost(taker.Quantity)
		if !estimate.IsPositive() {
			return decimal.Zero, nil
		}
		if err := e.Ledger.Lock(ctx, taker.UserID, e.Sym.Quote, estimate); err != nil {
			return decimal.Zero, err
		}
		return estimate, nil
	}
}

func (e *Engine) estimateMarketBuyCost(quantity decimal.Decimal) decimal.Decimal {
	remaining := quantity
	cost := decimal.Zero
	e.Book.asks.Ascend(func(i btree.Item) bool {
		lv := i.(askItem).lvl
		take := decimal.Min(remaining, lv.remaining)
		cost = cost.Add(take.Mul(lv.price))
		remaining = remaining.Sub(take)
		return remaining.IsPositive()
	})
	return cost
}

// match runs the price-time matching loop of spec §4.5 operation 2 until
// taker has no remaining quantity or the opposite ladder is exhausted or
// uncrossed. It returns every trade produced and, for a market buy, the
// cumulative gross quote actually spent (to reconcile against the
// best-path lock in finalizeTaker).
func (e *Engine) match(ctx context.Context, taker *Order) ([]*storage.Trade, decimal.Decimal, error) {
	var trades []*storage.Trade
	spentQuote := decimal.Zero

	for numeric.IsPositive(taker.Remaining) {
		oppLevel := e.Book.bestOpposite(taker.Side)
		if oppLevel == nil {
			break
		}
		if taker.Type == TypeLimit {
			crossed := taker.Price.GreaterThanOrEqual(oppLevel.price)
			if taker.Side == SideSell {
				crossed = taker.Price.LessThanOrEqual(oppLevel.price)
			}
			if !crossed {
				break
			}
		}
		maker := oppLevel.frontOrder()
		if maker == nil {
			break
		}

		fillQty := decimal.Min(taker.Remaining, maker.Remaining)
		if !fillQty.IsPositive() {
			break
		}
		execPrice := maker.Price
		quoteAmt := fillQty.Mul(execPrice)

		if err := e.settleFill(ctx, taker, maker, fillQty, quoteAmt); err != nil {
			return nil, decimal.Zero, err
		}
		if taker.Side == SideBuy {
			spentQuote = spentQuote.Add(quoteAmt)
			if taker.Type == TypeLimit {
				// taker.Price*fillQty was locked for this fill but only
				// execPrice*fillQty was settled; release the price
				// improvement now rather than leaking it in locked funds.
				improvement := taker.Price.Sub(execPrice).Mul(fillQty)
				if improvement.IsPositive() {
					if err := e.Ledger.Unlock(ctx, taker.UserID, e.Sym.Quote, improvement); err != nil {
						return nil, decimal.Zero, err
					}
				}
			}
		}

		now := e.Now()
		maker.Filled = maker.Filled.Add(fillQty)
		maker.Remaining = maker.Remaining.Sub(fillQty)
		e.Book.shrink(maker.OrderID, fillQty)
		if maker.Remaining.IsZero() {
			maker.Status = StatusFilled
			maker.FilledAt = &now
			e.Book.remove(maker.OrderID)
		} else {
			maker.Status = StatusPartial
		}
		if err := e.Orders.Save(ctx, maker); err != nil {
			return nil, decimal.Zero, err
		}

		taker.Filled = taker.Filled.Add(fillQty)
		taker.Remaining = taker.Remaining.Sub(fillQty)
		if taker.Remaining.IsZero() {
			taker.Status = StatusFilled
			taker.FilledAt = &now
		} else {
			taker.Status = StatusPartial
		}

		trade, err := e.recordTrade(ctx, taker, maker, execPrice, fillQty, quoteAmt)
		if err != nil {
			return nil, decimal.Zero, err
		}
		trades = append(trades, trade)
	}
	return trades, spentQuote, nil
}

// settleFill moves settled funds between taker and maker, deducting each
// side's fee from the asset it receives, per spec §4.5 operation 2.
func (e *Engine) settleFill(ctx context.Context, taker, maker *Order, fillQty, quoteAmt decimal.Decimal) error {
	fee := e.Sym.FeeRate
	if taker.Side == SideBuy {
		if err := e.Ledger.Settle(ctx, taker.UserID, e.Sym.Quote, quoteAmt); err != nil {
			return err
		}
		makerFee := quoteAmt.Mul(fee)
		if err := e.Ledger.Credit(ctx, maker.UserID, e.Sym.Quote, quoteAmt.Sub(makerFee)); err != nil {
			return err
		}
		if err := e.Ledger.Settle(ctx, maker.UserID, e.Sym.Base, fillQty); err != nil {
			return err
		}
		takerFee := fillQty.Mul(fee)
		return e.Ledger.Credit(ctx, taker.UserID, e.Sym.Base, fillQty.Sub(takerFee))
	}
	if err := e.Ledger.Settle(ctx, taker.UserID, e.Sym.Base, fillQty); err != nil {
		return err
	}
	takerFee := quoteAmt.Mul(fee)
	if err := e.Ledger.Credit(ctx, taker.UserID, e.Sym.Quote, quoteAmt.Sub(takerFee)); err != nil {
		return err
	}
	if err := e.Ledger.Settle(ctx, maker.UserID, e.Sym.Quote, quoteAmt); err != nil {
		return err
	}
	makerFee := fillQty.Mul(fee)
	return e.Ledger.Credit(ctx, maker.UserID, e.Sym.Base, fillQty.Sub(makerFee))
}

func (e *Engine) recordTrade(ctx context.Context, taker, maker *Order, execPrice, fillQty, quoteAmt decimal.Decimal) (*storage.Trade, error) {
	tradeID, err := numeric.MintTimestampID(e.TradeIDExists, e.Now())
	if err != nil {
		return nil, err
	}
	feeAsset := e.Sym.Base
	fee := fillQty.Mul(e.Sym.FeeRate)
	if taker.Side == SideSell {
		feeAsset = e.Sym.Quote
		fee = quoteAmt.Mul(e.Sym.FeeRate)
	}
	trade := &storage.Trade{
		TradeID: tradeID, SymbolID: e.Sym.ID, Symbol: e.Sym.Symbol,
		UserID: taker.UserID, CounterpartyUserID: maker.UserID, Side: int(taker.Side),
		Engine: symbol.EngineCLOB, Price: numeric.RoundDisplay(execPrice, e.Sym.PricePrecision),
		Quantity: fillQty, QuoteAmount: numeric.RoundDown(quoteAmt, e.Sym.PricePrecision),
		FeeAmount: numeric.RoundDown(fee, e.Sym.QtyPrecision), FeeAsset: feeAsset,
		Status: storage.TradeStatusExecuted,
	}
	if err := e.Trades.Insert(ctx, trade); err != nil {
		return nil, err
	}
	return trade, nil
}

// finalizeTaker applies the terminal handling of spec §4.5 operation 2:
// a limit remainder rests in the book, a market remainder is cancelled
// and any over-locked quote estimate is returned.
func (e *Engine) finalizeTaker(ctx context.Context, taker *Order, lockedQuote, spentQuote decimal.Decimal) error {
	if !numeric.IsPositive(taker.Remaining) {
		return nil
	}
	if taker.Type == TypeLimit {
		if taker.Filled.IsZero() {
			taker.Status = StatusOpen
		} else {
			taker.Status = StatusPartial
		}
		e.Book.insert(taker)
		return nil
	}

	now := e.Now()
	if taker.Side == SideBuy {
		leftover := lockedQuote.Sub(spentQuote)
		if leftover.IsPositive() {
			if err := e.Ledger.Unlock(ctx, taker.UserID, e.Sym.Quote, leftover); err != nil {
				return err
			}
		}
	} else {
		if err := e.Ledger.Unlock(ctx, taker.UserID, e.Sym.Base, taker.Remaining); err != nil {
			return err
		}
	}
	if taker.Filled.IsPositive() {
		taker.Status = StatusFilled
		taker.FilledAt = &now
	} else {
		taker.Status = StatusCancelled
	}
	taker.CancelledAt = &now
	return nil
}

// CancelOrder executes spec §4.5 operation 3.
func (e *Engine) CancelOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	order, err := e.Orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, vegaerr.ErrOrderNotFound
	}
	if order.IsTerminal() {
		return nil, vegaerr.ErrOrderNotCancellable
	}

	if order.Side == SideBuy {
		if err := e.Ledger.Unlock(ctx, userID, e.Sym.Quote, order.Price.Mul(order.Remaining)); err != nil {
			return nil, err
		}
	} else {
		if err := e.Ledger.Unlock(ctx, userID, e.Sym.Base, order.Remaining); err != nil {
			return nil, err
		}
	}

	e.Book.remove(order.OrderID)
	now := e.Now()
	order.Status = StatusCancelled
	order.CancelledAt = &now
	if err := e.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	e.publishOrderBook()
	return order, nil
}

// Depth executes spec §4.5 operation 4.
func (e *Engine) Depth(n int) (bids, asks []DepthLevel) {
	return e.Book.Depth(n)
}

func (e *Engine) publishOrderBook() {
	bids, asks := e.Book.Depth(20)
	e.Bus.Publish(eventbus.Topic(eventbus.KindOrderBook, e.Sym.Symbol), eventbus.Event{
		Channel: eventbus.KindOrderBook, Symbol: e.Sym.Symbol, Data: map[string]any{"bids": bids, "asks": asks},
	})
}
