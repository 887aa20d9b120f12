package clob

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/storage"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// fakeLedger is an in-memory ledger.Ledger for exercising PlaceOrder's
// lock/settle/credit flow without a database.
type fakeLedger struct {
	balances map[string]*bal
}

type bal struct {
	available, locked decimal.Decimal
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]*bal)}
}

func (l *fakeLedger) key(userID, currency string) string { return userID + ":" + currency }

func (l *fakeLedger) entry(userID, currency string) *bal {
	k := l.key(userID, currency)
	b, ok := l.balances[k]
	if !ok {
		b = &bal{available: decimal.Zero, locked: decimal.Zero}
		l.balances[k] = b
	}
	return b
}

func (l *fakeLedger) fund(userID, currency string, amount decimal.Decimal) {
	l.entry(userID, currency).available = amount
}

func (l *fakeLedger) GetBalance(ctx context.Context, userID, currency string) (decimal.Decimal, decimal.Decimal, error) {
	b := l.entry(userID, currency)
	return b.available, b.locked, nil
}

func (l *fakeLedger) Credit(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return vegaerr.ErrMalformedAmount
	}
	b := l.entry(userID, currency)
	b.available = b.available.Add(amount)
	return nil
}

func (l *fakeLedger) Debit(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return vegaerr.ErrMalformedAmount
	}
	b := l.entry(userID, currency)
	if b.available.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds
	}
	b.available = b.available.Sub(amount)
	return nil
}

func (l *fakeLedger) Lock(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	b := l.entry(userID, currency)
	if b.available.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds
	}
	b.available = b.available.Sub(amount)
	b.locked = b.locked.Add(amount)
	return nil
}

func (l *fakeLedger) Unlock(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	b := l.entry(userID, currency)
	if b.locked.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds
	}
	b.locked = b.locked.Sub(amount)
	b.available = b.available.Add(amount)
	return nil
}

func (l *fakeLedger) Settle(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	b := l.entry(userID, currency)
	if b.locked.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds
	}
	b.locked = b.locked.Sub(amount)
	return nil
}

func (l *fakeLedger) Transfer(ctx context.Context, fromUser, toUser, currency string, amount decimal.Decimal) error {
	if err := l.Debit(ctx, fromUser, currency, amount); err != nil {
		return err
	}
	return l.Credit(ctx, toUser, currency, amount)
}

// fakeRepository is an in-memory clob.Repository.
type fakeRepository struct {
	byID map[string]*Order
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: make(map[string]*Order)}
}

func (r *fakeRepository) Create(ctx context.Context, o *Order) error {
	r.byID[o.OrderID] = o
	return nil
}

func (r *fakeRepository) Save(ctx context.Context, o *Order) error {
	r.byID[o.OrderID] = o
	return nil
}

func (r *fakeRepository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	o, ok := r.byID[orderID]
	if !ok {
		return nil, vegaerr.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeRepository) FindByClientOrderID(ctx context.Context, userID string, symbolID uint64, clientOrderID string) (*Order, error) {
	if clientOrderID == "" {
		return nil, nil
	}
	for _, o := range r.byID {
		if o.UserID == userID && o.SymbolID == symbolID && o.ClientOrderID == clientOrderID {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeRepository) ListOpenBySymbol(ctx context.Context, symbolID uint64) ([]*Order, error) {
	var out []*Order
	for _, o := range r.byID {
		if o.SymbolID == symbolID && !o.IsTerminal() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepository) Exists(ctx context.Context, orderID string) (bool, error) {
	_, ok := r.byID[orderID]
	return ok, nil
}

// fakeTradeRepository is an in-memory storage.TradeRepository.
type fakeTradeRepository struct {
	trades []*storage.Trade
}

func (r *fakeTradeRepository) Insert(ctx context.Context, t *storage.Trade) error {
	r.trades = append(r.trades, t)
	return nil
}

func (r *fakeTradeRepository) Exists(ctx context.Context, tradeID string) (bool, error) {
	for _, t := range r.trades {
		if t.TradeID == tradeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTradeRepository) ListByUser(ctx context.Context, userID, symbolFilter string, engineFilter symbol.EngineKind, limit int) ([]*storage.Trade, error) {
	return r.trades, nil
}

func testSym() *symbol.Symbol {
	return &symbol.Symbol{
		ID: 1, Symbol: "BTC/USDT-USDT:SPOT", Base: "BTC", Quote: "USDT",
		Engine: symbol.EngineCLOB, Market: symbol.MarketSpot,
		PricePrecision: 8, QtyPrecision: 8, FeeRate: decimal.NewFromFloat(0.001),
		MinTradeAmount: decimal.NewFromFloat(0.0001), MaxTradeAmount: decimal.NewFromInt(1000000),
	}
}

var testSeq int

func newTestEngine(t *testing.T) (*Engine, *fakeLedger, *fakeRepository, *fakeTradeRepository, *Book) {
	t.Helper()
	led := newFakeLedger()
	orders := newFakeRepository()
	trades := &fakeTradeRepository{}
	book := NewBook(1)
	eng := &Engine{
		Sym: testSym(), Ledger: led, Orders: orders, Trades: trades, Book: book,
		Now: func() time.Time {
			testSeq++
			return time.Unix(1700000000+int64(testSeq), 0)
		},
		OrderIDExists: func(string) (bool, error) { return false, nil },
		TradeIDExists: func(string) (bool, error) { return false, nil },
	}
	return eng, led, orders, trades, book
}

// restingOrder inserts a maker order directly into both the book and the
// order repository, as Rehydrate would on process start.
func restingOrder(orders *fakeRepository, book *Book, id string, side Side, price, qty string) *Order {
	o := newTestOrder(id, side, price, qty)
	o.SymbolID = 1
	o.Symbol = "BTC/USDT-USDT:SPOT"
	o.UserID = "maker"
	orders.byID[id] = o
	book.insert(o)
	return o
}

func TestPlaceOrderLimitBuyCrossesAndSettles(t *testing.T) {
	eng, led, orders, trades, book := newTestEngine(t)
	restingOrder(orders, book, "ask1", SideSell, "100", "2")
	led.entry("maker", "BTC").locked = decimal.NewFromInt(2) // maker's base is already locked, as PlaceOrder would have left it
	led.fund("taker", "USDT", decimal.NewFromInt(1000))

	price := decimal.RequireFromString("100")
	res, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideBuy, Type: TypeLimit, Quantity: decimal.RequireFromString("1"), Price: &price,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected exactly one trade, got %d", len(res.Trades))
	}
	if res.Order.Status != StatusFilled {
		t.Fatalf("expected the taker to be fully filled, status = %s", res.Order.Status)
	}
	takerAvail, takerLocked, _ := led.GetBalance(context.Background(), "taker", "USDT")
	if !takerLocked.IsZero() {
		t.Fatalf("expected all of taker's locked USDT to be settled or unlocked, got %s locked", takerLocked.String())
	}
	if !takerAvail.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("taker USDT available = %s, want 900", takerAvail.String())
	}
	takerBaseAvail, _, _ := led.GetBalance(context.Background(), "taker", "BTC")
	wantBase := decimal.RequireFromString("1").Sub(decimal.RequireFromString("1").Mul(eng.Sym.FeeRate))
	if !takerBaseAvail.Equal(wantBase) {
		t.Fatalf("taker BTC available = %s, want %s (net of taker fee)", takerBaseAvail.String(), wantBase.String())
	}
	if trades.trades[0].Price.String() != "100" {
		t.Fatalf("expected the fill to execute at the maker's price, got %s", trades.trades[0].Price.String())
	}
	// the resting ask had 2, only 1 was taken
	_, asks := book.Depth(10)
	if len(asks) != 1 || !asks[0].Remaining.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected 1 remaining on the resting ask, got %+v", asks)
	}
}

func TestPlaceOrderLimitBuyReleasesPriceImprovement(t *testing.T) {
	eng, led, orders, _, book := newTestEngine(t)
	restingOrder(orders, book, "ask1", SideSell, "90", "5") // rests below the taker's limit price
	// maker's base is already locked, as PlaceOrder would have left it
	led.entry("maker", "BTC").locked = decimal.NewFromInt(5)
	led.fund("taker", "USDT", decimal.NewFromInt(1000))

	price := decimal.RequireFromString("100") // taker is willing to pay more than the maker asks
	_, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideBuy, Type: TypeLimit, Quantity: decimal.RequireFromString("2"), Price: &price,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	// 2*100 = 200 was locked; the fill executed at 90, so 2*10 = 20 price
	// improvement must have been released back to available rather than
	// left stranded in locked.
	avail, locked, _ := led.GetBalance(context.Background(), "taker", "USDT")
	if !locked.IsZero() {
		t.Fatalf("expected no locked USDT left after a full fill, got %s", locked.String())
	}
	if !avail.Equal(decimal.NewFromInt(820)) {
		t.Fatalf("taker USDT available = %s, want 820 (1000 - 2*90 settled)", avail.String())
	}
}

func TestPlaceOrderMarketBuyUnlocksUnspentEstimate(t *testing.T) {
	eng, led, orders, _, book := newTestEngine(t)
	restingOrder(orders, book, "ask1", SideSell, "100", "1") // book can only supply 1 of the 5 requested
	led.entry("maker", "BTC").locked = decimal.NewFromInt(1) // maker's base is already locked, as PlaceOrder would have left it
	led.fund("taker", "USDT", decimal.NewFromInt(1000))

	res, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideBuy, Type: TypeMarket, Quantity: decimal.RequireFromString("5"),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if res.Order.Status != StatusFilled {
		t.Fatalf("expected partial market fill to terminate as filled (the remainder cancels), status = %s", res.Order.Status)
	}
	if !res.Order.Filled.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("Filled = %s, want 1", res.Order.Filled.String())
	}
	avail, locked, _ := led.GetBalance(context.Background(), "taker", "USDT")
	if !locked.IsZero() {
		t.Fatalf("expected nothing left locked once the unfillable remainder cancels, got %s", locked.String())
	}
	if !avail.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("taker USDT available = %s, want 900 (1000 - 1*100 settled)", avail.String())
	}
	_, asks := book.Depth(10)
	if len(asks) != 0 {
		t.Fatalf("expected the resting ask to be fully consumed, got %+v", asks)
	}
}

func TestPlaceOrderLimitSellRestsWhenUncrossed(t *testing.T) {
	eng, led, _, _, book := newTestEngine(t)
	led.fund("taker", "BTC", decimal.NewFromInt(5))

	price := decimal.RequireFromString("200")
	res, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideSell, Type: TypeLimit, Quantity: decimal.RequireFromString("3"), Price: &price,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if len(res.Trades) != 0 {
		t.Fatalf("expected no trades against an empty book, got %d", len(res.Trades))
	}
	if res.Order.Status != StatusOpen {
		t.Fatalf("expected the order to rest open, status = %s", res.Order.Status)
	}
	_, locked, _ := led.GetBalance(context.Background(), "taker", "BTC")
	if !locked.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected the full sell quantity locked in base, got %s", locked.String())
	}
	_, asks := book.Depth(10)
	if len(asks) != 1 {
		t.Fatalf("expected the order to rest in the book, got %d ask levels", len(asks))
	}
}

func TestPlaceOrderRejectsQuantityBelowMinimum(t *testing.T) {
	eng, led, _, _, _ := newTestEngine(t)
	led.fund("taker", "BTC", decimal.NewFromInt(5))

	price := decimal.RequireFromString("200")
	_, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideSell, Type: TypeLimit, Quantity: decimal.RequireFromString("0.00001"), Price: &price,
	})
	if err != vegaerr.ErrQuantityBounds {
		t.Fatalf("PlaceOrder = %v, want ErrQuantityBounds", err)
	}
}

func TestPlaceOrderIdempotentOnRepeatedClientOrderID(t *testing.T) {
	eng, led, _, _, _ := newTestEngine(t)
	led.fund("taker", "BTC", decimal.NewFromInt(5))

	price := decimal.RequireFromString("200")
	req := PlaceOrderRequest{Side: SideSell, Type: TypeLimit, Quantity: decimal.RequireFromString("1"), Price: &price, ClientOrderID: "my-order-1"}
	first, err := eng.PlaceOrder(context.Background(), "taker", req)
	if err != nil {
		t.Fatalf("first PlaceOrder: %v", err)
	}
	second, err := eng.PlaceOrder(context.Background(), "taker", req)
	if err != nil {
		t.Fatalf("second PlaceOrder: %v", err)
	}
	if second.Order.OrderID != first.Order.OrderID {
		t.Fatalf("expected the same client_order_id to return the original order, got a new one")
	}
	_, locked, _ := led.GetBalance(context.Background(), "taker", "BTC")
	if !locked.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected funds locked only once despite two calls, locked = %s", locked.String())
	}
}

func TestCancelOrderUnlocksRemainingAndRemovesFromBook(t *testing.T) {
	eng, led, orders, _, book := newTestEngine(t)
	led.fund("taker", "BTC", decimal.NewFromInt(5))
	price := decimal.RequireFromString("200")
	placed, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideSell, Type: TypeLimit, Quantity: decimal.RequireFromString("3"), Price: &price,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	cancelled, err := eng.CancelOrder(context.Background(), "taker", placed.Order.OrderID)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	_, locked, _ := led.GetBalance(context.Background(), "taker", "BTC")
	if !locked.IsZero() {
		t.Fatalf("expected all locked BTC to be released, got %s", locked.String())
	}
	_, asks := book.Depth(10)
	if len(asks) != 0 {
		t.Fatalf("expected the order to be removed from the book, got %d ask levels", len(asks))
	}
	if _, err := orders.GetByOrderID(context.Background(), placed.Order.OrderID); err != nil {
		t.Fatalf("GetByOrderID after cancel: %v", err)
	}
}

func TestCancelOrderRejectsWrongUser(t *testing.T) {
	eng, led, _, _, _ := newTestEngine(t)
	led.fund("taker", "BTC", decimal.NewFromInt(5))
	price := decimal.RequireFromString("200")
	placed, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideSell, Type: TypeLimit, Quantity: decimal.RequireFromString("3"), Price: &price,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	_, err = eng.CancelOrder(context.Background(), "someone-else", placed.Order.OrderID)
	if err != vegaerr.ErrOrderNotFound {
		t.Fatalf("CancelOrder = %v, want ErrOrderNotFound", err)
	}
}

func TestCancelOrderRejectsTerminalOrder(t *testing.T) {
	eng, led, orders, _, book := newTestEngine(t)
	restingOrder(orders, book, "ask1", SideSell, "100", "1")
	led.entry("maker", "BTC").locked = decimal.NewFromInt(1) // maker's base is already locked, as PlaceOrder would have left it
	led.fund("taker", "USDT", decimal.NewFromInt(1000))

	placed, err := eng.PlaceOrder(context.Background(), "taker", PlaceOrderRequest{
		Side: SideBuy, Type: TypeMarket, Quantity: decimal.RequireFromString("1"),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if placed.Order.Status != StatusFilled {
		t.Fatalf("expected the market order to be fully filled, status = %s", placed.Order.Status)
	}

	_, err = eng.CancelOrder(context.Background(), "taker", placed.Order.OrderID)
	if err != vegaerr.ErrOrderNotCancellable {
		t.Fatalf("CancelOrder = %v, want ErrOrderNotCancellable", err)
	}
}
