package amm

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/numeric"
	"github.com/davidting0918/VegaExchange/internal/storage"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// fakeLedger is an in-memory ledger.Ledger, letting Engine's mutating
// operations run as unit tests without a database.
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

// fund seeds an available balance directly, bypassing Credit's positive-
// amount check, for test setup.
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
	l.entry(userID, currency).available = l.entry(userID, currency).available.Add(amount)
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

// fakeRepository is an in-memory amm.Repository.
type fakeRepository struct {
	pools     map[uint64]*Pool
	positions map[string]*LPPosition
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{pools: make(map[uint64]*Pool), positions: make(map[string]*LPPosition)}
}

func (r *fakeRepository) posKey(poolID, userID string) string { return poolID + ":" + userID }

func (r *fakeRepository) GetPoolBySymbolID(ctx context.Context, symbolID uint64, forUpdate bool) (*Pool, error) {
	p, ok := r.pools[symbolID]
	if !ok {
		return nil, vegaerr.ErrUnknownSymbol
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepository) CreatePool(ctx context.Context, p *Pool) error {
	r.pools[p.SymbolID] = p
	return nil
}

func (r *fakeRepository) SavePool(ctx context.Context, p *Pool) error {
	r.pools[p.SymbolID] = p
	return nil
}

func (r *fakeRepository) GetPosition(ctx context.Context, poolID, userID string) (*LPPosition, error) {
	if pos, ok := r.positions[r.posKey(poolID, userID)]; ok {
		cp := *pos
		return &cp, nil
	}
	return &LPPosition{PoolID: poolID, UserID: userID, Shares: decimal.Zero, InitialBase: decimal.Zero, InitialQuote: decimal.Zero}, nil
}

func (r *fakeRepository) SavePosition(ctx context.Context, pos *LPPosition) error {
	r.positions[r.posKey(pos.PoolID, pos.UserID)] = pos
	return nil
}

func (r *fakeRepository) DeletePosition(ctx context.Context, poolID, userID string) error {
	delete(r.positions, r.posKey(poolID, userID))
	return nil
}

func (r *fakeRepository) PoolIDExists(ctx context.Context, poolID string) (bool, error) {
	for _, p := range r.pools {
		if p.PoolID == poolID {
			return true, nil
		}
	}
	return false, nil
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
		Engine: symbol.EngineAMM, Market: symbol.MarketSpot,
		PricePrecision: 8, QtyPrecision: 8, FeeRate: decimal.NewFromFloat(0.003),
	}
}

func newTestEngine(t *testing.T, pool *Pool) (*Engine, *fakeLedger, *fakeRepository, *fakeTradeRepository) {
	t.Helper()
	repo := newFakeRepository()
	repo.pools[1] = pool
	led := newFakeLedger()
	trades := &fakeTradeRepository{}
	eng := &Engine{
		Sym: testSym(), Ledger: led, Pools: repo, Trades: trades,
		Now:           func() time.Time { return time.Unix(1700000000, 0) },
		TradeIDExists: func(string) (bool, error) { return false, nil },
	}
	return eng, led, repo, trades
}

func TestEngineSwapMovesReservesAndCreditsLedger(t *testing.T) {
	pool := &Pool{PoolID: "pool1", SymbolID: 1, ReserveBase: decimal.NewFromInt(1000), ReserveQuote: decimal.NewFromInt(100000), FeeRate: decimal.NewFromFloat(0.003)}
	pool.recomputeK()
	eng, led, repo, trades := newTestEngine(t, pool)
	led.fund("alice", "USDT", decimal.NewFromInt(1000))

	amountIn := decimal.NewFromInt(1000)
	res, err := eng.Swap(context.Background(), "alice", QuoteRequest{Side: SideBuy, AmountIn: &amountIn}, nil)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !res.Pool.ReserveQuote.GreaterThan(pool.ReserveQuote) {
		t.Fatalf("expected reserve_quote to increase on a buy")
	}
	if !res.Pool.ReserveBase.LessThan(decimal.NewFromInt(1000)) {
		t.Fatalf("expected reserve_base to decrease on a buy")
	}
	avail, _, _ := led.GetBalance(context.Background(), "alice", "USDT")
	if !avail.IsZero() {
		t.Fatalf("expected alice's USDT available to be fully spent, got %s", avail.String())
	}
	baseAvail, _, _ := led.GetBalance(context.Background(), "alice", "BTC")
	if !baseAvail.Equal(res.Trade.Quantity) {
		t.Fatalf("expected alice's BTC credit to equal the trade quantity, got %s want %s", baseAvail.String(), res.Trade.Quantity.String())
	}
	if len(trades.trades) != 1 {
		t.Fatalf("expected exactly one inserted trade, got %d", len(trades.trades))
	}
	if repo.pools[1].ReserveBase.Equal(pool.ReserveBase) {
		t.Fatalf("expected SavePool to persist the mutated reserves")
	}
}

func TestEngineSwapRejectsSlippage(t *testing.T) {
	pool := &Pool{PoolID: "pool1", SymbolID: 1, ReserveBase: decimal.NewFromInt(1000), ReserveQuote: decimal.NewFromInt(100000), FeeRate: decimal.NewFromFloat(0.003)}
	pool.recomputeK()
	eng, led, _, _ := newTestEngine(t, pool)
	led.fund("alice", "USDT", decimal.NewFromInt(1000))

	amountIn := decimal.NewFromInt(1000)
	unreachable := decimal.NewFromInt(1000) // far above the achievable AmountOut
	_, err := eng.Swap(context.Background(), "alice", QuoteRequest{Side: SideBuy, AmountIn: &amountIn}, &unreachable)
	if err != vegaerr.ErrSlippageExceeded {
		t.Fatalf("Swap = %v, want ErrSlippageExceeded", err)
	}
}

func TestEngineSwapRejectsInsufficientFunds(t *testing.T) {
	pool := &Pool{PoolID: "pool1", SymbolID: 1, ReserveBase: decimal.NewFromInt(1000), ReserveQuote: decimal.NewFromInt(100000), FeeRate: decimal.NewFromFloat(0.003)}
	pool.recomputeK()
	eng, _, _, _ := newTestEngine(t, pool)
	// no funding

	amountIn := decimal.NewFromInt(1000)
	_, err := eng.Swap(context.Background(), "alice", QuoteRequest{Side: SideBuy, AmountIn: &amountIn}, nil)
	if err != vegaerr.ErrInsufficientFunds {
		t.Fatalf("Swap = %v, want ErrInsufficientFunds", err)
	}
}

func TestEngineAddLiquidityFirstDepositMintsSqrtMinusFloor(t *testing.T) {
	pool := &Pool{PoolID: "pool1", SymbolID: 1, ReserveBase: decimal.Zero, ReserveQuote: decimal.Zero, TotalLPShares: decimal.Zero, FeeRate: decimal.NewFromFloat(0.003)}
	eng, led, repo, _ := newTestEngine(t, pool)
	led.fund("lp1", "BTC", decimal.NewFromInt(10))
	led.fund("lp1", "USDT", decimal.NewFromInt(1000000))

	pos, err := eng.AddLiquidity(context.Background(), "lp1", decimal.NewFromInt(10), decimal.NewFromInt(1000000))
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	wantShares := numeric.Sqrt(decimal.NewFromInt(10).Mul(decimal.NewFromInt(1000000))).Sub(MinLPShares)
	if !pos.Shares.Equal(wantShares) {
		t.Fatalf("Shares = %s, want %s", pos.Shares.String(), wantShares.String())
	}
	if !repo.pools[1].TotalLPShares.Equal(wantShares.Add(MinLPShares)) {
		t.Fatalf("pool.TotalLPShares = %s, want %s", repo.pools[1].TotalLPShares.String(), wantShares.Add(MinLPShares).String())
	}
}

func TestEngineAddLiquidityProportionalDepositAcceptsMinRatio(t *testing.T) {
	pool := &Pool{PoolID: "pool1", SymbolID: 1, ReserveBase: decimal.NewFromInt(100), ReserveQuote: decimal.NewFromInt(10000), TotalLPShares: decimal.NewFromInt(1000), FeeRate: decimal.NewFromFloat(0.003)}
	eng, led, _, _ := newTestEngine(t, pool)
	led.fund("lp2", "BTC", decimal.NewFromInt(10))
	led.fund("lp2", "USDT", decimal.NewFromInt(2000)) // over-supplied relative to the 100:10000 ratio

	pos, err := eng.AddLiquidity(context.Background(), "lp2", decimal.NewFromInt(10), decimal.NewFromInt(2000))
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	// base ratio = 10/100 = 0.1; quote ratio = 2000/10000 = 0.2; min is 0.1
	if !pos.Shares.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("Shares = %s, want 100 (min-ratio deposit)", pos.Shares.String())
	}
	avail, _, _ := led.GetBalance(context.Background(), "lp2", "USDT")
	if !avail.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected the over-supplied USDT never to be debited, available = %s, want 1000", avail.String())
	}
}

func TestEngineRemoveLiquidityReturnsProportionalReservesAndCredits(t *testing.T) {
	pool := &Pool{PoolID: "pool1", SymbolID: 1, ReserveBase: decimal.NewFromInt(100), ReserveQuote: decimal.NewFromInt(10000), TotalLPShares: decimal.NewFromInt(1000), FeeRate: decimal.NewFromFloat(0.003)}
	eng, led, repo, _ := newTestEngine(t, pool)
	repo.positions[repo.posKey("pool1", "lp1")] = &LPPosition{PoolID: "pool1", UserID: "lp1", Shares: decimal.NewFromInt(500), InitialBase: decimal.NewFromInt(50), InitialQuote: decimal.NewFromInt(5000)}

	baseOut, quoteOut, err := eng.RemoveLiquidity(context.Background(), "lp1", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if !baseOut.Equal(decimal.NewFromInt(50)) || !quoteOut.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("baseOut/quoteOut = %s/%s, want 50/5000", baseOut.String(), quoteOut.String())
	}
	baseAvail, _, _ := led.GetBalance(context.Background(), "lp1", "BTC")
	if !baseAvail.Equal(baseOut) {
		t.Fatalf("expected BTC credit to equal baseOut, got %s", baseAvail.String())
	}
	if _, stillThere := repo.positions[repo.posKey("pool1", "lp1")]; stillThere {
		t.Fatalf("expected the fully-withdrawn position to be deleted")
	}
}

func TestEngineRemoveLiquidityRejectsMoreSharesThanHeld(t *testing.T) {
	pool := &Pool{PoolID: "pool1", SymbolID: 1, ReserveBase: decimal.NewFromInt(100), ReserveQuote: decimal.NewFromInt(10000), TotalLPShares: decimal.NewFromInt(1000), FeeRate: decimal.NewFromFloat(0.003)}
	eng, _, repo, _ := newTestEngine(t, pool)
	repo.positions[repo.posKey("pool1", "lp1")] = &LPPosition{PoolID: "pool1", UserID: "lp1", Shares: decimal.NewFromInt(10)}

	_, _, err := eng.RemoveLiquidity(context.Background(), "lp1", decimal.NewFromInt(500))
	if err != vegaerr.ErrInsufficientShares {
		t.Fatalf("RemoveLiquidity = %v, want ErrInsufficientShares", err)
	}
}
