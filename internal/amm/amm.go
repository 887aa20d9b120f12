// Package amm implements the constant-product AMM engine of spec §4.4:
// pool state, LP accounting, and the Quote/Swap/AddLiquidity/RemoveLiquidity
// operations. No pack example implements an AMM, so the math here is
// derived directly from the x·y=k formulas; the package is shaped the way
// the teacher shapes a domain package (pure state in this file, use-case
// orchestration in engine.go), and persistence follows the ledger/symbol
// packages' own Repository + GormRepository convention.
package amm

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// MinLPShares is the permanent minimum locked into a pool on first deposit,
// per spec §4.4: "mint sqrt(base·quote) LP shares minus a small permanent
// minimum (MIN_LP_SHARES = 1e-9 locked into the pool)".
var MinLPShares = decimal.New(1, -9)

// Side mirrors the HTTP wire encoding of spec §6 ("side: 0|1").
type Side int

const (
	SideBuy  Side = 0 // caller pays quote, receives base
	SideSell Side = 1 // caller pays base, receives quote
)

// Pool is the persisted constant-product pool row.
type Pool struct {
	ID                  uint64          `gorm:"primaryKey;autoIncrement"`
	PoolID              string          `gorm:"column:pool_id;type:varchar(42);uniqueIndex;not null"`
	SymbolID            uint64          `gorm:"column:symbol_id;uniqueIndex;not null"`
	ReserveBase         decimal.Decimal `gorm:"column:reserve_base;type:numeric(36,18);not null"`
	ReserveQuote        decimal.Decimal `gorm:"column:reserve_quote;type:numeric(36,18);not null"`
	K                   decimal.Decimal `gorm:"column:k;type:numeric(72,18);not null"`
	FeeRate             decimal.Decimal `gorm:"column:fee_rate;type:numeric(36,18);not null"`
	TotalLPShares       decimal.Decimal `gorm:"column:total_lp_shares;type:numeric(36,18);not null"`
	VolumeBase          decimal.Decimal `gorm:"column:volume_base;type:numeric(36,18);not null"`
	VolumeQuote         decimal.Decimal `gorm:"column:volume_quote;type:numeric(36,18);not null"`
	CumulativeFeesBase  decimal.Decimal `gorm:"column:cumulative_fees_base;type:numeric(36,18);not null"`
	CumulativeFeesQuote decimal.Decimal `gorm:"column:cumulative_fees_quote;type:numeric(36,18);not null"`
	LastTradePrice      decimal.Decimal `gorm:"column:last_trade_price;type:numeric(36,18);not null"`
}

func (Pool) TableName() string { return "amm_pools" }

// SpotPrice returns Rq/Rb, the pool's current quote-per-base price.
func (p *Pool) SpotPrice() decimal.Decimal {
	if p.ReserveBase.IsZero() {
		return decimal.Zero
	}
	return p.ReserveQuote.Div(p.ReserveBase)
}

// recomputeK resets K to ReserveBase * ReserveQuote.
func (p *Pool) recomputeK() {
	p.K = p.ReserveBase.Mul(p.ReserveQuote)
}

// LPPosition is a user's accumulated liquidity-provider stake in a pool.
type LPPosition struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	PoolID       string          `gorm:"column:pool_id;type:varchar(42);uniqueIndex:uq_lp_pool_user;not null"`
	UserID       string          `gorm:"column:user_id;type:varchar(32);uniqueIndex:uq_lp_pool_user;not null"`
	Shares       decimal.Decimal `gorm:"column:shares;type:numeric(36,18);not null"`
	InitialBase  decimal.Decimal `gorm:"column:initial_base;type:numeric(36,18);not null"`
	InitialQuote decimal.Decimal `gorm:"column:initial_quote;type:numeric(36,18);not null"`
}

func (LPPosition) TableName() string { return "lp_positions" }

// Repository persists Pool and LPPosition rows. Declared here (not in
// internal/storage) so amm's own unit tests can satisfy it with an
// in-memory fake, matching the teacher's domain-declares/infra-implements
// split.
type Repository interface {
	GetPoolBySymbolID(ctx context.Context, symbolID uint64, forUpdate bool) (*Pool, error)
	CreatePool(ctx context.Context, p *Pool) error
	SavePool(ctx context.Context, p *Pool) error
	GetPosition(ctx context.Context, poolID, userID string) (*LPPosition, error)
	SavePosition(ctx context.Context, pos *LPPosition) error
	DeletePosition(ctx context.Context, poolID, userID string) error
	PoolIDExists(ctx context.Context, poolID string) (bool, error)
}

// GormRepository is the Postgres-backed Repository implementation.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetPoolBySymbolID(ctx context.Context, symbolID uint64, forUpdate bool) (*Pool, error) {
	var p Pool
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("symbol_id = ?", symbolID).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, vegaerr.ErrUnknownSymbol.WithMessage("no AMM pool bound to this symbol")
	}
	if err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return &p, nil
}

func (r *GormRepository) CreatePool(ctx context.Context, p *Pool) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormRepository) SavePool(ctx context.Context, p *Pool) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormRepository) GetPosition(ctx context.Context, poolID, userID string) (*LPPosition, error) {
	var pos LPPosition
	err := r.db.WithContext(ctx).Where("pool_id = ? AND user_id = ?", poolID, userID).First(&pos).Error
	if err == gorm.ErrRecordNotFound {
		return &LPPosition{PoolID: poolID, UserID: userID, Shares: decimal.Zero, InitialBase: decimal.Zero, InitialQuote: decimal.Zero}, nil
	}
	if err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return &pos, nil
}

func (r *GormRepository) SavePosition(ctx context.Context, pos *LPPosition) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pool_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"shares", "initial_base", "initial_quote"}),
	}).Create(pos).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormRepository) DeletePosition(ctx context.Context, poolID, userID string) error {
	if err := r.db.WithContext(ctx).Where("pool_id = ? AND user_id = ?", poolID, userID).Delete(&LPPosition{}).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormRepository) PoolIDExists(ctx context.Context, poolID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Pool{}).Where("pool_id = ?", poolID).Count(&count).Error; err != nil {
		return false, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return count > 0, nil
}
