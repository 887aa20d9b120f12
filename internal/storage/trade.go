// Package storage holds the persisted rows shared across engines: Trade
// (appended by both AMM and CLOB) and the CLOB Order book rows. Pool/LP
// models live in internal/amm and the ledger Balance lives in
// internal/ledger, each owning its own Repository the way the teacher
// splits domain-owned persistence per bounded context; Trade lives here
// because both engines and the router's read endpoints (GET
// /api/user/trades) share it without owning it.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// TradeStatus is always Executed today; the column exists for a future
// settlement-delay extension the spec does not require yet.
type TradeStatus string

const TradeStatusExecuted TradeStatus = "executed"

// Trade is the append-only row written by both engines on every fill, per
// spec §3's Trade entity.
type Trade struct {
	ID                 uint64            `gorm:"primaryKey;autoIncrement"`
	TradeID            string            `gorm:"column:trade_id;type:varchar(20);uniqueIndex;not null"`
	SymbolID           uint64            `gorm:"column:symbol_id;index;not null"`
	Symbol             string            `gorm:"column:symbol;type:varchar(64);not null"`
	UserID             string            `gorm:"column:user_id;type:varchar(32);index;not null"`
	CounterpartyUserID string            `gorm:"column:counterparty_user_id;type:varchar(32)"`
	Side               int               `gorm:"column:side;not null"`
	Engine             symbol.EngineKind `gorm:"column:engine;type:varchar(8);not null"`
	Price              decimal.Decimal   `gorm:"column:price;type:numeric(36,18);not null"`
	Quantity           decimal.Decimal   `gorm:"column:quantity;type:numeric(36,18);not null"`
	QuoteAmount        decimal.Decimal   `gorm:"column:quote_amount;type:numeric(36,18);not null"`
	FeeAmount          decimal.Decimal   `gorm:"column:fee_amount;type:numeric(36,18);not null"`
	FeeAsset           string            `gorm:"column:fee_asset;type:varchar(16);not null"`
	Status             TradeStatus       `gorm:"column:status;type:varchar(16);not null"`
	Tags               string            `gorm:"column:tags;type:varchar(64)"` // e.g. "large_price_impact"
	EngineData         string            `gorm:"column:engine_data;type:text"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (Trade) TableName() string { return "trades" }

// TradeRepository persists and queries Trade rows.
type TradeRepository interface {
	Insert(ctx context.Context, t *Trade) error
	Exists(ctx context.Context, tradeID string) (bool, error)
	ListByUser(ctx context.Context, userID string, symbolFilter string, engineFilter symbol.EngineKind, limit int) ([]*Trade, error)
}

// GormTradeRepository is the Postgres-backed TradeRepository.
type GormTradeRepository struct {
	db *gorm.DB
}

func NewGormTradeRepository(db *gorm.DB) *GormTradeRepository {
	return &GormTradeRepository{db: db}
}

func (r *GormTradeRepository) Insert(ctx context.Context, t *Trade) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormTradeRepository) Exists(ctx context.Context, tradeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Trade{}).Where("trade_id = ?", tradeID).Count(&count).Error; err != nil {
		return false, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return count > 0, nil
}

func (r *GormTradeRepository) ListByUser(ctx context.Context, userID string, symbolFilter string, engineFilter symbol.EngineKind, limit int) ([]*Trade, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if symbolFilter != "" {
		q = q.Where("symbol = ?", symbolFilter)
	}
	if engineFilter != "" {
		q = q.Where("engine = ?", engineFilter)
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*Trade
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return out, nil
}
