// Package symbol defines the Symbol entity of spec §3: the persistent
// configuration row that tells the router which engine kind backs a
// market and carries its precision/trade-bound parameters.
package symbol

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// MarketClass enumerates the market classes the schema supports. Only
// Spot is matched live; the others are accepted for configuration but
// rejected at placement time with EngineDisabled (spec §9).
type MarketClass string

const (
	MarketSpot   MarketClass = "spot"
	MarketPerp   MarketClass = "perp"
	MarketOption MarketClass = "option"
	MarketFuture MarketClass = "future"
)

// EngineKind is immutable after symbol creation, per spec §3.
type EngineKind string

const (
	EngineAMM  EngineKind = "AMM"
	EngineCLOB EngineKind = "CLOB"
)

// Symbol is the persisted market configuration row.
type Symbol struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	Symbol          string          `gorm:"column:symbol;type:varchar(64);uniqueIndex;not null"`
	Base            string          `gorm:"column:base;type:varchar(16);not null"`
	Quote           string          `gorm:"column:quote;type:varchar(16);not null"`
	Settle          string          `gorm:"column:settle;type:varchar(16);not null"`
	Market          MarketClass     `gorm:"column:market;type:varchar(16);not null"`
	Engine          EngineKind      `gorm:"column:engine;type:varchar(8);not null"`
	PricePrecision  int32           `gorm:"column:price_precision;not null;default:8"`
	QtyPrecision    int32           `gorm:"column:qty_precision;not null;default:8"`
	MinTradeAmount  decimal.Decimal `gorm:"column:min_trade_amount;type:numeric(36,18);not null"`
	MaxTradeAmount  decimal.Decimal `gorm:"column:max_trade_amount;type:numeric(36,18);not null"`
	FeeRate         decimal.Decimal `gorm:"column:fee_rate;type:numeric(36,18);not null"`
	EngineParams    string          `gorm:"column:engine_params;type:text"`
	Active          bool            `gorm:"column:active;not null;default:true"`
}

func (Symbol) TableName() string { return "symbols" }

// Canonical renders the canonical "BASE/QUOTE-SETTLE:MARKET" form.
func (s Symbol) Canonical() string {
	return Canonicalize(s.Base, s.Quote, s.Settle, string(s.Market))
}

// Canonicalize builds the canonical symbol string from its parts.
func Canonicalize(base, quote, settle, market string) string {
	return fmt.Sprintf("%s/%s-%s:%s", strings.ToUpper(base), strings.ToUpper(quote), strings.ToUpper(settle), strings.ToUpper(market))
}

// ParsePath accepts either a dashed or slashed symbol_path
// ("BASE/QUOTE/SETTLE/MARKET" or "BASE-QUOTE-SETTLE-MARKET") and returns
// the canonical form, per spec §9's open question on symbol_path shape.
func ParsePath(path string) (string, error) {
	var sep string
	switch {
	case strings.Contains(path, "/"):
		sep = "/"
	case strings.Contains(path, "-"):
		sep = "-"
	default:
		return "", vegaerr.ErrUnknownSymbol.WithMessage("unrecognized symbol_path shape: " + path)
	}
	parts := strings.Split(path, sep)
	if len(parts) != 4 {
		return "", vegaerr.ErrUnknownSymbol.WithMessage("symbol_path must have 4 segments: " + path)
	}
	return Canonicalize(parts[0], parts[1], parts[2], parts[3]), nil
}

// Repository persists and loads Symbol rows.
type Repository interface {
	Create(ctx context.Context, s *Symbol) error
	GetBySymbol(ctx context.Context, symbol string) (*Symbol, error)
	GetByID(ctx context.Context, id uint64) (*Symbol, error)
	List(ctx context.Context) ([]*Symbol, error)
	Update(ctx context.Context, s *Symbol) error
}

// GormRepository is the Postgres-backed Repository implementation.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, s *Symbol) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormRepository) GetBySymbol(ctx context.Context, symbol string) (*Symbol, error) {
	var s Symbol
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return nil, vegaerr.ErrUnknownSymbol.WithMessage(symbol)
	}
	if err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return &s, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id uint64) (*Symbol, error) {
	var s Symbol
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return nil, vegaerr.ErrUnknownSymbol
	}
	if err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return &s, nil
}

func (r *GormRepository) List(ctx context.Context) ([]*Symbol, error) {
	var out []*Symbol
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return out, nil
}

func (r *GormRepository) Update(ctx context.Context, s *Symbol) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}
