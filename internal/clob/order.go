// Package clob implements the price-time-priority order book engine of
// spec §4.5: in-memory price ladders backed by durable order rows, plus
// the Quote/PlaceOrder/CancelOrder/Depth operations. Every method here is
// a plain synchronous call — unlike realmfikri-Limitless's OrderBook,
// which runs its own goroutine+channel actor loop, concurrency safety for
// this book is the caller's (internal/trading's router) responsibility:
// spec §4.6 assigns the per-symbol mutex to the router, not the engine.
package clob

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

type Side int8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

type OrderType int8

const (
	TypeLimit  OrderType = 0
	TypeMarket OrderType = 1
)

type TimeInForce string

const (
	TIFGTC TimeInForce = "GTC"
	TIFIOC TimeInForce = "IOC"
)

type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"
	StatusPartial   OrderStatus = "partial"
	StatusFilled    OrderStatus = "filled"
	StatusCancelled OrderStatus = "cancelled"
)

// Order is the persisted CLOB order row and, at the same time, the
// in-memory working copy the book mutates directly while the router holds
// the symbol mutex (spec §4.6: "writes are through: every match updates
// the in-memory ladders and the transactional store within the same
// critical section").
type Order struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID       string          `gorm:"column:order_id;type:varchar(20);uniqueIndex;not null"`
	ClientOrderID string          `gorm:"column:client_order_id;type:varchar(64);index:idx_client_order"`
	SymbolID      uint64          `gorm:"column:symbol_id;index;not null"`
	Symbol        string          `gorm:"column:symbol;type:varchar(64);not null"`
	UserID        string          `gorm:"column:user_id;type:varchar(32);index;not null"`
	Side          Side            `gorm:"column:side;not null"`
	Type          OrderType       `gorm:"column:type;not null"`
	TimeInForce   TimeInForce     `gorm:"column:time_in_force;type:varchar(4);not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(36,18)"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(36,18);not null"`
	Filled        decimal.Decimal `gorm:"column:filled;type:numeric(36,18);not null"`
	Remaining     decimal.Decimal `gorm:"column:remaining;type:numeric(36,18);not null"`
	Status        OrderStatus     `gorm:"column:status;type:varchar(16);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	FilledAt      *time.Time      `gorm:"column:filled_at"`
	CancelledAt   *time.Time      `gorm:"column:cancelled_at"`
}

func (Order) TableName() string { return "orders" }

// IsTerminal reports whether the order can never be mutated again, per
// spec §4.5's state machine ("a terminal order is never re-mutated").
func (o *Order) IsTerminal() bool {
	return o.Status == StatusFilled || o.Status == StatusCancelled
}

// Repository persists Order rows, declared by the domain so tests can
// satisfy it with an in-memory fake (matching ledger.Ledger/symbol.Repository/
// amm.Repository).
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Save(ctx context.Context, o *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	FindByClientOrderID(ctx context.Context, userID string, symbolID uint64, clientOrderID string) (*Order, error)
	ListOpenBySymbol(ctx context.Context, symbolID uint64) ([]*Order, error)
	Exists(ctx context.Context, orderID string) (bool, error)
}

// GormRepository is the Postgres-backed Repository implementation.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, o *Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormRepository) Save(ctx context.Context, o *Order) error {
	if err := r.db.WithContext(ctx).Save(o).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

func (r *GormRepository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, vegaerr.ErrOrderNotFound
	}
	if err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return &o, nil
}

func (r *GormRepository) FindByClientOrderID(ctx context.Context, userID string, symbolID uint64, clientOrderID string) (*Order, error) {
	if clientOrderID == "" {
		return nil, nil
	}
	var o Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND symbol_id = ? AND client_order_id = ?", userID, symbolID, clientOrderID).
		First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return &o, nil
}

func (r *GormRepository) Exists(ctx context.Context, orderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Order{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return false, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return count > 0, nil
}

func (r *GormRepository) ListOpenBySymbol(ctx context.Context, symbolID uint64) ([]*Order, error) {
	var out []*Order
	err := r.db.WithContext(ctx).
		Where("symbol_id = ? AND status IN ?", symbolID, []OrderStatus{StatusOpen, StatusPartial}).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return out, nil
}
