// Package ledger implements the per-(user, currency) balance model of
// spec §3/§4.2: an available/locked split with lock/unlock/settle/credit/
// debit/transfer primitives, all run inside the caller's transaction so
// that a balance mutation and an engine mutation commit atomically.
//
// Grounded on the teacher's account domain (account/domain/account.go's
// Balance/AvailableBalance/FrozenBalance triple) and account application
// service (FreezeBalance/UnfreezeBalance/DeductFrozenBalance), renamed to
// the spec's lock/unlock/settle vocabulary.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// Balance is the persisted row for one (user, currency) pair. Balance is
// derived (available + locked) and is not stored as an independent column
// beyond what the database materializes for convenience; the source of
// truth is Available and Locked, per spec §3.
type Balance struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	UserID    string          `gorm:"column:user_id;type:varchar(32);uniqueIndex:uq_balance_user_currency;not null"`
	Currency  string          `gorm:"column:currency;type:varchar(16);uniqueIndex:uq_balance_user_currency;not null"`
	Available decimal.Decimal `gorm:"column:available;type:numeric(36,18);not null;default:0"`
	Locked    decimal.Decimal `gorm:"column:locked;type:numeric(36,18);not null;default:0"`
}

func (Balance) TableName() string { return "balances" }

// Total returns available + locked.
func (b Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Locked)
}

// Ledger is the balance primitive spec §3/§4.2 calls for, declared as an
// interface (not the concrete GormLedger below) so amm.Engine and
// clob.Engine — spec §5's "THE CORE of this design" — can be unit tested
// against an in-memory fake, matching the amm.Repository/clob.Repository/
// storage.TradeRepository/symbol.Repository split.
type Ledger interface {
	GetBalance(ctx context.Context, userID, currency string) (available, locked decimal.Decimal, err error)
	Credit(ctx context.Context, userID, currency string, amount decimal.Decimal) error
	Debit(ctx context.Context, userID, currency string, amount decimal.Decimal) error
	Lock(ctx context.Context, userID, currency string, amount decimal.Decimal) error
	Unlock(ctx context.Context, userID, currency string, amount decimal.Decimal) error
	Settle(ctx context.Context, userID, currency string, amount decimal.Decimal) error
	Transfer(ctx context.Context, fromUser, toUser, currency string, amount decimal.Decimal) error
}

// GormLedger is the Postgres-backed Ledger implementation. It operates on
// Balance rows within a single gorm transaction handle and is cheap to
// construct — typically created once per call inside persistence.WithTx.
type GormLedger struct {
	tx *gorm.DB
}

// New wraps a transaction handle (or a plain *gorm.DB for read-only
// queries) in a GormLedger.
func New(tx *gorm.DB) *GormLedger {
	return &GormLedger{tx: tx}
}

// load fetches (and row-locks, for write operations) the balance row,
// creating it with zero values if absent.
func (l *GormLedger) load(ctx context.Context, userID, currency string, forUpdate bool) (*Balance, error) {
	var bal Balance
	q := l.tx.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("user_id = ? AND currency = ?", userID, currency).First(&bal).Error
	if err == nil {
		return &bal, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	bal = Balance{UserID: userID, Currency: currency, Available: decimal.Zero, Locked: decimal.Zero}
	return &bal, nil
}

func (l *GormLedger) save(ctx context.Context, bal *Balance) error {
	if err := l.tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"available", "locked"}),
	}).Create(bal).Error; err != nil {
		return vegaerr.Wrap(vegaerr.ErrStorage, err)
	}
	return nil
}

// GetBalance returns (available, locked), zero if the row is absent.
func (l *GormLedger) GetBalance(ctx context.Context, userID, currency string) (decimal.Decimal, decimal.Decimal, error) {
	bal, err := l.load(ctx, userID, currency, false)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return bal.Available, bal.Locked, nil
}

// Credit increases available by amount, creating the row if missing.
func (l *GormLedger) Credit(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return vegaerr.ErrMalformedAmount.WithMessage("credit amount must be positive")
	}
	bal, err := l.load(ctx, userID, currency, true)
	if err != nil {
		return err
	}
	bal.Available = bal.Available.Add(amount)
	return l.save(ctx, bal)
}

// Debit decreases available by amount. Fails with InsufficientFunds if
// available < amount.
func (l *GormLedger) Debit(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return vegaerr.ErrMalformedAmount.WithMessage("debit amount must be positive")
	}
	bal, err := l.load(ctx, userID, currency, true)
	if err != nil {
		return err
	}
	if bal.Available.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds
	}
	bal.Available = bal.Available.Sub(amount)
	return l.save(ctx, bal)
}

// Lock moves amount from available to locked.
func (l *GormLedger) Lock(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return vegaerr.ErrMalformedAmount.WithMessage("lock amount must be positive")
	}
	bal, err := l.load(ctx, userID, currency, true)
	if err != nil {
		return err
	}
	if bal.Available.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds
	}
	bal.Available = bal.Available.Sub(amount)
	bal.Locked = bal.Locked.Add(amount)
	return l.save(ctx, bal)
}

// Unlock moves amount from locked back to available.
func (l *GormLedger) Unlock(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return vegaerr.ErrMalformedAmount.WithMessage("unlock amount must be positive")
	}
	bal, err := l.load(ctx, userID, currency, true)
	if err != nil {
		return err
	}
	if bal.Locked.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds.WithMessage("locked balance insufficient to unlock")
	}
	bal.Locked = bal.Locked.Sub(amount)
	bal.Available = bal.Available.Add(amount)
	return l.save(ctx, bal)
}

// Settle removes amount from locked without crediting anywhere (the
// counterparty, if any, is credited separately by the caller).
func (l *GormLedger) Settle(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return vegaerr.ErrMalformedAmount.WithMessage("settle amount must be positive")
	}
	bal, err := l.load(ctx, userID, currency, true)
	if err != nil {
		return err
	}
	if bal.Locked.LessThan(amount) {
		return vegaerr.ErrInsufficientFunds.WithMessage("locked balance insufficient to settle")
	}
	bal.Locked = bal.Locked.Sub(amount)
	return l.save(ctx, bal)
}

// Transfer debits fromUser and credits toUser atomically within the
// current transaction.
func (l *GormLedger) Transfer(ctx context.Context, fromUser, toUser, currency string, amount decimal.Decimal) error {
	if err := l.Debit(ctx, fromUser, currency, amount); err != nil {
		return err
	}
	return l.Credit(ctx, toUser, currency, amount)
}
