// Package dbx wraps gorm with the connection-pool setup and transaction
// helper every persistence gateway call goes through, adapted from the
// teacher's pkg/db.
package dbx

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/davidting0918/VegaExchange/internal/platform/config"
	"github.com/davidting0918/VegaExchange/internal/platform/logging"
)

// DB wraps *gorm.DB with the transaction helper the persistence gateway
// builds on (spec §4.3's with_tx primitive).
type DB struct {
	*gorm.DB
}

// Open connects to Postgres and configures the connection pool.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeS) * time.Second)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logging.Info(context.Background(), "database connected")
	return &DB{DB: gdb}, nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error fn returns. This is the single entry point every
// engine mutation goes through so that state mutation and balance changes
// commit together, per spec §4.2/§4.3.
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := d.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// gormDBLogger adapts our slog-backed logging package to gorm's logger
// interface, mirroring the teacher's pkg/db.GormLogger.
type gormDBLogger struct {
	slow time.Duration
}

func newGormLogger() gormlogger.Interface {
	return &gormDBLogger{slow: 200 * time.Millisecond}
}

func (l *gormDBLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *gormDBLogger) Info(ctx context.Context, msg string, data ...any) {
	logging.Info(ctx, msg, "data", data)
}

func (l *gormDBLogger) Warn(ctx context.Context, msg string, data ...any) {
	logging.Warn(ctx, msg, "data", data)
}

func (l *gormDBLogger) Error(ctx context.Context, msg string, data ...any) {
	logging.Error(ctx, msg, "data", data)
}

func (l *gormDBLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sqlStr, rows := fc()
	args := []any{"duration", elapsed, "rows", rows, "sql", sqlStr}
	switch {
	case err != nil:
		logging.Error(ctx, "sql execution failed", append(args, "error", err)...)
	case elapsed > l.slow:
		logging.Warn(ctx, "slow query", args...)
	default:
		logging.Debug(ctx, "sql executed", args...)
	}
}
