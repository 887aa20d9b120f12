// Command vegaexchange runs the HTTP/WebSocket trading service: config and
// logger bootstrap, database connection and schema migration, engine and
// router wiring, and graceful shutdown on SIGINT/SIGTERM — the same
// numbered-steps shape as the teacher's cmd/matching-engine/main.go, minus
// the gRPC surface spec.md doesn't call for.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/davidting0918/VegaExchange/internal/amm"
	"github.com/davidting0918/VegaExchange/internal/auth"
	"github.com/davidting0918/VegaExchange/internal/clob"
	"github.com/davidting0918/VegaExchange/internal/eventbus"
	"github.com/davidting0918/VegaExchange/internal/httpapi"
	"github.com/davidting0918/VegaExchange/internal/ledger"
	"github.com/davidting0918/VegaExchange/internal/platform/cache"
	"github.com/davidting0918/VegaExchange/internal/platform/config"
	"github.com/davidting0918/VegaExchange/internal/platform/dbx"
	"github.com/davidting0918/VegaExchange/internal/platform/logging"
	"github.com/davidting0918/VegaExchange/internal/platform/metrics"
	"github.com/davidting0918/VegaExchange/internal/platform/middleware"
	"github.com/davidting0918/VegaExchange/internal/storage"
	"github.com/davidting0918/VegaExchange/internal/symbol"
	"github.com/davidting0918/VegaExchange/internal/trading"
	"github.com/davidting0918/VegaExchange/internal/wsgateway"
)

func main() {
	// 1. load configuration
	configPath := flag.String("config", "configs/vegaexchange/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. initialize logging
	if err := logging.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logging.Info(ctx, "starting vegaexchange")

	// 3. connect to the database and migrate the schema
	db, err := dbx.Open(cfg.Database)
	if err != nil {
		logging.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&symbol.Symbol{}, &ledger.Balance{},
		&amm.Pool{}, &amm.LPPosition{},
		&clob.Order{}, &storage.Trade{},
	); err != nil {
		logging.Error(ctx, "failed to migrate schema", "error", err)
		os.Exit(1)
	}

	// 4. construct the event bus, metrics registry, and auth verifier
	bus := eventbus.New()
	m := metrics.New("vegaexchange")
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	// 5. dial the read-through snapshot cache, if configured. A failed
	// dial is not fatal: the router falls back to reading straight
	// through to Postgres, same as if caching had never been enabled.
	var snapshotCache *cache.RedisCache
	if cfg.Redis.Enabled {
		snapshotCache, err = cache.New(cache.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			logging.Error(ctx, "failed to connect to redis, continuing without the snapshot cache", "error", err)
			snapshotCache = nil
		} else {
			defer snapshotCache.Close()
		}
	}

	// 6. construct the engine router
	priceImpactThreshold := decimal.Zero
	if cfg.Trading.PriceImpactWarnThreshold != "" {
		if v, err := decimal.NewFromString(cfg.Trading.PriceImpactWarnThreshold); err == nil {
			priceImpactThreshold = v
		}
	}
	router := trading.New(
		db,
		symbol.NewGormRepository(db.DB),
		amm.NewGormRepository(db.DB),
		clob.NewGormRepository(db.DB),
		storage.NewGormTradeRepository(db.DB),
		bus, m,
		trading.Config{
			LockTimeout:          time.Duration(cfg.Trading.SymbolLockTimeoutMS) * time.Millisecond,
			PriceImpactThreshold: priceImpactThreshold,
			Cache:                snapshotCache,
		},
	)

	// 7. construct the WebSocket hub
	hub := wsgateway.New(bus, m, wsgateway.Config{
		OutboundQueueSize: cfg.Trading.WSOutboundQueueSize,
		WriteDeadline:     time.Duration(cfg.Trading.WSWriteDeadlineS) * time.Second,
	})

	// 8. build the HTTP server
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recovery(), middleware.CORS())
	engine.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) })
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := httpapi.New(router, verifier, hub)
	api.RegisterRoutes(engine)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutS) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutS) * time.Second,
	}

	// 9. start serving and wait for either a listen error or a shutdown
	// signal. errgroup coordinates the two goroutines (listener, signal
	// wait) so a listen failure and an operator-requested shutdown both
	// flow through the same cancellation path instead of separate
	// os.Exit calls.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logging.Info(ctx, "starting http server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigChan:
		case <-groupCtx.Done():
		}

		logging.Info(ctx, "shutting down vegaexchange")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logging.Error(ctx, "vegaexchange exited with error", "error", err)
		os.Exit(1)
	}
	logging.Info(ctx, "vegaexchange stopped")
}
