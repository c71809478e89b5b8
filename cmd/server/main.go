package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/seat-inventory/internal/config"
	"github.com/iliyamo/seat-inventory/internal/database"
	"github.com/iliyamo/seat-inventory/internal/handler"
	"github.com/iliyamo/seat-inventory/internal/pricing"
	"github.com/iliyamo/seat-inventory/internal/queue"
	"github.com/iliyamo/seat-inventory/internal/repository"
	"github.com/iliyamo/seat-inventory/internal/router"
	"github.com/iliyamo/seat-inventory/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	// Money leaves the API as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}
	}

	overrides, err := config.LoadLayoutOverrides(cfg.LayoutOptionsFile)
	if err != nil {
		log.Fatal(err)
	}
	policy, err := pricing.ParseFreeItemPolicy(cfg.FreeItemPolicy)
	if err != nil {
		log.Fatalf("FREE_ITEM_POLICY: %v", err)
	}

	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	tiers := repository.NewTierRepo(db)
	e := router.New(router.Deps{
		Layouts: &handler.LayoutHandler{
			Blocks:  repository.NewLayoutRepo(db),
			Tiers:   tiers,
			Options: overrides,
		},
		Checkout: &handler.CheckoutHandler{
			Discounts: repository.NewDiscountRepo(db),
			Tiers:     tiers,
			Publisher: service.NewPublisher(cfg.EventsEnabled, cfg.AMQPURL),
			Evaluator: pricing.Evaluator{FreeItems: policy},
		},
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		JWTSecret: cfg.JWTSecret,
	})
	e.Logger.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	if cfg.ConsumerEnabled {
		go func() {
			if err := queue.StartRedemptionConsumer(ctx, cfg.AMQPURL); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("redemption consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Infof("listening on %s (env=%s, free items=%s)", addr, cfg.Env, policy)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
