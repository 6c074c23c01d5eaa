package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avilesdev/storefront-backend/api/routes"
	"github.com/avilesdev/storefront-backend/internal/bag"
	"github.com/avilesdev/storefront-backend/internal/catalog"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/internal/payment"
	"github.com/avilesdev/storefront-backend/internal/purchase"
	"github.com/avilesdev/storefront-backend/pkg/config"
	"github.com/avilesdev/storefront-backend/pkg/db"
	"github.com/avilesdev/storefront-backend/pkg/gateway"
	"github.com/avilesdev/storefront-backend/pkg/logger"
	"github.com/avilesdev/storefront-backend/pkg/metrics"
	"github.com/avilesdev/storefront-backend/pkg/migrate"
	"github.com/avilesdev/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	resolver, err := catalog.NewResolver(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create price resolver", err)
		os.Exit(1)
	}

	bagSlot, err := bag.NewRedisSlot(redisClient, cfg.Checkout.BagTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create bag slot", err)
		os.Exit(1)
	}
	bagStore, err := bag.NewStore(bagSlot, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create bag store", err)
		os.Exit(1)
	}

	stateStore, err := checkout.NewRedisStateStore(redisClient, cfg.Checkout.WizardTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create wizard state store", err)
		os.Exit(1)
	}
	wizard, err := checkout.NewWizard(stateStore, bagStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout wizard", err)
		os.Exit(1)
	}

	purchaseService, err := purchase.NewService(purchase.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase service", err)
		os.Exit(1)
	}

	busyLock, err := payment.NewRedisBusyLock(redisClient, cfg.Checkout.BusyLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create busy lock", err)
		os.Exit(1)
	}

	orchestrator, err := payment.NewOrchestrator(
		bagStore,
		wizard,
		gatewayClient,
		purchaseService,
		busyLock,
		checkoutMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment orchestrator", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			resolver,
			bagStore,
			wizard,
			orchestrator,
			purchaseService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
