package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cellex-webapp/cellex-storefront/gateway"
	"github.com/cellex-webapp/cellex-storefront/pkg/audit"
	"github.com/cellex-webapp/cellex-storefront/pkg/cart"
	"github.com/cellex-webapp/cellex-storefront/pkg/checkout"
	"github.com/cellex-webapp/cellex-storefront/pkg/commerce"
	"github.com/cellex-webapp/cellex-storefront/pkg/config"
	"github.com/cellex-webapp/cellex-storefront/pkg/countdown"
	"github.com/cellex-webapp/cellex-storefront/pkg/coupon"
	"github.com/cellex-webapp/cellex-storefront/pkg/discovery"
	"github.com/cellex-webapp/cellex-storefront/pkg/notify"
	"github.com/cellex-webapp/cellex-storefront/pkg/search"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	// Amounts go out as JSON numbers, matching the backend envelope.
	decimal.MarshalJSONWithoutQuotes = true

	logger.Info("Starting storefront gateway",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	ctx := context.Background()

	// Setup service discovery
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		sd = nil
	}

	// Resolve the commerce backend, falling back to the configured URL.
	baseURL := cfg.Commerce.BaseURL
	if sd != nil {
		if resolved, err := sd.ResolveBaseURL(ctx, cfg.Commerce.ServiceName); err == nil {
			baseURL = resolved
			logger.Info("Discovered commerce backend", zap.String("base_url", baseURL))
		} else {
			logger.Info("Using configured commerce base URL",
				zap.String("base_url", baseURL), zap.Error(err))
		}
	}
	commerceClient := commerce.NewClient(&cfg.Commerce, baseURL, logger)

	// Redis holds pending payment redirects.
	redirects := checkout.NewRedisRedirectStore(&cfg.Redis, cfg.Checkout.RedirectTTL)
	defer redirects.Close()
	if err := redirects.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	// Audit trail is best-effort; the gateway runs without it.
	recorder, err := audit.NewRecorder(&cfg.MongoDB, logger)
	if err != nil {
		logger.Warn("MongoDB connection failed, audit trail disabled", zap.Error(err))
		recorder = nil
	} else {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			recorder.Close(closeCtx)
		}()
	}

	// Order events feed the notification pipeline.
	var events *notify.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		events = notify.NewPublisher(&cfg.Kafka, logger)
		defer events.Close()
	} else {
		logger.Warn("No Kafka brokers configured, order events disabled")
	}

	// MySQL backs the session carts.
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}
	cartStore, err := cart.NewMySQLStore(db)
	if err != nil {
		logger.Fatal("Failed to prepare cart store", zap.Error(err))
	}

	carts := cart.NewService(cartStore, commerceClient, logger)
	bridge := cart.NewBridge(cartStore, commerceClient, logger)
	coupons := coupon.NewService(commerceClient, recorder, logger)
	checkouts := checkout.NewOrchestrator(
		commerceClient,
		redirects,
		recorder,
		events,
		countdown.SystemClock(),
		cfg.Checkout.RedirectCountdown,
		logger,
	)
	searches := search.NewService(commerceClient, search.NewDebouncer(cfg.Search.DebounceWindow), logger)

	// Create gateway
	gw := gateway.NewGateway(cfg, logger, commerceClient, carts, bridge, coupons, checkouts, searches, events)
	gw.SetupRoutes()

	// Register in etcd so peers can find the storefront.
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if sd != nil {
		if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register in etcd", zap.Error(err))
		}
	}

	// Start gateway in goroutine
	gwErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			gwErr <- err
		}
	}()

	logger.Info("Storefront gateway started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-gwErr:
		logger.Fatal("Gateway error", zap.Error(err))
	}

	if sd != nil {
		if err := sd.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}

	logger.Info("Storefront gateway stopped")
}
