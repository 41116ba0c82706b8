package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karimfarhat/suqly-backend/api/routes"
	"github.com/karimfarhat/suqly-backend/internal/conversion"
	"github.com/karimfarhat/suqly-backend/internal/ledger"
	"github.com/karimfarhat/suqly-backend/internal/negotiation"
	"github.com/karimfarhat/suqly-backend/internal/notifications"
	"github.com/karimfarhat/suqly-backend/internal/orders"
	"github.com/karimfarhat/suqly-backend/internal/quotations"
	"github.com/karimfarhat/suqly-backend/internal/stores"
	"github.com/karimfarhat/suqly-backend/pkg/config"
	"github.com/karimfarhat/suqly-backend/pkg/db"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
	"github.com/karimfarhat/suqly-backend/pkg/metrics"
	"github.com/karimfarhat/suqly-backend/pkg/migrate"
	"github.com/karimfarhat/suqly-backend/pkg/outbox"
	"github.com/karimfarhat/suqly-backend/pkg/redis"
	"github.com/karimfarhat/suqly-backend/pkg/ticket"
	"github.com/karimfarhat/suqly-backend/pkg/whatsapp"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	quotationMetrics := metrics.NewQuotationMetrics(registry)

	gormDB := dbClient.DB()
	quotationsRepo := quotations.NewRepository(gormDB)
	negotiationRepo := negotiation.NewRepository(gormDB)
	conversionRepo := conversion.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	storesRepo := stores.NewRepository(gormDB)

	publisher := outbox.NewService(outbox.NewRepository(gormDB), logg)
	tickets := ticket.NewGenerator(ticket.DefaultLength)
	waBuilder := whatsapp.NewBuilder(cfg.WhatsApp.BaseURL, cfg.WhatsApp.DefaultCountryCode)

	quotationsSvc, err := quotations.NewService(quotationsRepo, dbClient, tickets, storesRepo, publisher, quotationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotations service", err)
		os.Exit(1)
	}

	negotiationSvc, err := negotiation.NewService(negotiationRepo, quotationsRepo, storesRepo, dbClient, publisher, waBuilder, quotationMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create negotiation service", err)
		os.Exit(1)
	}

	conversionSvc, err := conversion.NewService(conversionRepo, quotationsRepo, ordersRepo, storesRepo, ledgerRepo, tickets, dbClient, publisher, quotationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create conversion service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(ordersRepo, ledgerRepo, storesRepo, dbClient, publisher)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notificationsSvc, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	storesSvc, err := stores.NewService(storesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stores service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		redisClient,
		quotationsSvc,
		negotiationSvc,
		conversionSvc,
		ordersSvc,
		notificationsSvc,
		storesSvc,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

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
		Addr:    addr,
		Handler: handler,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
