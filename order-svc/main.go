package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"opendfood/config"
	"opendfood/logger"
	"opendfood/metrics"
	"opendfood/middleware"
	httpapi "opendfood/order-svc/internal/api/http"
	"opendfood/order-svc/internal/service"
	"opendfood/order-svc/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("order-svc")

	log, err := logger.Init(logger.Config{Level: cfg.Log.Level, Environment: cfg.Server.Env, ServiceName: cfg.ServiceName})
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting", cfg.Fields()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres(cfg.DB)
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to ensure schema", zap.Error(err))
	}

	rdb := config.MustInitRedis(cfg.Redis)
	defer rdb.Close()
	cache := storage.NewRedisCache(rdb, cfg.Cache.MenuTTL, cfg.Cache.SubmissionTTL)

	writer := config.NewKafkaWriter(cfg.Kafka)
	defer writer.Close()
	publisher := storage.NewKafkaPublisher(writer)

	m := metrics.New(cfg.ServiceName)
	qr := service.DefaultQRGenerator{Size: 256}
	links := service.Links{Scheme: cfg.Tenancy.FrontendScheme, Base: cfg.Tenancy.FrontendBase}

	tenants := service.NewTenantResolver(repo, cfg.Tenancy.RootDomain, cfg.Tenancy.ExcludedSubdomains)
	restaurants := service.NewRestaurantService(repo, qr, links,
		service.WithReservedSubdomains(cfg.Tenancy.ExcludedSubdomains))
	menu := service.NewMenuService(repo, cache)
	tables := service.NewTableService(repo, qr, links)
	orders := service.NewOrderService(repo, repo, tables, cfg.Pricing.TaxRate,
		service.WithSubmissionGuard(cache),
		service.WithPublisher(publisher),
		service.WithMetrics(m),
	)

	limit, err := middleware.RateLimit(cfg.RateLimit.Rate, cfg.RateLimit.TrustForwardHeader)
	if err != nil {
		log.Fatal("invalid rate limit", zap.Error(err))
	}

	handler := httpapi.NewHandler(tenants, restaurants, menu, tables, orders, cfg.Auth.JWTSecret)
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{Metrics: m, SubmitLimit: limit})

	if err := httpapi.StartServer(ctx, ":"+cfg.Server.Port, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("stopped")
}
