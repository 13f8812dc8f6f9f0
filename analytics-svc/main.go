package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpapi "opendfood/analytics-svc/internal/api/http"
	"opendfood/analytics-svc/internal/service"
	"opendfood/analytics-svc/internal/storage"
	"opendfood/config"
	"opendfood/logger"
	"opendfood/metrics"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("analytics-svc")

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

	rdb := config.MustInitRedis(cfg.Redis)
	defer rdb.Close()

	svc := service.NewDashboardService(storage.NewPostgresRepository(db), storage.NewCounters(rdb))
	router := httpapi.NewRouter(httpapi.NewHandler(svc, cfg.Auth.JWTSecret), metrics.New(cfg.ServiceName))

	if err := httpapi.StartServer(ctx, ":"+cfg.Server.Port, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("stopped")
}
