package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opendfood/api-gateway/internal/gateway"
	"opendfood/config"
	"opendfood/logger"
	"opendfood/metrics"
	"opendfood/middleware"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("api-gateway")

	log, err := logger.Init(logger.Config{Level: cfg.Log.Level, Environment: cfg.Server.Env, ServiceName: cfg.ServiceName})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gwConfig := gateway.Config{
		OrderSvcURL:     getEnv("ORDER_SVC_URL", "http://localhost:8081"),
		AnalyticsSvcURL: getEnv("ANALYTICS_SVC_URL", "http://localhost:8083"),
	}
	log.Info("starting",
		zap.String("port", cfg.Server.Port),
		zap.String("order_svc", gwConfig.OrderSvcURL),
		zap.String("analytics_svc", gwConfig.AnalyticsSvcURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limit, err := middleware.RateLimit(getEnv("GATEWAY_RATE_LIMIT", "300-M"), false)
	if err != nil {
		log.Fatal("invalid rate limit", zap.Error(err))
	}

	gw := gateway.NewGateway(gwConfig, &http.Client{Timeout: 30 * time.Second})
	handler := gw.SetupRoutes(gateway.RouteOptions{Metrics: metrics.New(cfg.ServiceName), Limit: limit})

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("gateway failed", zap.Error(err))
	}
	log.Info("stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
