package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"opendfood/agg-svc/internal/service"
	"opendfood/agg-svc/internal/storage"
	"opendfood/config"
	"opendfood/logger"
	"opendfood/metrics"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("agg-svc")

	log, err := logger.Init(logger.Config{Level: cfg.Log.Level, Environment: cfg.Server.Env, ServiceName: cfg.ServiceName})
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting", cfg.Fields()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.MustInitRedis(cfg.Redis)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg.Kafka)
	defer reader.Close()

	m := metrics.New(cfg.ServiceName)
	consumer := service.NewConsumer(reader, storage.NewStore(rdb), m)

	go serveOps(ctx, ":"+cfg.Server.Port, m)

	if err := consumer.Start(ctx); err != nil {
		log.Fatal("consumer failed", zap.Error(err))
	}
	log.Info("stopped")
}

// serveOps exposes /health and /metrics next to the consumer loop.
func serveOps(ctx context.Context, addr string, m *metrics.Metrics) {
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"agg-svc"}`))
	}).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")

	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Get().Error("ops server failed", zap.Error(err))
	}
}
