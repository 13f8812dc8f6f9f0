package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"opendfood/config"
	"opendfood/logger"
	"opendfood/metrics"
	"opendfood/notify-svc/internal/mail"
	"opendfood/notify-svc/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("notify-svc")

	log, err := logger.Init(logger.Config{Level: cfg.Log.Level, Environment: cfg.Server.Env, ServiceName: cfg.ServiceName})
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting", append(cfg.Fields(), zap.String("smtp_host", cfg.Mail.Host))...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := config.NewKafkaReader(cfg.Kafka)
	defer reader.Close()

	m := metrics.New(cfg.ServiceName)
	notifier := service.NewNotifier(reader, mail.NewSMTPMailer(cfg.Mail), m, cfg.Mail.PerMinute)

	go serveOps(ctx, ":"+cfg.Server.Port, m)

	if err := notifier.Start(ctx); err != nil {
		log.Fatal("notifier failed", zap.Error(err))
	}
	log.Info("stopped")
}

func serveOps(ctx context.Context, addr string, m *metrics.Metrics) {
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"notify-svc"}`))
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
