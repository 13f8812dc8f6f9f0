package httpapi

import (
	"context"
	"net/http"
	"time"

	"opendfood/logger"
	"opendfood/metrics"
	"opendfood/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Metrics *metrics.Metrics
	// SubmitLimit wraps the public order submission routes.
	SubmitLimit func(http.Handler) http.Handler
}

func (h *Handler) RegisterRoutes(r *mux.Router, submitLimit func(http.Handler) http.Handler) {
	if submitLimit == nil {
		submitLimit = func(next http.Handler) http.Handler { return next }
	}

	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu", h.getMenu).Methods("GET")
	r.HandleFunc("/api/t/{token}/menu", h.getTableMenu).Methods("GET")
	r.Handle("/api/orders", submitLimit(http.HandlerFunc(h.submitOrder))).Methods("POST")
	r.Handle("/api/t/{token}/orders", submitLimit(http.HandlerFunc(h.submitTableOrder))).Methods("POST")

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.Auth(h.JWTSecret))

	admin.HandleFunc("/restaurants", h.createRestaurant).Methods("POST")
	admin.HandleFunc("/restaurants", h.listRestaurants).Methods("GET")

	scoped := func(f http.HandlerFunc) http.Handler { return middleware.RequireRestaurant(f) }

	admin.Handle("/restaurant", scoped(h.getRestaurant)).Methods("GET")
	admin.Handle("/restaurant", scoped(h.updateRestaurant)).Methods("PUT")
	admin.Handle("/restaurant/active", scoped(h.setRestaurantActive)).Methods("PATCH")
	admin.Handle("/restaurant/qrcode", scoped(h.getRestaurantQRCode)).Methods("GET")

	admin.Handle("/categories", scoped(h.listCategories)).Methods("GET")
	admin.Handle("/categories", scoped(h.createCategory)).Methods("POST")

	admin.Handle("/items", scoped(h.listItems)).Methods("GET")
	admin.Handle("/items", scoped(h.createItem)).Methods("POST")
	admin.Handle("/items/{id}", scoped(h.updateItem)).Methods("PUT")
	admin.Handle("/items/{id}", scoped(h.deleteItem)).Methods("DELETE")
	admin.Handle("/items/{id}/availability", scoped(h.setItemAvailability)).Methods("PATCH")

	admin.Handle("/tables", scoped(h.listTables)).Methods("GET")
	admin.Handle("/tables", scoped(h.createTable)).Methods("POST")
	admin.Handle("/tables/{id}", scoped(h.deleteTable)).Methods("DELETE")
	admin.Handle("/tables/{id}/active", scoped(h.setTableActive)).Methods("PATCH")
	admin.Handle("/tables/{id}/qrcode", scoped(h.getTableQRCode)).Methods("GET")
	admin.Handle("/tables/{id}/qrcode", scoped(h.regenerateTableQRCode)).Methods("POST")

	admin.Handle("/orders", scoped(h.listOrders)).Methods("GET")
	admin.Handle("/orders", scoped(h.createManualOrder)).Methods("POST")
	admin.Handle("/orders/{id}", scoped(h.getOrder)).Methods("GET")
	admin.Handle("/orders/{id}", scoped(h.deleteOrder)).Methods("DELETE")
	admin.Handle("/orders/{id}/status", scoped(h.changeOrderStatus)).Methods("PATCH")
	admin.Handle("/orders/{id}/items", scoped(h.updateOrderLines)).Methods("PUT")
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, logger.Middleware)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}
	handler.RegisterRoutes(r, opts.SubmitLimit)

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
	}).Handler(r)
}

// StartServer serves until ctx is cancelled, then drains in-flight requests
// for up to ten seconds.
func StartServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info("order service listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
