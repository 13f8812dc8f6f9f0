package gateway

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"opendfood/logger"
	"opendfood/metrics"
	"opendfood/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	OrderSvcURL     string
	AnalyticsSvcURL string
}

type Gateway struct {
	config Config
	client HTTPClient
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	return &Gateway{
		config: config,
		client: client,
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	})
}

// ProxyRequest forwards r to targetURL keeping path, query and the original
// Host, since order-svc resolves the tenant from the Host subdomain.
func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	log := logger.FromContext(r.Context())

	url := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		log.Error("failed to build upstream request", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	for k, v := range r.Header {
		req.Header[k] = v
	}
	req.Host = r.Host
	req.Header.Set("X-Forwarded-Host", r.Host)
	// The gateway is the edge: client-supplied forwarding headers are
	// replaced so services behind it can key rate limits on them.
	req.Header.Del("X-Forwarded-For")
	req.Header.Del("X-Real-IP")
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		req.Header.Set("X-Forwarded-For", ip)
		req.Header.Set("X-Real-IP", ip)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Error("upstream unavailable", zap.String("target", targetURL), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		// cors is applied here, not upstream
		if strings.HasPrefix(k, "Access-Control-") {
			continue
		}
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Warn("failed to copy upstream response", zap.Error(err))
	}
}

// Target picks the upstream for an API path, or "" when no service owns it.
func (g *Gateway) Target(path string) string {
	switch {
	case path == "/api/admin/dashboard" || strings.HasPrefix(path, "/api/admin/dashboard/"):
		return g.config.AnalyticsSvcURL
	case strings.HasPrefix(path, "/api/admin/"),
		path == "/api/menu",
		path == "/api/orders",
		strings.HasPrefix(path, "/api/t/"):
		return g.config.OrderSvcURL
	}
	return ""
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	target := g.Target(r.URL.Path)
	if target == "" {
		logger.FromContext(r.Context()).Debug("unmatched api route", zap.String("path", r.URL.Path))
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "API route not found"})
		return
	}
	g.ProxyRequest(w, r, target)
}

type RouteOptions struct {
	Metrics *metrics.Metrics
	// Limit wraps every /api/ route.
	Limit func(http.Handler) http.Handler
}

func (g *Gateway) SetupRoutes(opts RouteOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, logger.Middleware)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if opts.Limit != nil {
		api.Use(opts.Limit)
	}
	api.PathPrefix("/").HandlerFunc(g.RouteHandler)

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
	}).Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
