package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several services, and tests, can build
// their own collectors without clashing on the default registerer.
type Metrics struct {
	ServiceName string
	registry    *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusCategory  *prometheus.CounterVec
	ordersCreated   *prometheus.CounterVec
	submitFailures  *prometheus.CounterVec
	eventsProcessed *prometheus.CounterVec
}

func New(serviceName string) *Metrics {
	m := &Metrics{
		ServiceName: serviceName,
		registry:    prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		),
		statusCategory: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_status_category_total",
				Help: "Responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"service", "category"},
		),
		ordersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Orders persisted, by order type",
			},
			[]string{"service", "order_type"},
		),
		submitFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_submit_failures_total",
				Help: "Rejected or failed order submissions, by reason",
			},
			[]string{"service", "reason"},
		),
		eventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_events_processed_total",
				Help: "Order events consumed from Kafka, by type and outcome",
			},
			[]string{"service", "type", "outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.statusCategory,
		m.ordersCreated,
		m.submitFailures,
		m.eventsProcessed,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderCreated(orderType string) {
	m.ordersCreated.WithLabelValues(m.ServiceName, orderType).Inc()
}

func (m *Metrics) SubmitFailed(reason string) {
	m.submitFailures.WithLabelValues(m.ServiceName, reason).Inc()
}

func (m *Metrics) EventProcessed(eventType, outcome string) {
	m.eventsProcessed.WithLabelValues(m.ServiceName, eventType, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func category(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Middleware records request count and latency labelled by the mux route
// template, so /api/admin/orders/42 and /api/admin/orders/43 share a series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		m.requests.WithLabelValues(m.ServiceName, r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(m.ServiceName, r.Method, path).Observe(time.Since(start).Seconds())
		m.statusCategory.WithLabelValues(m.ServiceName, category(rec.status)).Inc()
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
