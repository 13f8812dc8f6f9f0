package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	m := New("order-svc")

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/admin/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("order-svc", "GET", "/api/admin/orders/{id}", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.statusCategory.WithLabelValues("order-svc", "4xx")))
}

func TestOrderCounters(t *testing.T) {
	m := New("order-svc")
	m.OrderCreated("dine_in")
	m.SubmitFailed("item_unavailable")
	m.SubmitFailed("item_unavailable")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("order-svc", "dine_in")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.submitFailures.WithLabelValues("order-svc", "item_unavailable")))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rr.Body.String(), "orders_created_total"))
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "2xx", category(201))
	assert.Equal(t, "4xx", category(422))
	assert.Equal(t, "5xx", category(503))
}
