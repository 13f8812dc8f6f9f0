package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"opendfood/analytics-svc/internal/domain"
	"opendfood/analytics-svc/internal/service"
	"opendfood/logger"
	"opendfood/middleware"

	"go.uber.org/zap"
)

type Handler struct {
	Dashboards service.DashboardInterface
	JWTSecret  string
}

func NewHandler(svc service.DashboardInterface, jwtSecret string) *Handler {
	return &Handler{Dashboards: svc, JWTSecret: jwtSecret}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "analytics-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	restaurantID, _ := middleware.RestaurantIDFromContext(r.Context())

	if err := h.Dashboards.Authorize(r.Context(), restaurantID, claims.Subject); err != nil {
		h.fail(w, r, err)
		return
	}

	dashboard, err := h.Dashboards.Dashboard(r.Context(), restaurantID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrForbidden) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
		return
	}
	logger.FromContext(r.Context()).Error("dashboard failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
