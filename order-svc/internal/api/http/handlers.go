package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"opendfood/order-svc/internal/domain"
	"opendfood/order-svc/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Tenants     service.TenantResolverInterface
	Restaurants service.RestaurantServiceInterface
	Menu        service.MenuServiceInterface
	Tables      service.TableServiceInterface
	Orders      service.OrderServiceInterface
	JWTSecret   string
	TokenTTL    time.Duration
}

func NewHandler(
	tenants service.TenantResolverInterface,
	restaurants service.RestaurantServiceInterface,
	menu service.MenuServiceInterface,
	tables service.TableServiceInterface,
	orders service.OrderServiceInterface,
	jwtSecret string,
) *Handler {
	return &Handler{
		Tenants:     tenants,
		Restaurants: restaurants,
		Menu:        menu,
		Tables:      tables,
		Orders:      orders,
		JWTSecret:   jwtSecret,
		TokenTTL:    24 * time.Hour,
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// tenant resolves the restaurant from the Host header. Every public route
// goes through it first.
func (h *Handler) tenant(w http.ResponseWriter, r *http.Request) (*domain.Restaurant, bool) {
	rest, err := h.Tenants.Resolve(r.Context(), r.Host)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return rest, true
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	menu, err := h.Menu.Menu(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMenuView(tenant, nil, menu))
}

func (h *Handler) getTableMenu(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	table, err := h.Tables.ResolveTable(r.Context(), tenant, mux.Vars(r)["token"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	menu, err := h.Menu.Menu(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMenuView(tenant, table, menu))
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "")
}

func (h *Handler) submitTableOrder(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, mux.Vars(r)["token"])
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, pathToken string) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON format: "+err.Error())
		return
	}
	if pathToken != "" {
		req.TableToken = pathToken
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	order, err := h.Orders.Submit(r.Context(), tenant, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newReceipt(order))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		badRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}
