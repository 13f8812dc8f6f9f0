package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"opendfood/middleware"
	"opendfood/order-svc/internal/domain"
	"opendfood/order-svc/internal/service"
)

// adminTenant loads the restaurant bound to the caller's token and checks the
// caller owns it.
func (h *Handler) adminTenant(w http.ResponseWriter, r *http.Request) (*domain.Restaurant, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.RestaurantID <= 0 {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "token is not bound to a restaurant"})
		return nil, false
	}

	rest, err := h.Restaurants.Get(r.Context(), claims.RestaurantID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && rest.OwnerID != claims.Subject) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "restaurant not accessible"})
		return nil, false
	}
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return rest, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON format: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.Subject == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "token has no owner"})
		return
	}

	var rest domain.Restaurant
	if !decode(w, r, &rest) {
		return
	}
	rest.OwnerID = claims.Subject

	if err := h.Restaurants.Create(r.Context(), &rest); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := middleware.IssueToken(h.JWTSecret, claims.Subject, rest.ID, h.TokenTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"restaurant": rest, "token": token})
}

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.Subject == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "token has no owner"})
		return
	}
	restaurants, err := h.Restaurants.ListByOwner(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *Handler) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	var rest domain.Restaurant
	if !decode(w, r, &rest) {
		return
	}
	rest.ID = tenant.ID
	if err := h.Restaurants.Update(r.Context(), &rest); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

func (h *Handler) setRestaurantActive(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	var req activeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		badRequest(w, "is_active is required")
		return
	}
	if err := h.Restaurants.SetActive(r.Context(), tenant.ID, *req.IsActive); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) getRestaurantQRCode(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	qr, err := h.Restaurants.QRCode(r.Context(), tenant.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, qr)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	categories, err := h.Menu.Categories(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	c := domain.Category{IsActive: true}
	if !decode(w, r, &c) {
		return
	}
	if err := h.Menu.CreateCategory(r.Context(), tenant, &c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	items, err := h.Menu.Items(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]menuItemView, 0, len(items))
	for _, it := range items {
		views = append(views, newMenuItemView(it))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	item := domain.MenuItem{IsAvailable: true, PreparationTime: 15}
	if !decode(w, r, &item) {
		return
	}
	if err := h.Menu.CreateItem(r.Context(), tenant, &item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMenuItemView(item))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var item domain.MenuItem
	if !decode(w, r, &item) {
		return
	}
	item.ID = id
	if err := h.Menu.UpdateItem(r.Context(), tenant, &item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMenuItemView(item))
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

func (h *Handler) setItemAvailability(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req availabilityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IsAvailable == nil {
		badRequest(w, "is_available is required")
		return
	}
	if err := h.Menu.SetAvailability(r.Context(), tenant, id, *req.IsAvailable); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Menu.DeleteItem(r.Context(), tenant, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	tables, err := h.Tables.List(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tables == nil {
		tables = []domain.Table{}
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	var t domain.Table
	if !decode(w, r, &t) {
		return
	}
	if err := h.Tables.Create(r.Context(), tenant, &t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) setTableActive(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req activeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		badRequest(w, "is_active is required")
		return
	}
	if err := h.Tables.SetActive(r.Context(), tenant, id, *req.IsActive); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getTableQRCode(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	qr, err := h.Tables.QRCode(r.Context(), tenant, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, qr)
}

func (h *Handler) regenerateTableQRCode(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	qr, err := h.Tables.RegenerateQR(r.Context(), tenant, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, qr)
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Tables.Delete(r.Context(), tenant, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}

	var filter domain.OrderFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = &st
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(w, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	orders, err := h.Orders.List(r.Context(), tenant, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(r.Context(), tenant, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(order))
}

func (h *Handler) createManualOrder(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	var req service.ManualOrderRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.CreateManual(r.Context(), tenant, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderView(order))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) changeOrderStatus(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.ChangeStatus(r.Context(), tenant, id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(order))
}

type linesRequest struct {
	Items []domain.LineEdit `json:"items"`
}

func (h *Handler) updateOrderLines(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req linesRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.UpdateLines(r.Context(), tenant, id, req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(order))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.adminTenant(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Orders.Delete(r.Context(), tenant, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
