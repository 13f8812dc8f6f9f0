package domain

import (
	"strconv"
	"time"
)

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

type EventItem struct {
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// OrderEvent is the subset of the order-svc event this service reads.
type OrderEvent struct {
	Type           string      `json:"type"`
	OrderID        int         `json:"order_id"`
	RestaurantID   int         `json:"restaurant_id"`
	OrderType      string      `json:"order_type"`
	FromStatus     string      `json:"from_status"`
	Status         string      `json:"status"`
	TotalCents     int64       `json:"total_cents"`
	Items          []EventItem `json:"items"`
	OrderCreatedAt time.Time   `json:"order_created_at"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

// Day is the UTC date bucket the order counts towards.
func (e OrderEvent) Day() string {
	t := e.OrderCreatedAt
	if t.IsZero() {
		t = e.OccurredAt
	}
	return t.UTC().Format("2006-01-02")
}

// DedupKey identifies one delivery of an event so replays are counted once.
func (e OrderEvent) DedupKey() string {
	return e.Type + ":" + strconv.Itoa(e.OrderID) + ":" + e.Status
}

// RevenueCounted mirrors the order-svc rule: confirmed through delivered
// count as revenue, pending and cancelled do not.
func RevenueCounted(status string) bool {
	switch status {
	case "confirmed", "preparing", "ready", "delivered":
		return true
	}
	return false
}

// RevenueDelta is the change in counted revenue caused by the event.
func (e OrderEvent) RevenueDelta() int64 {
	var before bool
	if e.Type == EventOrderStatusChanged {
		before = RevenueCounted(e.FromStatus)
	}
	after := RevenueCounted(e.Status)
	switch {
	case !before && after:
		return e.TotalCents
	case before && !after:
		return -e.TotalCents
	}
	return 0
}
