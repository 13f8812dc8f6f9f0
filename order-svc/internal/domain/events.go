package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

type EventItem struct {
	MenuItemID int             `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// OrderEvent is published to Kafka after an order is created or its status
// changes. It is keyed by restaurant id.
type OrderEvent struct {
	Type            string          `json:"type"`
	OrderID         int             `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	RestaurantID    int             `json:"restaurant_id"`
	RestaurantName  string          `json:"restaurant_name,omitempty"`
	RestaurantEmail string          `json:"restaurant_email,omitempty"`
	OrderType       OrderType       `json:"order_type"`
	FromStatus      Status          `json:"from_status,omitempty"`
	Status          Status          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	TotalCents      int64           `json:"total_cents"`
	Items           []EventItem     `json:"items,omitempty"`
	OrderCreatedAt  time.Time       `json:"order_created_at"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func NewOrderEvent(eventType string, order *Order, rest *Restaurant) OrderEvent {
	ev := OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		RestaurantID:   order.RestaurantID,
		OrderType:      order.OrderType,
		Status:         order.Status,
		Total:          order.Total,
		TotalCents:     Cents(order.Total),
		OrderCreatedAt: order.CreatedAt,
		OccurredAt:     time.Now().UTC(),
	}
	if rest != nil {
		ev.RestaurantName = rest.Name
		ev.RestaurantEmail = rest.Email
	}
	for _, it := range order.Items {
		ev.Items = append(ev.Items, EventItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      it.Price,
		})
	}
	return ev
}
