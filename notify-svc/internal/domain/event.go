package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderCreated = "order_created"

type EventItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderEvent is the subset of the order-svc event used for notifications.
type OrderEvent struct {
	Type            string          `json:"type"`
	OrderID         int             `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	RestaurantID    int             `json:"restaurant_id"`
	RestaurantName  string          `json:"restaurant_name"`
	RestaurantEmail string          `json:"restaurant_email"`
	OrderType       string          `json:"order_type"`
	Total           decimal.Decimal `json:"total"`
	Items           []EventItem     `json:"items"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

type Email struct {
	To      string
	Subject string
	Body    string
}
