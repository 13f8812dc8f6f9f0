package service

import (
	"fmt"
	"strings"

	"opendfood/notify-svc/internal/domain"

	"github.com/shopspring/decimal"
)

var orderTypeLabels = map[string]string{
	"dine_in":  "Dine in",
	"takeaway": "Takeaway",
	"delivery": "Delivery",
}

// NewOrderEmail renders the message sent to a restaurant for a new order.
func NewOrderEmail(e domain.OrderEvent) domain.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s for %s\n\n", e.OrderNumber, e.RestaurantName)

	label, ok := orderTypeLabels[e.OrderType]
	if !ok {
		label = e.OrderType
	}
	fmt.Fprintf(&b, "Type: %s\n", label)
	if !e.OccurredAt.IsZero() {
		fmt.Fprintf(&b, "Placed: %s\n", e.OccurredAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	b.WriteString("\n")

	for _, it := range e.Items {
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&b, "%d x %s  %s\n", it.Quantity, it.Name, line.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", e.Total.StringFixed(2))

	return domain.Email{
		To:      e.RestaurantEmail,
		Subject: fmt.Sprintf("New order %s", e.OrderNumber),
		Body:    b.String(),
	}
}
