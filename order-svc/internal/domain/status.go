package domain

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// rank orders the forward path. cancelled sits outside it.
var rank = map[Status]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusDelivered: 4,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := rank[st]; ok || st == StatusCancelled {
		return st, nil
	}
	return "", &StatusError{Value: s}
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// RevenueCounted reports whether an order in this status counts towards
// revenue.
func (s Status) RevenueCounted() bool {
	switch s {
	case StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered:
		return true
	}
	return false
}

// CanTransition allows any forward move, skipping steps included, and
// cancellation of any open order.
func (s Status) CanTransition(to Status) bool {
	if s.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	from, ok := rank[s]
	if !ok {
		return false
	}
	next, ok := rank[to]
	return ok && next > from
}

func (s Status) Transition(to Status) error {
	if !s.CanTransition(to) {
		return &TransitionError{From: s, To: to}
	}
	return nil
}

func AllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled}
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

func ParseOrderType(s string) (OrderType, error) {
	switch t := OrderType(s); t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderType, s)
}
