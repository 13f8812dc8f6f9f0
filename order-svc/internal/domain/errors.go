package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTableNotFound       = errors.New("table not found")
	ErrTableInactive       = errors.New("table inactive")
	ErrItemNotFound        = errors.New("menu item not found")
	ErrItemUnavailable     = errors.New("menu item unavailable")
	ErrEmptyOrder          = errors.New("order has no items")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 999")
	ErrInvalidOrderType    = errors.New("invalid order type")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderClosed         = errors.New("order is closed")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrInvalidInput        = errors.New("invalid input")
	ErrItemInUse           = errors.New("menu item is referenced by orders; mark it unavailable instead")

	// Storage-level errors, translated by the service layer.
	ErrNotFound             = errors.New("not found")
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
	ErrDuplicateTableNumber = errors.New("table number already used")
	ErrDuplicateSlug        = errors.New("slug already used")
)

// LineError points at the offending line of a submission so the client can
// fix its cart.
type LineError struct {
	Index      int
	MenuItemID int
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (menu item %d): %v", e.Index, e.MenuItemID, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// StatusError names a status value that is not part of the enumeration.
type StatusError struct {
	Value string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Value)
}

func (e *StatusError) Unwrap() error {
	return ErrInvalidStatus
}

// TransitionError carries the status pair of a refused transition.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
