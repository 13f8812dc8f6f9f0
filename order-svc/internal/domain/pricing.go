package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity bounds a single line. MaxOrderTotal is the largest amount
// an orders.total NUMERIC(10,2) column holds.
const MaxLineQuantity = 999

var (
	hundred       = decimal.NewFromInt(100)
	MaxOrderTotal = decimal.RequireFromString("99999999.99")
)

// ValidateLines checks the shape of a submission without touching storage.
func ValidateLines(lines []LineRequest) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	for i, l := range lines {
		if l.Quantity < 1 || l.Quantity > MaxLineQuantity {
			return &LineError{Index: i, MenuItemID: l.MenuItemID, Err: ErrInvalidQuantity}
		}
	}
	return nil
}

// CheckLines validates every line against the tenant's catalog. items holds
// the menu items found for the tenant, keyed by id; anything missing from it
// belongs to another tenant or does not exist.
func CheckLines(lines []LineRequest, items map[int]MenuItem) error {
	if err := ValidateLines(lines); err != nil {
		return err
	}
	for i, l := range lines {
		item, ok := items[l.MenuItemID]
		if !ok {
			return &LineError{Index: i, MenuItemID: l.MenuItemID, Err: ErrItemNotFound}
		}
		if !item.IsAvailable {
			return &LineError{Index: i, MenuItemID: l.MenuItemID, Err: ErrItemUnavailable}
		}
	}
	return nil
}

// PriceOrder validates lines, snapshots unit prices onto fresh order items and
// fills the order totals. It is all or nothing: on error order is untouched.
func PriceOrder(order *Order, lines []LineRequest, items map[int]MenuItem, taxRate decimal.Decimal) error {
	if err := CheckLines(lines, items); err != nil {
		return err
	}

	priced := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		item := items[l.MenuItemID]
		priced = append(priced, OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   l.Quantity,
			Price:      item.UnitPrice(),
			Notes:      l.Notes,
		})
	}

	if err := CheckTotals(priced, taxRate); err != nil {
		return err
	}
	order.Items = priced
	Recalculate(order, taxRate)
	return nil
}

// CheckTotals rejects a line set whose total would not fit in storage.
func CheckTotals(lines []OrderItem, taxRate decimal.Decimal) error {
	scratch := Order{Items: lines}
	Recalculate(&scratch, taxRate)
	if scratch.Total.GreaterThan(MaxOrderTotal) {
		return fmt.Errorf("%w: order total %s exceeds %s", ErrInvalidQuantity, scratch.Total.StringFixed(2), MaxOrderTotal.StringFixed(2))
	}
	return nil
}

// Recalculate recomputes subtotal, tax and total from the current lines.
// Line prices are taken as stored; they are never refreshed from the catalog.
func Recalculate(order *Order, taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for _, it := range order.Items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)

	order.Subtotal = subtotal
	order.Tax = tax
	order.Total = subtotal.Add(tax)
}

// ApplyLineEdits builds the new line set of an edited order. Existing lines
// keep their price snapshot; new lines snapshot the current catalog price.
// Lines of current not referenced by edits are dropped; a line referenced
// twice is rejected.
func ApplyLineEdits(current []OrderItem, edits []LineEdit, items map[int]MenuItem) ([]OrderItem, error) {
	if len(edits) == 0 {
		return nil, ErrEmptyOrder
	}

	byID := make(map[int]OrderItem, len(current))
	for _, it := range current {
		byID[it.ID] = it
	}

	out := make([]OrderItem, 0, len(edits))
	for i, e := range edits {
		if e.Quantity < 1 || e.Quantity > MaxLineQuantity {
			return nil, &LineError{Index: i, MenuItemID: e.MenuItemID, Err: ErrInvalidQuantity}
		}

		if e.LineID != 0 {
			existing, ok := byID[e.LineID]
			if !ok {
				return nil, &LineError{Index: i, MenuItemID: e.MenuItemID, Err: ErrNotFound}
			}
			delete(byID, e.LineID)
			existing.Quantity = e.Quantity
			existing.Notes = e.Notes
			out = append(out, existing)
			continue
		}

		item, ok := items[e.MenuItemID]
		if !ok {
			return nil, &LineError{Index: i, MenuItemID: e.MenuItemID, Err: ErrItemNotFound}
		}
		if !item.IsAvailable {
			return nil, &LineError{Index: i, MenuItemID: e.MenuItemID, Err: ErrItemUnavailable}
		}
		out = append(out, OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   e.Quantity,
			Price:      item.UnitPrice(),
			Notes:      e.Notes,
		})
	}
	return out, nil
}

// Cents is used for event payloads where consumers keep integer counters.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}
