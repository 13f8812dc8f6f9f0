package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID          int              `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Subdomain   string           `json:"subdomain"`
	Description string           `json:"description"`
	Address     string           `json:"address"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type Category struct {
	ID           int    `json:"id"`
	RestaurantID int    `json:"restaurant_id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Position     int    `json:"position"`
	IsActive     bool   `json:"is_active"`
}

type MenuItem struct {
	ID              int              `json:"id"`
	RestaurantID    int              `json:"restaurant_id"`
	CategoryID      int              `json:"category_id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	DiscountPrice   *decimal.Decimal `json:"discount_price,omitempty"`
	IsAvailable     bool             `json:"is_available"`
	PreparationTime int              `json:"preparation_time"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// UnitPrice is what a new order line snapshots: the discount price when one
// is set, the base price otherwise.
func (m MenuItem) UnitPrice() decimal.Decimal {
	if m.DiscountPrice != nil {
		return *m.DiscountPrice
	}
	return m.Price
}

type Table struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	Number       string    `json:"number"`
	Capacity     int       `json:"capacity"`
	Token        uuid.UUID `json:"token"`
	IsActive     bool      `json:"is_active"`
}

type Order struct {
	ID            int             `json:"id"`
	RestaurantID  int             `json:"restaurant_id"`
	TableID       *int            `json:"table_id,omitempty"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	OrderType     OrderType       `json:"order_type"`
	Status        Status          `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID         int             `json:"id"`
	OrderID    int             `json:"order_id"`
	MenuItemID int             `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Notes      string          `json:"notes"`
}

// LineRequest is one (menu item, quantity) pair of a submission.
type LineRequest struct {
	MenuItemID int    `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

// LineEdit is one line of an admin order edit. LineID is zero for new lines.
type LineEdit struct {
	LineID     int    `json:"line_id,omitempty"`
	MenuItemID int    `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

// MenuCategory is a category with its orderable items, as served to
// customers.
type MenuCategory struct {
	Category
	Items []MenuItem `json:"items"`
}

type Menu struct {
	RestaurantID int            `json:"restaurant_id"`
	Categories   []MenuCategory `json:"categories"`
}

type OrderFilter struct {
	Status *Status
	Limit  int
}
