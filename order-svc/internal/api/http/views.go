package httpapi

import (
	"time"

	"opendfood/order-svc/internal/domain"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type receiptLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// receipt is what a customer gets back after submitting an order.
type receipt struct {
	OrderNumber string        `json:"order_number"`
	Status      domain.Status `json:"status"`
	OrderType   string        `json:"order_type"`
	Subtotal    string        `json:"subtotal"`
	Tax         string        `json:"tax"`
	Total       string        `json:"total"`
	Items       []receiptLine `json:"items"`
	CreatedAt   time.Time     `json:"created_at"`
}

func newReceipt(o *domain.Order) receipt {
	r := receipt{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		OrderType:   string(o.OrderType),
		Subtotal:    money(o.Subtotal),
		Tax:         money(o.Tax),
		Total:       money(o.Total),
		Items:       make([]receiptLine, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
	}
	for _, it := range o.Items {
		r.Items = append(r.Items, receiptLine{Name: it.Name, Quantity: it.Quantity, Price: money(it.Price)})
	}
	return r
}

type orderLine struct {
	ID         int    `json:"id"`
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
	LineTotal  string `json:"line_total"`
	Notes      string `json:"notes,omitempty"`
}

type orderView struct {
	ID            int           `json:"id"`
	OrderNumber   string        `json:"order_number"`
	TableID       *int          `json:"table_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	OrderType     string        `json:"order_type"`
	Status        domain.Status `json:"status"`
	Subtotal      string        `json:"subtotal"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	Notes         string        `json:"notes"`
	Items         []orderLine   `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func newOrderView(o *domain.Order) orderView {
	v := orderView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		TableID:       o.TableID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		OrderType:     string(o.OrderType),
		Status:        o.Status,
		Subtotal:      money(o.Subtotal),
		Tax:           money(o.Tax),
		Total:         money(o.Total),
		Notes:         o.Notes,
		Items:         make([]orderLine, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderLine{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      money(it.Price),
			LineTotal:  money(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))),
			Notes:      it.Notes,
		})
	}
	return v
}

type menuItemView struct {
	ID              int     `json:"id"`
	CategoryID      int     `json:"category_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           string  `json:"price"`
	DiscountPrice   *string `json:"discount_price"`
	UnitPrice       string  `json:"unit_price"`
	IsAvailable     bool    `json:"is_available"`
	PreparationTime int     `json:"preparation_time"`
}

func newMenuItemView(it domain.MenuItem) menuItemView {
	v := menuItemView{
		ID:              it.ID,
		CategoryID:      it.CategoryID,
		Name:            it.Name,
		Description:     it.Description,
		Price:           money(it.Price),
		UnitPrice:       money(it.UnitPrice()),
		IsAvailable:     it.IsAvailable,
		PreparationTime: it.PreparationTime,
	}
	if it.DiscountPrice != nil {
		d := money(*it.DiscountPrice)
		v.DiscountPrice = &d
	}
	return v
}

type categoryView struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Items       []menuItemView `json:"items"`
}

type restaurantInfo struct {
	Name        string `json:"name"`
	Subdomain   string `json:"subdomain"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

type tableInfo struct {
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
}

type menuView struct {
	Restaurant restaurantInfo `json:"restaurant"`
	Table      *tableInfo     `json:"table,omitempty"`
	Categories []categoryView `json:"categories"`
}

func newMenuView(rest *domain.Restaurant, table *domain.Table, menu *domain.Menu) menuView {
	v := menuView{
		Restaurant: restaurantInfo{
			Name:        rest.Name,
			Subdomain:   rest.Subdomain,
			Description: rest.Description,
			Address:     rest.Address,
			Phone:       rest.Phone,
		},
		Categories: make([]categoryView, 0, len(menu.Categories)),
	}
	if table != nil {
		v.Table = &tableInfo{Number: table.Number, Capacity: table.Capacity}
	}
	for _, c := range menu.Categories {
		cv := categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description, Items: make([]menuItemView, 0, len(c.Items))}
		for _, it := range c.Items {
			cv.Items = append(cv.Items, newMenuItemView(it))
		}
		v.Categories = append(v.Categories, cv)
	}
	return v
}
