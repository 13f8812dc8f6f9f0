package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("restaurant not accessible")
)

// RevenueStatuses are the order statuses counted as revenue.
var RevenueStatuses = []string{"confirmed", "preparing", "ready", "delivered"}

type ItemCount struct {
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

type DayCount struct {
	Date   string `json:"date"`
	Orders int64  `json:"orders"`
}

// DailyCounters are one restaurant's figures for one UTC day.
type DailyCounters struct {
	Orders  int64
	Revenue decimal.Decimal
	ByType  map[string]int64
}

type Dashboard struct {
	RestaurantID    int              `json:"restaurant_id"`
	TotalOrders     int64            `json:"total_orders"`
	TotalRevenue    string           `json:"total_revenue"`
	TodayOrders     int64            `json:"today_orders"`
	TodayRevenue    string           `json:"today_revenue"`
	ActiveMenuItems int64            `json:"active_menu_items"`
	ActiveTables    int64            `json:"active_tables"`
	OrdersByDay     []DayCount       `json:"orders_by_day"`
	OrdersByType    map[string]int64 `json:"orders_by_type"`
	TopItemsToday   []ItemCount      `json:"top_items_today"`
	// Source is "redis" when today's figures came from the live counters.
	Source string `json:"source"`
}
