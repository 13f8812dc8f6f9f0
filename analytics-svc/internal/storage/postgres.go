package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"opendfood/analytics-svc/internal/domain"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) RestaurantOwner(ctx context.Context, restaurantID int) (string, error) {
	var owner string
	err := r.DB.QueryRowContext(ctx, `SELECT owner_id FROM restaurants WHERE id = $1`, restaurantID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return owner, err
}

// Totals counts every order and sums the revenue of counted statuses.
func (r *PostgresRepository) Totals(ctx context.Context, restaurantID int) (int64, decimal.Decimal, error) {
	var (
		orders  int64
		revenue decimal.Decimal
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total) FILTER (WHERE status = ANY($2)), 0)
		FROM orders
		WHERE restaurant_id = $1
	`, restaurantID, pq.Array(domain.RevenueStatuses)).Scan(&orders, &revenue)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("order totals: %w", err)
	}
	return orders, revenue, nil
}

func (r *PostgresRepository) ActiveCounts(ctx context.Context, restaurantID int) (items, tables int64, err error) {
	err = r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM menu_items WHERE restaurant_id = $1 AND is_available),
			(SELECT COUNT(*) FROM tables WHERE restaurant_id = $1 AND is_active)
	`, restaurantID).Scan(&items, &tables)
	if err != nil {
		return 0, 0, fmt.Errorf("active counts: %w", err)
	}
	return items, tables, nil
}

// OrdersPerDay returns one row per UTC day from since to today, including
// days without orders.
func (r *PostgresRepository) OrdersPerDay(ctx context.Context, restaurantID int, since string) ([]domain.DayCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT to_char(d.day, 'YYYY-MM-DD'), COUNT(o.id)
		FROM generate_series($2::date, (NOW() AT TIME ZONE 'UTC')::date, INTERVAL '1 day') AS d(day)
		LEFT JOIN orders o
		       ON o.restaurant_id = $1
		      AND (o.created_at AT TIME ZONE 'UTC')::date = d.day
		GROUP BY d.day
		ORDER BY d.day
	`, restaurantID, since)
	if err != nil {
		return nil, fmt.Errorf("orders per day: %w", err)
	}
	defer rows.Close()

	var out []domain.DayCount
	for rows.Next() {
		var dc domain.DayCount
		if err := rows.Scan(&dc.Date, &dc.Orders); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// Day rebuilds the live counters of one UTC day from the orders table.
func (r *PostgresRepository) Day(ctx context.Context, restaurantID int, day string) (*domain.DailyCounters, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT order_type,
		       COUNT(*),
		       COALESCE(SUM(total) FILTER (WHERE status = ANY($3)), 0)
		FROM orders
		WHERE restaurant_id = $1 AND (created_at AT TIME ZONE 'UTC')::date = $2::date
		GROUP BY order_type
	`, restaurantID, day, pq.Array(domain.RevenueStatuses))
	if err != nil {
		return nil, fmt.Errorf("daily counters: %w", err)
	}
	defer rows.Close()

	dc := &domain.DailyCounters{Revenue: decimal.Zero, ByType: map[string]int64{}}
	for rows.Next() {
		var (
			orderType string
			count     int64
			revenue   decimal.Decimal
		)
		if err := rows.Scan(&orderType, &count, &revenue); err != nil {
			return nil, err
		}
		dc.ByType[orderType] = count
		dc.Orders += count
		dc.Revenue = dc.Revenue.Add(revenue)
	}
	return dc, rows.Err()
}

func (r *PostgresRepository) TopItems(ctx context.Context, restaurantID int, day string, limit int) ([]domain.ItemCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT mi.id, mi.name, SUM(oi.quantity) AS qty
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN menu_items mi ON mi.id = oi.menu_item_id
		WHERE o.restaurant_id = $1 AND (o.created_at AT TIME ZONE 'UTC')::date = $2::date
		GROUP BY mi.id, mi.name
		ORDER BY qty DESC, mi.id
		LIMIT $3
	`, restaurantID, day, limit)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()

	var out []domain.ItemCount
	for rows.Next() {
		var it domain.ItemCount
		if err := rows.Scan(&it.MenuItemID, &it.Name, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
