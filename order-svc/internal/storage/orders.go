package storage

import (
	"context"
	"database/sql"
	"fmt"

	"opendfood/order-svc/internal/domain"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, restaurant_id, table_id, order_number, customer_name, customer_phone, order_type, status, subtotal, tax, total, notes, created_at, updated_at`

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var tableID sql.NullInt64
	if err := row.Scan(&o.ID, &o.RestaurantID, &tableID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone,
		&o.OrderType, &o.Status, &o.Subtotal, &o.Tax, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := int(tableID.Int64)
		o.TableID = &id
	}
	return &o, nil
}

func nullTableID(id *int) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func lineItemIDs(lines []domain.LineRequest) []int {
	seen := make(map[int]bool, len(lines))
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		if !seen[l.MenuItemID] {
			seen[l.MenuItemID] = true
			ids = append(ids, l.MenuItemID)
		}
	}
	return ids
}

// CreateOrder prices and persists order with its lines in one transaction.
// Menu items are re-read FOR SHARE so a concurrent availability change either
// waits for this order or is seen by it. On any error nothing is written.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order, lines []domain.LineRequest, taxRate decimal.Decimal) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	items, err := queryMenuItems(ctx, tx, order.RestaurantID, lineItemIDs(lines), " FOR SHARE")
	if err != nil {
		return fmt.Errorf("load menu items: %w", err)
	}

	if err := domain.PriceOrder(order, lines, items, taxRate); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (restaurant_id, table_id, order_number, customer_name, customer_phone, order_type, status, subtotal, tax, total, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		order.RestaurantID, nullTableID(order.TableID), order.OrderNumber, order.CustomerName, order.CustomerPhone,
		order.OrderType, order.Status, order.Subtotal, order.Tax, order.Total, order.Notes).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if isUniqueViolation(err, "orders_order_number_key") {
		return domain.ErrDuplicateOrderNumber
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, quantity, price, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, it.MenuItemID, it.Quantity, it.Price, it.Notes).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, restaurantID, orderID int) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND restaurant_id = $2`, orderID, restaurantID))
	if err != nil {
		return nil, notFound(err)
	}

	items, err := orderLines(ctx, r.DB, []int{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func orderLines(ctx context.Context, q querier, orderIDs []int) (map[int][]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.menu_item_id, mi.name, oi.quantity, oi.price, oi.notes
		FROM order_items oi
		JOIN menu_items mi ON mi.id = oi.menu_item_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[int][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.Price, &it.Notes); err != nil {
			return nil, err
		}
		lines[it.OrderID] = append(lines[it.OrderID], it)
	}
	return lines, rows.Err()
}

// ListOrders returns the restaurant's orders newest first, with their lines.
func (r *PostgresRepository) ListOrders(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1`
	args := []interface{}{restaurantID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []int
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := orderLines(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = lines[orders[i].ID]
	}
	return orders, nil
}

// UpdateOrderStatus applies the change only if the stored status is still
// from. Zero affected rows means another writer got there first.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, restaurantID, orderID int, from, to domain.Status) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND restaurant_id = $3 AND status = $4`,
		to, orderID, restaurantID, from)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ReplaceOrderLines rewrites the line set of an open order and recomputes its
// totals from scratch. The order row is locked for the whole edit.
func (r *PostgresRepository) ReplaceOrderLines(ctx context.Context, restaurantID, orderID int, edits []domain.LineEdit, taxRate decimal.Decimal) (*domain.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND restaurant_id = $2 FOR UPDATE`, orderID, restaurantID))
	if err != nil {
		return nil, notFound(err)
	}
	if order.Status.Terminal() {
		return nil, domain.ErrOrderClosed
	}

	current, err := orderLines(ctx, tx, []int{order.ID})
	if err != nil {
		return nil, err
	}

	var newIDs []int
	for _, e := range edits {
		if e.LineID == 0 {
			newIDs = append(newIDs, e.MenuItemID)
		}
	}
	items := map[int]domain.MenuItem{}
	if len(newIDs) > 0 {
		if items, err = queryMenuItems(ctx, tx, restaurantID, newIDs, " FOR SHARE"); err != nil {
			return nil, fmt.Errorf("load menu items: %w", err)
		}
	}

	lines, err := domain.ApplyLineEdits(current[order.ID], edits, items)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTotals(lines, taxRate); err != nil {
		return nil, err
	}

	kept := make([]int, 0, len(lines))
	for _, it := range lines {
		if it.ID != 0 {
			kept = append(kept, it.ID)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM order_items WHERE order_id = $1 AND NOT (id = ANY($2))`, order.ID, pq.Array(kept)); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}

	for i := range lines {
		it := &lines[i]
		it.OrderID = order.ID
		if it.ID != 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE order_items SET quantity = $1, notes = $2 WHERE id = $3`, it.Quantity, it.Notes, it.ID); err != nil {
				return nil, fmt.Errorf("update order item: %w", err)
			}
			continue
		}
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, quantity, price, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, it.MenuItemID, it.Quantity, it.Price, it.Notes).Scan(&it.ID); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	order.Items = lines
	domain.Recalculate(order, taxRate)

	if err := tx.QueryRowContext(ctx, `
		UPDATE orders SET subtotal = $1, tax = $2, total = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`,
		order.Subtotal, order.Tax, order.Total, order.ID).Scan(&order.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update order totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresRepository) DeleteOrder(ctx context.Context, restaurantID, orderID int) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1 AND restaurant_id = $2`, orderID, restaurantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
