package storage

import (
	"context"
	"database/sql"
	"errors"

	"opendfood/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

const restaurantColumns = `id, owner_id, name, slug, subdomain, description, address, phone, email, tax_rate, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRestaurant(row rowScanner) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	var taxRate decimal.NullDecimal
	if err := row.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Slug, &rest.Subdomain, &rest.Description,
		&rest.Address, &rest.Phone, &rest.Email, &taxRate, &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
		return nil, err
	}
	rest.TaxRate = decimalPtr(taxRate)
	return &rest, nil
}

func (r *PostgresRepository) GetActiveRestaurantBySubdomain(ctx context.Context, subdomain string) (*domain.Restaurant, error) {
	rest, err := scanRestaurant(r.DB.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE subdomain = $1 AND is_active`, subdomain))
	if err != nil {
		return nil, notFound(err)
	}
	return rest, nil
}

func (r *PostgresRepository) GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error) {
	rest, err := scanRestaurant(r.DB.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return rest, nil
}

func (r *PostgresRepository) ListRestaurantsByOwner(ctx context.Context, ownerID string) ([]domain.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *rest)
	}
	return restaurants, rows.Err()
}

// SlugTaken reports whether slug is used as a slug or a subdomain.
func (r *PostgresRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM restaurants WHERE slug = $1 OR subdomain = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO restaurants (owner_id, name, slug, subdomain, description, address, phone, email, tax_rate, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		RETURNING id, is_active, created_at, updated_at`,
		rest.OwnerID, rest.Name, rest.Slug, rest.Subdomain, rest.Description, rest.Address, rest.Phone, rest.Email,
		nullDecimal(rest.TaxRate)).
		Scan(&rest.ID, &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt)
	if isUniqueViolation(err, "restaurants_slug_key") || isUniqueViolation(err, "restaurants_subdomain_key") {
		return domain.ErrDuplicateSlug
	}
	return err
}

func (r *PostgresRepository) UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE restaurants
		SET name=$1, description=$2, address=$3, phone=$4, email=$5, tax_rate=$6, updated_at=NOW()
		WHERE id=$7
		RETURNING owner_id, slug, subdomain, is_active, created_at, updated_at`,
		rest.Name, rest.Description, rest.Address, rest.Phone, rest.Email, nullDecimal(rest.TaxRate), rest.ID).
		Scan(&rest.OwnerID, &rest.Slug, &rest.Subdomain, &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt)
	return notFound(err)
}

func (r *PostgresRepository) SetRestaurantActive(ctx context.Context, id int, active bool) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE restaurants SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) SaveRestaurantQR(ctx context.Context, id int, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE restaurants SET qr_code = $1 WHERE id = $2`, qr, id)
	return err
}

func (r *PostgresRepository) GetRestaurantQR(ctx context.Context, id int) ([]byte, error) {
	var qr []byte
	if err := r.DB.QueryRowContext(ctx, `SELECT qr_code FROM restaurants WHERE id = $1`, id).Scan(&qr); err != nil {
		return nil, notFound(err)
	}
	return qr, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, restaurant_id, name, slug, description, position, is_active
		FROM categories
		WHERE restaurant_id = $1
		ORDER BY position, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Slug, &c.Description, &c.Position, &c.IsActive); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO categories (restaurant_id, name, slug, description, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		c.RestaurantID, c.Name, c.Slug, c.Description, c.Position, c.IsActive).Scan(&c.ID)
}

const menuItemColumns = `id, restaurant_id, category_id, name, description, price, discount_price, is_available, preparation_time, created_at, updated_at`

func scanMenuItem(row rowScanner) (*domain.MenuItem, error) {
	var item domain.MenuItem
	var discount decimal.NullDecimal
	if err := row.Scan(&item.ID, &item.RestaurantID, &item.CategoryID, &item.Name, &item.Description, &item.Price,
		&discount, &item.IsAvailable, &item.PreparationTime, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.DiscountPrice = decimalPtr(discount)
	return &item, nil
}

func (r *PostgresRepository) ListMenuItems(ctx context.Context, restaurantID int) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id = $1 ORDER BY category_id, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetMenuItems returns the tenant's items among ids, keyed by id. Ids that
// belong to another tenant are simply absent from the result.
func (r *PostgresRepository) GetMenuItems(ctx context.Context, restaurantID int, ids []int) (map[int]domain.MenuItem, error) {
	return queryMenuItems(ctx, r.DB, restaurantID, ids, "")
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func queryMenuItems(ctx context.Context, q querier, restaurantID int, ids []int, lock string) (map[int]domain.MenuItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id = $1 AND id = ANY($2)`+lock,
		restaurantID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int]domain.MenuItem, len(ids))
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items[item.ID] = *item
	}
	return items, rows.Err()
}

// CreateMenuItem inserts only when the category belongs to the same
// restaurant.
func (r *PostgresRepository) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO menu_items (restaurant_id, category_id, name, description, price, discount_price, is_available, preparation_time)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM categories WHERE id = $2 AND restaurant_id = $1)
		RETURNING id, created_at, updated_at`,
		item.RestaurantID, item.CategoryID, item.Name, item.Description, item.Price, nullDecimal(item.DiscountPrice),
		item.IsAvailable, item.PreparationTime).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return notFound(err)
}

func (r *PostgresRepository) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE menu_items
		SET category_id=$1, name=$2, description=$3, price=$4, discount_price=$5, is_available=$6, preparation_time=$7, updated_at=NOW()
		WHERE id=$8 AND restaurant_id=$9
		  AND EXISTS (SELECT 1 FROM categories WHERE id = $1 AND restaurant_id = $9)
		RETURNING created_at, updated_at`,
		item.CategoryID, item.Name, item.Description, item.Price, nullDecimal(item.DiscountPrice), item.IsAvailable,
		item.PreparationTime, item.ID, item.RestaurantID).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	return notFound(err)
}

func (r *PostgresRepository) SetItemAvailability(ctx context.Context, restaurantID, itemID int, available bool) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE menu_items SET is_available=$1, updated_at=NOW() WHERE id=$2 AND restaurant_id=$3`,
		available, itemID, restaurantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) DeleteMenuItem(ctx context.Context, restaurantID, itemID int) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM menu_items WHERE id=$1 AND restaurant_id=$2`, itemID, restaurantID)
	if isForeignKeyViolation(err) {
		return 0, domain.ErrItemInUse
	}
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const tableColumns = `id, restaurant_id, number, capacity, token, is_active`

func scanTable(row rowScanner) (*domain.Table, error) {
	var t domain.Table
	if err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Capacity, &t.Token, &t.IsActive); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) CreateTable(ctx context.Context, t *domain.Table) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO tables (restaurant_id, number, capacity, token, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		t.RestaurantID, t.Number, t.Capacity, t.Token, t.IsActive).Scan(&t.ID)
	if isUniqueViolation(err, "tables_restaurant_id_number_key") {
		return domain.ErrDuplicateTableNumber
	}
	return err
}

func (r *PostgresRepository) ListTables(ctx context.Context, restaurantID int) ([]domain.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE restaurant_id = $1 ORDER BY number`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []domain.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

func (r *PostgresRepository) GetTable(ctx context.Context, restaurantID, tableID int) (*domain.Table, error) {
	t, err := scanTable(r.DB.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = $1 AND restaurant_id = $2`, tableID, restaurantID))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// GetTableByToken is scoped by restaurant: another tenant's token is not
// found.
func (r *PostgresRepository) GetTableByToken(ctx context.Context, restaurantID int, token uuid.UUID) (*domain.Table, error) {
	t, err := scanTable(r.DB.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE token = $1 AND restaurant_id = $2`, token, restaurantID))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *PostgresRepository) SetTableActive(ctx context.Context, restaurantID, tableID int, active bool) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE tables SET is_active=$1 WHERE id=$2 AND restaurant_id=$3`, active, tableID, restaurantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) DeleteTable(ctx context.Context, restaurantID, tableID int) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM tables WHERE id=$1 AND restaurant_id=$2`, tableID, restaurantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) SaveTableQR(ctx context.Context, tableID int, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE tables SET qr_code = $1 WHERE id = $2`, qr, tableID)
	return err
}

func (r *PostgresRepository) GetTableQR(ctx context.Context, restaurantID, tableID int) ([]byte, error) {
	var qr []byte
	if err := r.DB.QueryRowContext(ctx,
		`SELECT qr_code FROM tables WHERE id = $1 AND restaurant_id = $2`, tableID, restaurantID).Scan(&qr); err != nil {
		return nil, notFound(err)
	}
	return qr, nil
}
