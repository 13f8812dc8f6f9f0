package storage

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id          SERIAL PRIMARY KEY,
		owner_id    TEXT NOT NULL,
		name        TEXT NOT NULL,
		slug        TEXT NOT NULL UNIQUE,
		subdomain   TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		address     TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		tax_rate    NUMERIC(5,4),
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		qr_code     BYTEA,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id            SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		slug          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		position      INT NOT NULL DEFAULT 0,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id               SERIAL PRIMARY KEY,
		restaurant_id    INT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		category_id      INT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		price            NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		discount_price   NUMERIC(10,2) CHECK (discount_price >= 0),
		is_available     BOOLEAN NOT NULL DEFAULT TRUE,
		preparation_time INT NOT NULL DEFAULT 15,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tables (
		id            SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		number        TEXT NOT NULL,
		capacity      INT NOT NULL DEFAULT 2,
		token         UUID NOT NULL UNIQUE,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		qr_code       BYTEA,
		UNIQUE (restaurant_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             SERIAL PRIMARY KEY,
		restaurant_id  INT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		table_id       INT REFERENCES tables(id) ON DELETE SET NULL,
		order_number   TEXT NOT NULL UNIQUE,
		customer_name  TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		order_type     TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'pending',
		subtotal       NUMERIC(10,2) NOT NULL,
		tax            NUMERIC(10,2) NOT NULL,
		total          NUMERIC(10,2) NOT NULL,
		notes          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id           SERIAL PRIMARY KEY,
		order_id     INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		menu_item_id INT NOT NULL REFERENCES menu_items(id),
		quantity     INT NOT NULL CHECK (quantity >= 1),
		price        NUMERIC(10,2) NOT NULL,
		notes        TEXT NOT NULL DEFAULT ''
	)`,
	// Databases created before order lines protected their menu item still
	// carry a cascading key; swap it once.
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM pg_constraint
		           WHERE conname = 'order_items_menu_item_id_fkey' AND confdeltype = 'c') THEN
			ALTER TABLE order_items
				DROP CONSTRAINT order_items_menu_item_id_fkey,
				ADD CONSTRAINT order_items_menu_item_id_fkey
					FOREIGN KEY (menu_item_id) REFERENCES menu_items(id);
		END IF;
	END $$`,
	`CREATE INDEX IF NOT EXISTS idx_orders_restaurant_created ON orders (restaurant_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant ON menu_items (restaurant_id)`,
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
