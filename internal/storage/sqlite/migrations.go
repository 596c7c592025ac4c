package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// The unique partial index on orders enforces the single-open-order
// invariant at the database level, independent of the transactional
// check in OpenOrder.
const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS menus (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    restaurant INTEGER NOT NULL,
    imported INTEGER NOT NULL,
    FOREIGN KEY (restaurant) REFERENCES restaurants(id)
);

CREATE TABLE IF NOT EXISTS menu_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    menu INTEGER NOT NULL,
    number INTEGER NOT NULL,
    name TEXT NOT NULL,
    price_in_cents INTEGER NOT NULL,
    FOREIGN KEY (menu) REFERENCES menus(id)
);

CREATE TABLE IF NOT EXISTS orders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    menu INTEGER NOT NULL,
    overhead_in_cents INTEGER NOT NULL DEFAULT 0,
    opened INTEGER NOT NULL,
    closed INTEGER,
    FOREIGN KEY (menu) REFERENCES menus(id)
);

CREATE TABLE IF NOT EXISTS order_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id INTEGER NOT NULL,
    person_name TEXT NOT NULL,
    menu_item INTEGER NOT NULL,
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
    FOREIGN KEY (menu_item) REFERENCES menu_items(id)
);

CREATE TABLE IF NOT EXISTS associations (
    name TEXT PRIMARY KEY,
    account TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_menus_restaurant ON menus(restaurant);
CREATE INDEX IF NOT EXISTS idx_menu_items_menu ON menu_items(menu);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_single_open ON orders((1)) WHERE closed IS NULL;
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
