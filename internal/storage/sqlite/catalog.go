package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fishsticks/internal/models"
	"fishsticks/internal/storage"
)

// CreateRestaurant inserts a restaurant and returns its ID.
func (s *SQLiteStore) CreateRestaurant(ctx context.Context, name string) (models.RestaurantID, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO restaurants (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert restaurant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read restaurant id: %w", err)
	}
	return models.RestaurantID(id), nil
}

// Restaurants lists all restaurants.
func (s *SQLiteStore) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM restaurants ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate restaurants: %w", err)
	}
	return restaurants, nil
}

// Restaurant fetches one restaurant by ID.
func (s *SQLiteStore) Restaurant(ctx context.Context, id models.RestaurantID) (models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM restaurants WHERE id = ?", int64(id),
	).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Restaurant{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("failed to get restaurant: %w", err)
	}
	return r, nil
}

// RestaurantByName fetches a restaurant by exact name.
func (s *SQLiteStore) RestaurantByName(ctx context.Context, name string) (models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM restaurants WHERE name = ? LIMIT 1", name,
	).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Restaurant{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("failed to get restaurant by name: %w", err)
	}
	return r, nil
}

// MenusForRestaurant lists menus, most recently imported first.
func (s *SQLiteStore) MenusForRestaurant(ctx context.Context, id models.RestaurantID) ([]models.Menu, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, restaurant, imported FROM menus WHERE restaurant = ? ORDER BY imported DESC",
		int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query menus: %w", err)
	}
	defer rows.Close()

	var menus []models.Menu
	for rows.Next() {
		var m models.Menu
		if err := rows.Scan(&m.ID, &m.Restaurant, &m.Imported); err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menus: %w", err)
	}
	return menus, nil
}

// CurrentMenuForRestaurant returns the most recently imported menu.
func (s *SQLiteStore) CurrentMenuForRestaurant(ctx context.Context, id models.RestaurantID) (models.Menu, error) {
	var m models.Menu
	err := s.db.QueryRowContext(ctx,
		"SELECT id, restaurant, imported FROM menus WHERE restaurant = ? ORDER BY imported DESC LIMIT 1",
		int64(id),
	).Scan(&m.ID, &m.Restaurant, &m.Imported)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Menu{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Menu{}, fmt.Errorf("failed to get current menu: %w", err)
	}
	return m, nil
}

// Menu fetches one menu by ID.
func (s *SQLiteStore) Menu(ctx context.Context, id models.MenuID) (models.Menu, error) {
	var m models.Menu
	err := s.db.QueryRowContext(ctx,
		"SELECT id, restaurant, imported FROM menus WHERE id = ?", int64(id),
	).Scan(&m.ID, &m.Restaurant, &m.Imported)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Menu{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Menu{}, fmt.Errorf("failed to get menu: %w", err)
	}
	return m, nil
}

// MenuItems lists all items on a menu.
func (s *SQLiteStore) MenuItems(ctx context.Context, id models.MenuID) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, menu, number, name, price_in_cents FROM menu_items WHERE menu = ? ORDER BY id",
		int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	return scanMenuItems(rows)
}

func scanMenuItems(rows *sql.Rows) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Menu, &item.Number, &item.Name, &item.PriceInCents); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}
	return items, nil
}

// IngestMenu creates a menu and its items in one transaction.
func (s *SQLiteStore) IngestMenu(ctx context.Context, restaurant models.RestaurantID, items []models.NewMenuItem) (models.MenuID, error) {
	var menuID models.MenuID
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO menus (restaurant, imported) VALUES (?, ?)",
			int64(restaurant), time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert menu: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read menu id: %w", err)
		}
		menuID = models.MenuID(id)

		for _, item := range items {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO menu_items (menu, number, name, price_in_cents) VALUES (?, ?, ?, ?)",
				id, item.Number, item.Name, item.PriceInCents,
			)
			if err != nil {
				return fmt.Errorf("failed to insert menu item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return menuID, nil
}
