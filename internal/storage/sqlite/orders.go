package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fishsticks/internal/models"
	"fishsticks/internal/storage"
)

// OpenOrder creates a new open order on the given menu. The invariant
// check and the insert run in one transaction so a concurrent caller
// can never end up with two open orders.
func (s *SQLiteStore) OpenOrder(ctx context.Context, menu models.MenuID) (models.Order, error) {
	var order models.Order
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := openOrderInTx(ctx, tx)
		if err != nil {
			return err
		}
		if current != nil {
			return &storage.AlreadyOpenError{Current: *current}
		}

		opened := time.Now().Unix()
		res, err := tx.ExecContext(ctx,
			"INSERT INTO orders (menu, overhead_in_cents, opened) VALUES (?, 0, ?)",
			int64(menu), opened,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read order id: %w", err)
		}

		order = models.Order{
			ID:     models.OrderID(id),
			Menu:   menu,
			Opened: opened,
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// CurrentOpenOrder returns the open order, or nil when there is none.
func (s *SQLiteStore) CurrentOpenOrder(ctx context.Context) (*models.Order, error) {
	return openOrderInTx(ctx, s.db)
}

// DemandOpenOrder returns the open order, ErrNoOpenOrder otherwise.
func (s *SQLiteStore) DemandOpenOrder(ctx context.Context) (models.Order, error) {
	order, err := s.CurrentOpenOrder(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if order == nil {
		return models.Order{}, storage.ErrNoOpenOrder
	}
	return *order, nil
}

// CloseOrder closes the currently open order.
func (s *SQLiteStore) CloseOrder(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := openOrderInTx(ctx, tx)
		if err != nil {
			return err
		}
		if current == nil {
			return storage.ErrNoOpenOrder
		}
		// Unreachable while the open-order query filters on closed,
		// but the invariant is cheap to check.
		if current.Closed != nil {
			return storage.ErrOrderAlreadyClosed
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE orders SET closed = ? WHERE id = ?",
			time.Now().Unix(), int64(current.ID),
		)
		if err != nil {
			return fmt.Errorf("failed to close order: %w", err)
		}
		return nil
	})
}

// SetOverhead overwrites the order's overhead unconditionally.
func (s *SQLiteStore) SetOverhead(ctx context.Context, order models.OrderID, cents int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET overhead_in_cents = ? WHERE id = ?",
		cents, int64(order),
	)
	if err != nil {
		return fmt.Errorf("failed to set overhead: %w", err)
	}
	return nil
}

// AddOrderItem appends a line entry to the order.
func (s *SQLiteStore) AddOrderItem(ctx context.Context, order models.OrderID, person string, item models.MenuItemID) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO order_items (order_id, person_name, menu_item) VALUES (?, ?, ?)",
		int64(order), person, int64(item),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	return nil
}

// ClearOrderItems deletes all of a person's entries in the order.
func (s *SQLiteStore) ClearOrderItems(ctx context.Context, order models.OrderID, person string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM order_items WHERE order_id = ? AND person_name = ?",
		int64(order), person,
	)
	if err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	return nil
}

// ItemsInOrder returns the order's lines joined with their menu items
// in one query, sorted by person name then menu item ID. Bill
// computation groups consecutive runs of equal person names and
// relies on this ordering.
func (s *SQLiteStore) ItemsInOrder(ctx context.Context, order models.OrderID) ([]models.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mi.id, mi.menu, mi.number, mi.name, mi.price_in_cents,
		       oi.id, oi.order_id, oi.person_name, oi.menu_item
		FROM order_items oi
		JOIN menu_items mi ON mi.id = oi.menu_item
		WHERE oi.order_id = ?
		ORDER BY oi.person_name ASC, oi.menu_item ASC`,
		int64(order),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var line models.OrderLine
		err := rows.Scan(
			&line.MenuItem.ID, &line.MenuItem.Menu, &line.MenuItem.Number,
			&line.MenuItem.Name, &line.MenuItem.PriceInCents,
			&line.OrderItem.ID, &line.OrderItem.Order,
			&line.OrderItem.PersonName, &line.OrderItem.MenuItem,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}
	return lines, nil
}

// PreviousOrders lists the distinct menu items a person has ordered
// in closed orders at the given restaurant, oldest menu items first.
func (s *SQLiteStore) PreviousOrders(ctx context.Context, person string, restaurant models.RestaurantID) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT mi.id, mi.menu, mi.number, mi.name, mi.price_in_cents
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN menus m ON m.id = o.menu
		JOIN menu_items mi ON mi.id = oi.menu_item
		WHERE oi.person_name = ? AND m.restaurant = ? AND o.closed IS NOT NULL
		ORDER BY mi.id ASC`,
		person, int64(restaurant),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query previous orders: %w", err)
	}
	defer rows.Close()

	return scanMenuItems(rows)
}

// SetAssociation upserts the billing account for a name.
func (s *SQLiteStore) SetAssociation(ctx context.Context, name, account string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO associations (name, account) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET account = excluded.account`,
		name, account,
	)
	if err != nil {
		return fmt.Errorf("failed to set association: %w", err)
	}
	return nil
}

// Associations lists all associations sorted by name.
func (s *SQLiteStore) Associations(ctx context.Context) ([]models.Association, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, account FROM associations ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query associations: %w", err)
	}
	defer rows.Close()

	var associations []models.Association
	for rows.Next() {
		var a models.Association
		if err := rows.Scan(&a.Name, &a.Account); err != nil {
			return nil, fmt.Errorf("failed to scan association: %w", err)
		}
		associations = append(associations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate associations: %w", err)
	}
	return associations, nil
}
