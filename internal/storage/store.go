// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"fishsticks/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoOpenOrder is returned by operations that require an open order
// when none exists.
var ErrNoOpenOrder = errors.New("no open order")

// ErrOrderAlreadyClosed guards against closing an order twice. Given
// the single-open-order invariant this should be unreachable, but the
// store checks anyway.
var ErrOrderAlreadyClosed = errors.New("order already closed")

// AlreadyOpenError is returned by OpenOrder when an order is already
// accepting items.
type AlreadyOpenError struct {
	Current models.Order
}

func (e *AlreadyOpenError) Error() string {
	return fmt.Sprintf("order %d is already open", e.Current.ID)
}

// Store defines the persistence contract for fishsticks.
//
// Every mutation that spans more than one statement (notably the
// open-order invariant check plus insert) executes inside a single
// transaction, so the invariant holds even without the command
// layer's outer lock. Store errors propagate wrapped and are never
// retried.
type Store interface {
	// CreateRestaurant inserts a restaurant and returns its ID.
	CreateRestaurant(ctx context.Context, name string) (models.RestaurantID, error)

	// Restaurants lists all restaurants.
	Restaurants(ctx context.Context) ([]models.Restaurant, error)

	// Restaurant fetches one restaurant, ErrNotFound if absent.
	Restaurant(ctx context.Context, id models.RestaurantID) (models.Restaurant, error)

	// RestaurantByName fetches a restaurant by exact name,
	// ErrNotFound if absent.
	RestaurantByName(ctx context.Context, name string) (models.Restaurant, error)

	// MenusForRestaurant lists menus, most recently imported first.
	MenusForRestaurant(ctx context.Context, id models.RestaurantID) ([]models.Menu, error)

	// CurrentMenuForRestaurant returns the most recently imported
	// menu, ErrNotFound when the restaurant has none.
	CurrentMenuForRestaurant(ctx context.Context, id models.RestaurantID) (models.Menu, error)

	// Menu fetches one menu, ErrNotFound if absent.
	Menu(ctx context.Context, id models.MenuID) (models.Menu, error)

	// MenuItems lists all items on a menu.
	MenuItems(ctx context.Context, id models.MenuID) ([]models.MenuItem, error)

	// IngestMenu creates a new menu for the restaurant and populates
	// it from the given records in one transaction. Menus are
	// immutable once ingested.
	IngestMenu(ctx context.Context, restaurant models.RestaurantID, items []models.NewMenuItem) (models.MenuID, error)

	// OpenOrder creates a new open order on the given menu. Fails
	// with *AlreadyOpenError when an open order already exists.
	OpenOrder(ctx context.Context, menu models.MenuID) (models.Order, error)

	// CurrentOpenOrder returns the open order, or nil when there is
	// none.
	CurrentOpenOrder(ctx context.Context) (*models.Order, error)

	// DemandOpenOrder returns the open order, ErrNoOpenOrder when
	// there is none.
	DemandOpenOrder(ctx context.Context) (models.Order, error)

	// CloseOrder closes the open order. ErrNoOpenOrder when none is
	// open.
	CloseOrder(ctx context.Context) error

	// SetOverhead overwrites the order's overhead unconditionally.
	SetOverhead(ctx context.Context, order models.OrderID, cents int64) error

	// AddOrderItem appends a line entry. No dedup: ordering the same
	// item twice yields two entries.
	AddOrderItem(ctx context.Context, order models.OrderID, person string, item models.MenuItemID) error

	// ClearOrderItems deletes all of a person's entries in an order.
	ClearOrderItems(ctx context.Context, order models.OrderID, person string) error

	// ItemsInOrder returns the order's lines joined with their menu
	// items as one atomic read, sorted by person name then menu item
	// ID. Downstream grouping relies on this ordering.
	ItemsInOrder(ctx context.Context, order models.OrderID) ([]models.OrderLine, error)

	// PreviousOrders lists the distinct menu items a person ordered
	// in closed orders at the given restaurant.
	PreviousOrders(ctx context.Context, person string, restaurant models.RestaurantID) ([]models.MenuItem, error)

	// SetAssociation upserts the billing account for a name. Last
	// write wins.
	SetAssociation(ctx context.Context, name, account string) error

	// Associations lists all associations sorted by name.
	Associations(ctx context.Context) ([]models.Association, error)

	// Close releases any resources held by the store.
	Close() error
}
