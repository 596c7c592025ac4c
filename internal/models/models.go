// Package models defines the core domain models for fishsticks.
//
// Entities are identified by distinct integer ID types so a MenuID can
// never be passed where an OrderID is expected. Monetary values are
// stored as integer cents; all arithmetic on them happens in the money
// package, never in floating point.
package models

// RestaurantID identifies a restaurant.
type RestaurantID int64

// MenuID identifies a menu. A restaurant accumulates menus over time;
// the one with the latest import timestamp is the current one.
type MenuID int64

// MenuItemID identifies an item on a specific menu.
type MenuItemID int64

// OrderID identifies an order.
type OrderID int64

// OrderItemID identifies a single line entry in an order.
type OrderItemID int64

// Restaurant is a place food can be ordered from.
// Names are unique by convention, not enforced at this layer.
type Restaurant struct {
	ID   RestaurantID
	Name string
}

// Menu is one imported snapshot of a restaurant's offering.
type Menu struct {
	ID         MenuID
	Restaurant RestaurantID

	// Imported is the Unix timestamp of ingestion. The most recently
	// imported menu is the restaurant's current menu.
	Imported int64
}

// MenuItem is a single orderable entry on a menu.
type MenuItem struct {
	ID   MenuItemID
	Menu MenuID

	// Number is the human-facing item number printed on the menu.
	// It is unique within a menu by convention, not globally.
	Number int

	Name         string
	PriceInCents int64
}

// Order tracks one group ordering session. At most one order with
// Closed == nil exists in the whole system at any time.
type Order struct {
	ID   OrderID
	Menu MenuID

	// OverheadInCents is the shared cost (delivery, tip) split evenly
	// across the distinct persons in the order.
	OverheadInCents int64

	// Opened and Closed are Unix timestamps. Closed is nil while the
	// order is still accepting items.
	Opened int64
	Closed *int64
}

// OrderItem is one line entry in an order: a person ordering a menu
// item. The same person may order the same item twice, yielding two
// entries. PersonName is free text, not a reference to a user table.
type OrderItem struct {
	ID         OrderItemID
	Order      OrderID
	PersonName string
	MenuItem   MenuItemID
}

// OrderLine pairs an order item with the menu item it references.
type OrderLine struct {
	MenuItem  MenuItem
	OrderItem OrderItem
}

// Association maps a chat identity to the billing account that pays
// for that identity's food. At most one account per name; writes
// overwrite.
type Association struct {
	Name    string
	Account string
}

// NewMenuItem is one record of a menu being ingested.
type NewMenuItem struct {
	Number       int
	Name         string
	PriceInCents int64
}
