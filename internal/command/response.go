package command

import (
	"fishsticks/internal/billing"
	"fishsticks/internal/models"
	"fishsticks/internal/money"
)

// Response is the closed set of structured command results.
// Presentation adapters (chat, web) render these into their own
// formats; the core never formats user-facing text beyond the
// fraction grammar.
type Response interface {
	response()
}

// PlacedOrder reports the menu items just added for the acting user.
type PlacedOrder struct {
	MenuItems []models.MenuItem
}

// OpenedOrder reports a newly opened order.
type OpenedOrder struct {
	RestaurantName string
	MenuURL        string
}

// ClosedOrder reports that the open order was closed.
type ClosedOrder struct{}

// Restaurants lists the known restaurants.
type Restaurants struct {
	Restaurants []models.Restaurant
}

// RestaurantsNoMatch reports that no restaurant matched, along with
// the available ones.
type RestaurantsNoMatch struct {
	Restaurants []models.Restaurant
}

// SearchResults carries menu items ranked for a query.
type SearchResults struct {
	Query string
	Items []models.MenuItem
}

// OrderNoMatch reports that nothing on the menu matched.
type OrderNoMatch struct {
	Search string
}

// RepeatNoMatch reports that the acting user has no repeatable
// history on the current menu.
type RepeatNoMatch struct{}

// Cleared reports that the acting user's items were removed.
type Cleared struct{}

// PersonItems is one person's items in a summary.
type PersonItems struct {
	Person string
	Items  []models.MenuItem
}

// Summary lists who ordered what in the open order.
type Summary struct {
	Orders []PersonItems
}

// Price is the per-person cost breakdown of the open order.
type Price struct {
	Overhead          money.Fraction
	OverheadPerPerson money.Fraction
	Persons           []billing.PersonTotal
}

// Overhead reports the open order's current overhead.
type Overhead struct {
	OverheadInCents int64
}

// OverheadSet reports an overhead change.
type OverheadSet struct {
	PrevOverheadInCents int64
	NewOverheadInCents  int64
}

// Associations lists all name-to-account associations.
type Associations struct {
	Associations []models.Association
}

// NewAssociation reports an association upsert.
type NewAssociation struct {
	UserName string
	Account  string
}

// Suggest ranks likely payers for the open order.
type Suggest struct {
	Candidates []billing.Candidate
}

// Sharebill reports a successful settlement post.
type Sharebill struct {
	URL string
}

// Help asks the adapter to render its usage text.
type Help struct{}

// UnknownCommand reports an unrecognized command word.
type UnknownCommand struct {
	Cmd  string
	Args string
}

func (PlacedOrder) response()        {}
func (OpenedOrder) response()        {}
func (ClosedOrder) response()        {}
func (Restaurants) response()        {}
func (RestaurantsNoMatch) response() {}
func (SearchResults) response()      {}
func (OrderNoMatch) response()       {}
func (RepeatNoMatch) response()      {}
func (Cleared) response()            {}
func (Summary) response()            {}
func (Price) response()              {}
func (Overhead) response()           {}
func (OverheadSet) response()        {}
func (Associations) response()       {}
func (NewAssociation) response()     {}
func (Suggest) response()            {}
func (Sharebill) response()          {}
func (Help) response()               {}
func (UnknownCommand) response()     {}
