// Package billing turns order state into exact per-account debits and
// settles them against the sharebill ledger.
package billing

import (
	"context"
	"fmt"

	"fishsticks/internal/models"
	"fishsticks/internal/money"
	"fishsticks/internal/storage"
)

// MissingAssociationError is returned when a person in the order has
// no billing account. The whole computation fails; partial bills are
// never produced.
type MissingAssociationError struct {
	Name string
}

func (e *MissingAssociationError) Error() string {
	return fmt.Sprintf("no billing account associated with %q", e.Name)
}

// PersonGroup is one person's run of items in an order.
type PersonGroup struct {
	Person string
	Items  []models.MenuItem
}

// GroupByPerson splits order lines into consecutive runs of equal
// person names. It relies on ItemsInOrder sorting by person name.
func GroupByPerson(lines []models.OrderLine) []PersonGroup {
	var groups []PersonGroup
	for _, line := range lines {
		if n := len(groups); n == 0 || groups[n-1].Person != line.OrderItem.PersonName {
			groups = append(groups, PersonGroup{Person: line.OrderItem.PersonName})
		}
		last := &groups[len(groups)-1]
		last.Items = append(last.Items, line.MenuItem)
	}
	return groups
}

// PersonTotal is one person's share of an order including overhead.
type PersonTotal struct {
	Person string
	Items  []models.MenuItem
	Total  money.Fraction
}

// PriceSummary is the per-person cost breakdown of an order.
type PriceSummary struct {
	Overhead          money.Fraction
	OverheadPerPerson money.Fraction
	Persons           []PersonTotal
}

// Engine computes bills from order state.
type Engine struct {
	store storage.Store
}

// NewEngine creates an Engine backed by the given store.
func NewEngine(store storage.Store) *Engine {
	return &Engine{store: store}
}

// priceGroups computes each person group's total, food plus an even
// share of the overhead. An order with no items has nobody to split
// the overhead across; the division error surfaces to the caller.
func (e *Engine) priceGroups(ctx context.Context, order models.Order) ([]PersonGroup, []money.Fraction, money.Fraction, error) {
	lines, err := e.store.ItemsInOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, money.Fraction{}, err
	}
	groups := GroupByPerson(lines)

	persons := money.FromInt(int64(len(groups)))
	overheadPerPerson, err := money.FromCents(order.OverheadInCents).Div(persons)
	if err != nil {
		return nil, nil, money.Fraction{}, err
	}

	totals := make([]money.Fraction, len(groups))
	for i, group := range groups {
		food := money.Zero()
		for _, item := range group.Items {
			food = food.Add(money.FromCents(item.PriceInCents))
		}
		totals[i] = food.Add(overheadPerPerson)
	}
	return groups, totals, overheadPerPerson, nil
}

// GenerateBill computes the exact amount each billing account owes
// for the order. Two persons billing to the same account are summed
// into one entry. The sum of all debits equals the sum of all item
// prices plus the overhead, exactly.
func (e *Engine) GenerateBill(ctx context.Context, order models.Order) (map[string]money.Fraction, error) {
	groups, totals, _, err := e.priceGroups(ctx, order)
	if err != nil {
		return nil, err
	}

	associations, err := e.store.Associations(ctx)
	if err != nil {
		return nil, err
	}
	accountFor := make(map[string]string, len(associations))
	for _, a := range associations {
		accountFor[a.Name] = a.Account
	}

	debits := make(map[string]money.Fraction, len(groups))
	for i, group := range groups {
		account, ok := accountFor[group.Person]
		if !ok {
			return nil, &MissingAssociationError{Name: group.Person}
		}
		debits[account] = debits[account].Add(totals[i])
	}
	return debits, nil
}

// PriceSummary computes the per-person breakdown shown by the price
// command.
func (e *Engine) PriceSummary(ctx context.Context, order models.Order) (PriceSummary, error) {
	groups, totals, overheadPerPerson, err := e.priceGroups(ctx, order)
	if err != nil {
		return PriceSummary{}, err
	}

	summary := PriceSummary{
		Overhead:          money.FromCents(order.OverheadInCents),
		OverheadPerPerson: overheadPerPerson,
	}
	for i, group := range groups {
		summary.Persons = append(summary.Persons, PersonTotal{
			Person: group.Person,
			Items:  group.Items,
			Total:  totals[i],
		})
	}
	return summary, nil
}
