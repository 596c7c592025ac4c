// Package menuquery resolves free-text or numeric user input to menu
// items. Numeric input matches the human-facing item number exactly;
// anything else is ranked by Jaro-Winkler similarity against item
// names.
package menuquery

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xrash/smetrics"

	"fishsticks/internal/models"
	"fishsticks/internal/storage"
)

// Query is the interpreted form of a user's menu lookup.
type Query interface {
	query()
}

// ExactInteger matches menu items by their printed number.
type ExactInteger int

func (ExactInteger) query() {}

// FuzzyString ranks menu items by name similarity.
type FuzzyString string

func (FuzzyString) query() {}

// Interpret classifies input: an integer becomes an ExactInteger
// query, everything else a FuzzyString query.
func Interpret(input string) Query {
	if n, err := strconv.Atoi(input); err == nil {
		return ExactInteger(n)
	}
	return FuzzyString(input)
}

// Matcher looks up menu items for queries.
type Matcher struct {
	store storage.Store
}

// New creates a Matcher backed by the given store.
func New(store storage.Store) *Matcher {
	return &Matcher{store: store}
}

// Resolve returns the menu's items matching the query. Exact queries
// return every item with that number (normally 0 or 1, but duplicates
// are not forbidden by the schema). Fuzzy queries return the whole
// menu ranked best match first, ties keeping their original order.
func (m *Matcher) Resolve(ctx context.Context, menu models.MenuID, q Query) ([]models.MenuItem, error) {
	items, err := m.store.MenuItems(ctx, menu)
	if err != nil {
		return nil, err
	}

	switch q := q.(type) {
	case ExactInteger:
		var matches []models.MenuItem
		for _, item := range items {
			if item.Number == int(q) {
				matches = append(matches, item)
			}
		}
		return matches, nil
	case FuzzyString:
		type ranked struct {
			item models.MenuItem
			dist int
		}
		rankings := make([]ranked, len(items))
		for i, item := range items {
			rankings[i] = ranked{item: item, dist: distance(string(q), item.Name)}
		}
		sort.SliceStable(rankings, func(i, j int) bool {
			return rankings[i].dist < rankings[j].dist
		})
		sorted := make([]models.MenuItem, len(rankings))
		for i, r := range rankings {
			sorted[i] = r.item
		}
		return sorted, nil
	default:
		return nil, nil
	}
}

// distance maps Jaro-Winkler similarity onto an integer scale where 0
// is a perfect match and 1000 no similarity at all.
func distance(a, b string) int {
	similarity := smetrics.JaroWinkler(strings.ToLower(a), strings.ToLower(b), 0.7, 4)
	return int(math.Round((1 - similarity) * 1000))
}
