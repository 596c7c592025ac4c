package billing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"fishsticks/internal/ledger"
	"fishsticks/internal/models"
	"fishsticks/internal/money"
	"fishsticks/internal/storage"
)

// Candidate is one suggested payer: their ledger balance before the
// order and what it would drop to if they paid nothing and were
// debited their share.
type Candidate struct {
	Account   string
	Balance   money.Fraction
	Projected money.Fraction
}

// Payout settles bills against the sharebill ledger and suggests who
// should pay.
type Payout struct {
	engine *Engine
	store  storage.Store
	client *ledger.Client
}

// NewPayout creates a Payout for the given store and ledger client.
func NewPayout(store storage.Store, client *ledger.Client) *Payout {
	return &Payout{
		engine: NewEngine(store),
		store:  store,
		client: client,
	}
}

// Suggest ranks the accounts participating in the order by how poor
// they would be after this meal, poorest first, and returns at most
// three. Accounts with a ledger balance but no debit are left out.
func (p *Payout) Suggest(ctx context.Context, order models.Order) ([]Candidate, error) {
	debits, err := p.engine.GenerateBill(ctx, order)
	if err != nil {
		return nil, err
	}

	rows, err := p.client.Balances(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, row := range rows {
		debit, ok := debits[row.Key]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Account:   row.Key,
			Balance:   row.Value,
			Projected: row.Value.Sub(debit),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Projected.Cmp(candidates[j].Projected) < 0
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates, nil
}

// Settle posts the order's bill to the ledger as a balanced
// transaction crediting creditAccount, then closes the order. When
// creditAccount is empty the acting user's own association is used.
//
// The order is closed only after the ledger confirms the post, so any
// failure leaves it open for a retried settle. A response lost after
// a server-side commit cannot be told apart from a failed post; that
// reconciliation is manual.
func (p *Payout) Settle(ctx context.Context, order models.Order, creditAccount, actingUser string) (string, error) {
	debits, err := p.engine.GenerateBill(ctx, order)
	if err != nil {
		return "", err
	}

	if creditAccount == "" {
		creditAccount, err = p.accountFor(ctx, actingUser)
		if err != nil {
			return "", err
		}
	}

	total := money.Zero()
	for _, debit := range debits {
		total = total.Add(debit)
	}

	description, err := p.describeOrder(ctx, order)
	if err != nil {
		return "", err
	}

	post := ledger.Post{
		Meta: ledger.Meta{
			Description: description,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		},
		Transaction: ledger.Transaction{
			Debits:  debits,
			Credits: map[string]money.Fraction{creditAccount: total},
		},
	}

	url, err := p.client.Post(ctx, uuid.New(), post)
	if err != nil {
		return "", err
	}

	if err := p.store.CloseOrder(ctx); err != nil {
		// The post went through but the order is still open; a
		// retried settle would double-bill.
		slog.Error("Posted to ledger but failed to close order",
			"order_id", int64(order.ID), "post_url", url, "error", err)
		return "", err
	}

	slog.Info("Settled order", "order_id", int64(order.ID), "total", total.String(), "url", url)
	return url, nil
}

// accountFor resolves a person to their billing account.
func (p *Payout) accountFor(ctx context.Context, person string) (string, error) {
	associations, err := p.store.Associations(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range associations {
		if a.Name == person {
			return a.Account, nil
		}
	}
	return "", &MissingAssociationError{Name: person}
}

// describeOrder names the transaction after the restaurant.
func (p *Payout) describeOrder(ctx context.Context, order models.Order) (string, error) {
	menu, err := p.store.Menu(ctx, order.Menu)
	if err != nil {
		return "", err
	}
	restaurant, err := p.store.Restaurant(ctx, menu.Restaurant)
	if err != nil {
		return "", err
	}
	return restaurant.Name, nil
}
