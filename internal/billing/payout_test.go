package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fishsticks/internal/ledger"
	"fishsticks/internal/money"
	"fishsticks/internal/storage"
)

// suggestFixture sets up the order from the billing tests: alice owes
// 5 1/2, bob owes 2 1/2.
func suggestFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.add(t, "alice", "Burger")
	f.add(t, "bob", "Fries")
	f.setOverhead(t, 100)
	f.associate(t, "alice", "acct-a")
	f.associate(t, "bob", "acct-b")
	return f
}

func TestSuggest(t *testing.T) {
	f := suggestFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rows":[
			{"key":"acct-a","value":"10"},
			{"key":"acct-b","value":"3"},
			{"key":"acct-c","value":"7"}
		]}`))
	}))
	defer server.Close()

	payout := NewPayout(f.store, ledger.New(server.URL, nil))
	candidates, err := payout.Suggest(context.Background(), f.order)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	// acct-c has no debit and is excluded; acct-b ends up poorest.
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(candidates), candidates)
	}
	if candidates[0].Account != "acct-b" || !candidates[0].Projected.Equal(money.FromCents(50)) {
		t.Errorf("unexpected first candidate: %+v", candidates[0])
	}
	if candidates[1].Account != "acct-a" || !candidates[1].Projected.Equal(money.FromCents(450)) {
		t.Errorf("unexpected second candidate: %+v", candidates[1])
	}
	if !candidates[0].Balance.Equal(money.FromInt(3)) {
		t.Errorf("old balance for acct-b = %v, want 3", candidates[0].Balance)
	}
}

func TestSettle(t *testing.T) {
	f := suggestFixture(t)
	ctx := context.Background()

	var gotPost ledger.Post
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPost); err != nil {
			t.Errorf("failed to decode post: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	payout := NewPayout(f.store, ledger.New(server.URL, nil))
	url, err := payout.Settle(ctx, f.order, "", "alice")
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/post/") {
		t.Errorf("post path = %q", gotPath)
	}
	if url != server.URL+gotPath {
		t.Errorf("returned url %q does not match posted path %q", url, gotPath)
	}

	if gotPost.Meta.Description != "Burger Joint" {
		t.Errorf("description = %q, want restaurant name", gotPost.Meta.Description)
	}

	// Balanced transaction: credits equal total debits, credited to
	// the acting user's own account.
	if !gotPost.Transaction.Credits["acct-a"].Equal(money.FromCents(800)) {
		t.Errorf("credits = %+v, want acct-a: 8", gotPost.Transaction.Credits)
	}
	debitSum := money.Zero()
	for _, debit := range gotPost.Transaction.Debits {
		debitSum = debitSum.Add(debit)
	}
	if !debitSum.Equal(money.FromCents(800)) {
		t.Errorf("debit sum = %v, want 8", debitSum)
	}

	// Confirmed success closes the order.
	if _, err := f.store.DemandOpenOrder(ctx); !errors.Is(err, storage.ErrNoOpenOrder) {
		t.Errorf("order should be closed after settle, got %v", err)
	}
}

func TestSettleExplicitCreditAccount(t *testing.T) {
	f := suggestFixture(t)

	var gotPost ledger.Post
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPost)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	payout := NewPayout(f.store, ledger.New(server.URL, nil))
	if _, err := payout.Settle(context.Background(), f.order, "acct-x", "alice"); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if _, ok := gotPost.Transaction.Credits["acct-x"]; !ok {
		t.Errorf("explicit credit account ignored: %+v", gotPost.Transaction.Credits)
	}
}

func TestSettleFailureLeavesOrderOpen(t *testing.T) {
	f := suggestFixture(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	payout := NewPayout(f.store, ledger.New(server.URL, nil))
	_, err := payout.Settle(ctx, f.order, "", "alice")

	var statusErr *ledger.UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *UnexpectedStatusError", err)
	}

	// The order must stay open so the settle can be retried.
	order, err := f.store.DemandOpenOrder(ctx)
	if err != nil {
		t.Fatalf("order should still be open: %v", err)
	}
	if order.ID != f.order.ID {
		t.Errorf("open order = %d, want %d", order.ID, f.order.ID)
	}
}

func TestSettleMissingOwnAssociation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.add(t, "alice", "Burger")
	f.associate(t, "alice", "acct-a")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("nothing should be posted when the credit account cannot be resolved")
	}))
	defer server.Close()

	// mallory triggers the settle but has no association and gives no
	// explicit account.
	payout := NewPayout(f.store, ledger.New(server.URL, nil))
	_, err := payout.Settle(ctx, f.order, "", "mallory")

	var missing *MissingAssociationError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingAssociationError", err)
	}
	if missing.Name != "mallory" {
		t.Errorf("missing name = %q, want mallory", missing.Name)
	}
}
