package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"fishsticks/internal/money"
)

func TestPost(t *testing.T) {
	id := uuid.New()

	var gotPath string
	var gotBody Post
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	post := Post{
		Meta: Meta{Description: "Burger Joint", Timestamp: "2026-08-31T12:00:00Z"},
		Transaction: Transaction{
			Debits:  map[string]money.Fraction{"acct-a": money.FromCents(550)},
			Credits: map[string]money.Fraction{"acct-b": money.FromCents(550)},
		},
	}

	url, err := client.Post(context.Background(), id, post)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if want := "/post/" + id.String(); gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if url != server.URL+"/post/"+id.String() {
		t.Errorf("unexpected post url %q", url)
	}
	if !gotBody.Transaction.Debits["acct-a"].Equal(money.FromCents(550)) {
		t.Errorf("debits did not survive the wire: %+v", gotBody.Transaction.Debits)
	}
}

func TestPostUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // contract demands 201
	}))
	defer server.Close()

	client := New(server.URL, nil)
	_, err := client.Post(context.Background(), uuid.New(), Post{})

	var statusErr *UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *UnexpectedStatusError", err)
	}
	if statusErr.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", statusErr.Status)
	}
}

func TestBalances(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/balances" {
			t.Errorf("path = %q, want /balances", r.URL.Path)
		}
		if cookie := r.Header.Get("Cookie"); cookie != "session=abc" {
			t.Errorf("cookie = %q, want session=abc", cookie)
		}
		w.Write([]byte(`{"rows":[{"key":"acct-a","value":"10"},{"key":"acct-b","value":"1/2"}]}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", []string{"session=abc"})
	rows, err := client.Balances(context.Background())
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Key != "acct-a" || !rows[0].Value.Equal(money.FromInt(10)) {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	half, _ := money.Parse("1/2")
	if !rows[1].Value.Equal(half) {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}

func TestBalancesTransportError(t *testing.T) {
	client := New("http://127.0.0.1:1", nil) // nothing listens here
	_, err := client.Balances(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	var statusErr *UnexpectedStatusError
	if errors.As(err, &statusErr) {
		t.Errorf("transport failure must not masquerade as a status error: %v", err)
	}
}
