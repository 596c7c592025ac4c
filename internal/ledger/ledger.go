// Package ledger is a client for the sharebill ledger service.
// Transactions are posted as exact fraction strings; no floating
// point crosses this boundary.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fishsticks/internal/metrics"
	"fishsticks/internal/money"
)

// UnexpectedStatusError reports a response status the ledger contract
// does not allow.
type UnexpectedStatusError struct {
	Status int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("ledger: unexpected status %d", e.Status)
}

// Meta describes a posted transaction.
type Meta struct {
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"` // RFC3339
}

// Transaction is a balanced set of debits and credits. The wire
// format spells debits "debets".
type Transaction struct {
	Debits  map[string]money.Fraction `json:"debets"`
	Credits map[string]money.Fraction `json:"credits"`
}

// Post is the body of a PUT /post/{id} request.
type Post struct {
	Meta        Meta        `json:"meta"`
	Transaction Transaction `json:"transaction"`
}

// BalanceRow is one account balance from GET /balances.
type BalanceRow struct {
	Key   string         `json:"key"`
	Value money.Fraction `json:"value"`
}

type balancesResponse struct {
	Rows []BalanceRow `json:"rows"`
}

// Client talks to a sharebill instance.
type Client struct {
	baseURL    string
	cookies    []string
	httpClient *http.Client
}

// New creates a Client for the sharebill instance at baseURL. The
// cookies, if any, are sent with every request.
func New(baseURL string, cookies []string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cookies:    cookies,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(c.cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(c.cookies, ", "))
	}
	return req, nil
}

// Post PUTs a transaction under a fresh idempotency key and returns
// the posted URL. Anything but 201 Created is an error; the caller
// must not assume the post happened on failure, but also must not
// assume it did not (a lost response after a server-side commit is a
// known reconciliation gap).
func (c *Client) Post(ctx context.Context, id uuid.UUID, post Post) (string, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return "", fmt.Errorf("ledger: failed to encode post: %w", err)
	}

	url := fmt.Sprintf("%s/post/%s", c.baseURL, id)
	req, err := c.newRequest(ctx, http.MethodPut, url, body)
	if err != nil {
		return "", fmt.Errorf("ledger: failed to build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.LedgerRequests.WithLabelValues("post", "transport_error").Inc()
		return "", fmt.Errorf("ledger: post failed: %w", err)
	}
	defer res.Body.Close()
	metrics.LedgerRequests.WithLabelValues("post", strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode != http.StatusCreated {
		return "", &UnexpectedStatusError{Status: res.StatusCode}
	}
	return url, nil
}

// Balances fetches the current balance of every account.
func (c *Client) Balances(ctx context.Context) ([]BalanceRow, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/balances", nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.LedgerRequests.WithLabelValues("balances", "transport_error").Inc()
		return nil, fmt.Errorf("ledger: balances request failed: %w", err)
	}
	defer res.Body.Close()
	metrics.LedgerRequests.WithLabelValues("balances", strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode != http.StatusOK {
		return nil, &UnexpectedStatusError{Status: res.StatusCode}
	}

	var decoded balancesResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("ledger: failed to decode balances: %w", err)
	}
	return decoded.Rows, nil
}
