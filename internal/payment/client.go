// Package payment talks to the hosted payment collaborator over HTTP.
//
// The collaborator's protocol is deliberately minimal from this side: it
// turns a list of line items into a redirect target, and later answers
// whether a session completed payment.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/valmere/storefront/internal/checkout"
)

var _ checkout.Provider = (*Client)(nil)

// Client implements checkout.Provider against a hosted payment HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client for the given API base URL and secret key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type createSessionRequest struct {
	LineItems  []checkout.LineItem `json:"line_items"`
	SuccessURL string              `json:"success_url"`
	CancelURL  string              `json:"cancel_url"`
}

type sessionResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// CreateSession asks the provider for a new hosted checkout session.
func (c *Client) CreateSession(ctx context.Context, items []checkout.LineItem, successURL, cancelURL string) (*checkout.Session, error) {
	body, err := json.Marshal(createSessionRequest{
		LineItems:  items,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal session request")
	}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", body, &resp); err != nil {
		return nil, err
	}
	return &checkout.Session{ID: resp.ID, RedirectURL: resp.URL}, nil
}

// ConfirmSession fetches the session and reports whether it is paid.
func (c *Client) ConfirmSession(ctx context.Context, sessionID string) (bool, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil, &resp); err != nil {
		return false, err
	}
	return resp.Status == "complete" || resp.Status == "paid", nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "call payment provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("payment provider status %d: %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode provider response")
	}
	return nil
}
