// Package client is the HTTP client for the order service, consumed by
// the checkout workflow and the order-listing views.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/minishop/internal/domain/order"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the order service. Message carries
// the body's "message" field verbatim when the service sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order API: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("order API returned status %d", e.StatusCode)
}

// UserMessage is the text safe to show to the end user.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Order failed with status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the order service at baseURL. A nil
// httpClient gets a default with a request timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// PlaceOrder submits a new order. A 2xx response yields the created
// order as the service recorded it.
func (c *Client) PlaceOrder(ctx context.Context, o order.Order) (order.Order, error) {
	var created order.Order
	err := c.do(ctx, http.MethodPost, "/api/orders", o, &created)
	return created, err
}

func (c *Client) Orders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders)
	return orders, err
}

func (c *Client) Order(ctx context.Context, id string) (order.Order, error) {
	var o order.Order
	err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &o)
	return o, err
}

func (c *Client) OrdersByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	var orders []order.Order
	err := c.do(ctx, http.MethodGet, "/api/orders/status/"+url.PathEscape(string(status)), nil, &orders)
	return orders, err
}

func (c *Client) OrdersByCustomer(ctx context.Context, email string) ([]order.Order, error) {
	var orders []order.Order
	path := "/api/orders/customer?email=" + url.QueryEscape(email)
	err := c.do(ctx, http.MethodGet, path, nil, &orders)
	return orders, err
}

func (c *Client) OrdersByDateRange(ctx context.Context, start, end time.Time) ([]order.Order, error) {
	var orders []order.Order
	q := url.Values{}
	q.Set("startDate", start.Format(time.RFC3339))
	q.Set("endDate", end.Format(time.RFC3339))
	err := c.do(ctx, http.MethodGet, "/api/orders/date-range?"+q.Encode(), nil, &orders)
	return orders, err
}

// UpdateStatus moves an order to a new lifecycle status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	var o order.Order
	body := map[string]string{"status": string(status)}
	err := c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(id)+"/status", body, &o)
	return o, err
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, nil)
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses become *APIError; transport failures are wrapped so
// they never reach callers raw.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("order API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
