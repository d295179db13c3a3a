// Package orderapi talks to the storefront's order service.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
)

const (
	defaultTimeout     = 10 * time.Second
	errorBodyReadLimit = 4096
	createOrderPath    = "orders/create"
	listOrdersPath     = "user/orders"
)

var errBaseURLRequired = errors.New("order api base url is required")

// Client is a thin JSON client for the order service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client. It has no
// effect when WithHTTPClient supplies a client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient builds a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL: trimmed,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.timeout}
	}
	return client, nil
}

// CreateOrder submits an order. Exactly one request is issued.
func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*Order, error) {
	resp, err := c.do(ctx, http.MethodPost, createOrderPath, token, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Order   *Order `json:"order"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode create order response: %w", err)}
		}
		if !body.Success || body.Order == nil {
			return nil, &RequestError{StatusCode: resp.StatusCode, Message: body.Message}
		}
		return body.Order, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		raw := readLimited(resp.Body)
		if conflict := parseStockConflict(raw); conflict != nil {
			return nil, conflict
		}
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: messageFrom(raw)}
	default:
		return nil, statusError(resp)
	}
}

// ListOrders returns the orders of the authenticated user.
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	resp, err := c.do(ctx, http.MethodGet, listOrdersPath, token, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var body struct {
		Data []Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode orders response: %w", err)}
	}
	if body.Data == nil {
		body.Data = []Order{}
	}
	return body.Data, nil
}

// CancelOrder marks an order as cancelled.
func (c *Client) CancelOrder(ctx context.Context, token string, orderID int64) error {
	path := "orders/" + strconv.FormatInt(orderID, 10)
	resp, err := c.do(ctx, http.MethodPut, path, token, map[string]enums.OrderStatus{"status": enums.OrderStatusCancelled})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) (*http.Response, error) {
	if c == nil {
		return nil, &RequestError{Err: errors.New("order api client not configured")}
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &RequestError{Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token = strings.TrimSpace(token); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	return resp, nil
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}

func statusError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
		return ErrUnauthorized
	}
	return &RequestError{StatusCode: resp.StatusCode, Message: messageFrom(readLimited(resp.Body))}
}

func readLimited(r io.Reader) []byte {
	raw, _ := io.ReadAll(io.LimitReader(r, errorBodyReadLimit))
	return raw
}

func messageFrom(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func parseStockConflict(raw []byte) *StockConflictError {
	var body struct {
		Message        string `json:"message"`
		ProductID      *int64 `json:"product_id"`
		ProductName    string `json:"product_name"`
		AvailableStock *int   `json:"available_stock"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	if body.ProductID == nil || body.AvailableStock == nil {
		return nil
	}
	available := *body.AvailableStock
	if available < 0 {
		available = 0
	}
	return &StockConflictError{
		ProductID:      *body.ProductID,
		ProductName:    body.ProductName,
		AvailableStock: available,
		Message:        body.Message,
	}
}
