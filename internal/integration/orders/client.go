// Package orders talks to the external order management backend.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cleanline/opsdesk/internal/platform/httpx"
	"github.com/cleanline/opsdesk/internal/pricing"
)

var (
	// ErrNotFound is returned when the backend does not know the order.
	ErrNotFound = fmt.Errorf("orders: %w", httpx.ErrNotFound)
	// ErrUnavailable is returned on transport failures and 5xx responses.
	ErrUnavailable = fmt.Errorf("orders: %w", httpx.ErrUnavailable)
)

// Client calls the order backend over HTTP JSON.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a backend client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// orderPayload mirrors the backend response. Numeric fields arrive as
// strings or numbers depending on the backend version.
type orderPayload struct {
	OrderID    string        `json:"OrderID"`
	CustomerID string        `json:"CustomerID"`
	Lines      []linePayload `json:"OrderLine"`
}

type linePayload struct {
	SKU             string         `json:"SKU"`
	Quantity        pricing.Number `json:"Quantity"`
	UnitPrice       pricing.Number `json:"UnitPrice"`
	CostPrice       pricing.Number `json:"CostPrice"`
	RRP             pricing.Number `json:"RRP"`
	PercentDiscount pricing.Number `json:"PercentDiscount"`
}

func (p orderPayload) toOrder(group int) pricing.Order {
	order := pricing.Order{
		ID:              p.OrderID,
		CustomerID:      p.CustomerID,
		CustomerGroupID: group,
		Lines:           make([]pricing.Input, 0, len(p.Lines)),
	}
	for _, l := range p.Lines {
		order.Lines = append(order.Lines, pricing.Input{
			SKU:             l.SKU,
			Quantity:        l.Quantity.Float(),
			UnitPrice:       l.UnitPrice.Float(),
			CostPrice:       l.CostPrice.Float(),
			RRP:             l.RRP.Float(),
			PercentDiscount: l.PercentDiscount.Float(),
		})
	}
	return order
}

// FetchOrder loads an order priced for the given customer group.
func (c *Client) FetchOrder(ctx context.Context, orderID string, customerGroupID int) (pricing.Order, error) {
	endpoint := fmt.Sprintf("%s/orders/%s?customer_group=%s",
		c.baseURL, url.PathEscape(orderID), strconv.Itoa(customerGroupID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pricing.Order{}, err
	}
	var payload orderPayload
	if err := c.do(req, &payload); err != nil {
		return pricing.Order{}, err
	}
	if payload.OrderID == "" {
		payload.OrderID = orderID
	}
	return payload.toOrder(customerGroupID), nil
}

// SavePrice stores a customer specific price for a SKU.
func (c *Client) SavePrice(ctx context.Context, update pricing.PriceUpdate) error {
	body, err := json.Marshal(map[string]any{
		"SKU":   update.SKU,
		"Price": strconv.FormatFloat(update.Price, 'f', 3, 64),
	})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/customers/%s/prices", c.baseURL, url.PathEscape(update.CustomerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// Ping checks that the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, dest any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("orders: backend rejected request with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("orders: decode response: %w", err)
	}
	return nil
}
