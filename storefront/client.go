// Package storefront is the client side of the shop: a typed HTTP client,
// the persisted cart and session, and the checkout flow.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/judyrop/storefront/auth"
	"github.com/judyrop/storefront/catalog"
	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/orders"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// UserInfo is the who-am-i payload.
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// NewProduct is the admin create-product payload.
type NewProduct struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	PriceCents   int64   `json:"priceCents"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	CategorySlug string  `json:"categorySlug"`
	IsActive     bool    `json:"isActive"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token source consulted on every request.
func WithToken(token func() string) Option {
	return func(c *Client) { c.token = token }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]catalog.CategorySummary, error) {
	var out []catalog.CategorySummary
	err := c.do(ctx, http.MethodGet, "/categories", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name, slug string) (*catalog.CategorySummary, error) {
	var out catalog.CategorySummary
	body := map[string]string{"name": name, "slug": slug}
	if err := c.do(ctx, http.MethodPost, "/categories", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Products(ctx context.Context) ([]catalog.ProductView, error) {
	var out []catalog.ProductView
	err := c.do(ctx, http.MethodGet, "/products", nil, &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, id uuid.UUID) (*catalog.ProductView, error) {
	var out catalog.ProductView
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminCreateProduct returns the new product id.
func (c *Client) AdminCreateProduct(ctx context.Context, p NewProduct) (uuid.UUID, error) {
	var out struct {
		ID uuid.UUID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/products", p, &out); err != nil {
		return uuid.Nil, err
	}
	return out.ID, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*UserInfo, error) {
	var out UserInfo
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	var out auth.Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginWithIDToken(ctx context.Context, idToken string) (*auth.Session, error) {
	var out auth.Session
	if err := c.do(ctx, http.MethodPost, "/auth/oidc", map[string]string{"idToken": idToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceOrder returns the id of the created order.
func (c *Client) PlaceOrder(ctx context.Context, req orders.PlaceRequest) (uuid.UUID, error) {
	var out struct {
		OrderID uuid.UUID `json:"orderId"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", req, &out); err != nil {
		return uuid.Nil, err
	}
	return out.OrderID, nil
}

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.do(ctx, http.MethodGet, "/orders", nil, &out)
	return out, err
}

func (c *Client) Order(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
