package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/pkg/credential"
)

// User is the backend's public view of an account.
type User struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      credential.Role `json:"role"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Product is a storefront catalog item.
type Product struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
	Active      bool   `json:"active"`
}

// Category groups products.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// OrderItem is a priced order line.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Order is a customer purchase.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"items"`
	TotalCents int64       `json:"total_cents"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AuditEntry is one row of the admin action log.
type AuditEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditPage is a page of the admin action log.
type AuditPage struct {
	Items   []AuditEntry `json:"items"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	Total   int64        `json:"total"`
}

type authEnvelope struct {
	Data struct {
		User User `json:"user"`
		Auth struct {
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"auth"`
	} `json:"data"`
}

// Authenticate exchanges login credentials for a bearer credential. It
// satisfies the session store's Authenticator dependency.
func (c *Client) Authenticate(ctx context.Context, identifier, secret string) (string, error) {
	var resp authEnvelope
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    identifier,
		"password": secret,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Data.Auth.Token, nil
}

// Register creates an account and returns the issued credential.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, string, error) {
	var resp authEnvelope
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, "", err
	}
	return &resp.Data.User, resp.Data.Auth.Token, nil
}

// Logout asks the backend to revoke the presented credential.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Profile fetches an account by id, including its authoritative role.
func (c *Client) Profile(ctx context.Context, id string) (*User, error) {
	var resp struct {
		Data User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ProductQuery narrows storefront product listings.
type ProductQuery struct {
	CategoryID string
	Search     string
	Page       int
	PerPage    int
}

// Products lists catalog products.
func (c *Client) Products(ctx context.Context, q ProductQuery) ([]Product, error) {
	query := url.Values{}
	if q.CategoryID != "" {
		query.Set("category_id", q.CategoryID)
	}
	if q.Search != "" {
		query.Set("q", q.Search)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}

	var resp struct {
		Data []Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/products", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ProductsOrPlaceholder lists products, degrading to placeholder content on
// transport failure so the storefront never renders an empty page during a
// backend outage.
func (c *Client) ProductsOrPlaceholder(ctx context.Context, q ProductQuery) []Product {
	products, err := c.Products(ctx, q)
	if err != nil {
		c.logger.Warn("product fetch failed, using placeholders", zap.Error(err))
		return placeholderProducts()
	}
	return products
}

// Categories lists all catalog categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Data []Category `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// OrderItemInput is a requested order line.
type OrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrder submits a new order for the signed-in customer.
func (c *Client) PlaceOrder(ctx context.Context, items []OrderItemInput) (*Order, error) {
	var resp struct {
		Data Order `json:"data"`
	}
	body := map[string]any{"items": items}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Orders lists the caller's orders (all orders for admins).
func (c *Client) Orders(ctx context.Context, page, perPage int) ([]Order, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	var resp struct {
		Data []Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UpdateOrderStatus moves an order to a new fulfilment status. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	var resp struct {
		Data Order `json:"data"`
	}
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, "/admin/orders/"+url.PathEscape(id)+"/status", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// AuditLog fetches a page of the admin action log.
func (c *Client) AuditLog(ctx context.Context, page, perPage int) (*AuditPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	var resp struct {
		Data AuditPage `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/audit", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// placeholderProducts is canned storefront content shown when the catalog is
// unreachable.
func placeholderProducts() []Product {
	return []Product{
		{ID: "placeholder-desk", Name: "Height-Adjustable Desk", Slug: "height-adjustable-desk", Description: "120x80cm sit-stand desk", PriceCents: 49900, Active: true},
		{ID: "placeholder-chair", Name: "Ergonomic Task Chair", Slug: "ergonomic-task-chair", Description: "Mesh back, lumbar support", PriceCents: 29900, Active: true},
		{ID: "placeholder-cabinet", Name: "Mobile File Cabinet", Slug: "mobile-file-cabinet", Description: "Three-drawer, lockable", PriceCents: 15900, Active: true},
	}
}
