package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// OrderItemRequest is a requested product line.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest payload for order placement.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// UpdateOrderStatusRequest moves an order to a new status.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// OrderItemResponse is a priced order line.
type OrderItemResponse struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Status     domain.OrderStatus  `json:"status"`
	Items      []OrderItemResponse `json:"items"`
	TotalCents int64               `json:"total_cents"`
	CreatedAt  time.Time           `json:"created_at"`
}

// AuditEntryResponse is one row of the admin action log.
type AuditEntryResponse struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// PageResponse wraps a paginated collection.
type PageResponse[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}
