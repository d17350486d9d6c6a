package domain

import "time"

// OrderStatus tracks fulfilment progress.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a single product line within an order.
type OrderItem struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
}

// Order models a customer purchase.
type Order struct {
	ID         string
	UserID     string
	Status     OrderStatus
	Items      []OrderItem
	TotalCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
