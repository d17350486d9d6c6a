package events

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventProductCreated     EventType = "product_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	UserID     string `json:"user_id"`
	TotalCents int64  `json:"total_cents"`
	ItemCount  int    `json:"item_count"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
