package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// OrderService coordinates order placement and fulfilment updates.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
}

// NewOrderService builds the service.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, audit repository.AuditRepository, dispatcher events.Dispatcher) *OrderService {
	return &OrderService{
		orders:     orders,
		products:   products,
		audit:      audit,
		dispatcher: dispatcher,
	}
}

// OrderItemInput is a requested product line.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrder prices the requested items from the current catalog and persists
// the order. Unit prices are captured at order time so later catalog edits do
// not rewrite order history.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, items []OrderItemInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order requires at least one item")
	}

	order := &domain.Order{
		UserID: userID,
		Status: domain.OrderStatusPending,
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.New("quantity must be positive")
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, errors.New("product not found: " + item.ProductID)
		}
		if !product.Active {
			return nil, errors.New("product unavailable: " + product.Name)
		}
		if product.Stock < item.Quantity {
			return nil, errors.New("insufficient stock: " + product.Name)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      product.ID,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
		})
		order.TotalCents += product.PriceCents * int64(item.Quantity)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventOrderCreated, order.ID, events.OrderCreatedPayload{
		UserID:     userID,
		TotalCents: order.TotalCents,
		ItemCount:  len(order.Items),
	})
	return order, nil
}

// GetOrder fetches an order; non-admin callers may only read their own.
func (s *OrderService) GetOrder(ctx context.Context, caller *domain.User, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Role.IsAdmin() && order.UserID != caller.ID {
		return nil, errors.New("order not found")
	}
	return order, nil
}

// ListOrders returns the caller's orders, or all orders for admins.
func (s *OrderService) ListOrders(ctx context.Context, caller *domain.User, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if caller.Role.IsAdmin() {
		return s.orders.List(ctx, limit, offset)
	}
	return s.orders.ListByUser(ctx, caller.ID, limit, offset)
}

// UpdateStatus moves an order to a new fulfilment status.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, errors.New("unknown order status")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := order.Status
	if oldStatus == status {
		return order, nil
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status

	if s.audit != nil && actorID != "" {
		_ = s.audit.Record(ctx, &domain.AuditEntry{
			ActorID:  actorID,
			Action:   "order.status",
			Entity:   "order",
			EntityID: id,
			Detail:   string(oldStatus) + " -> " + string(status),
		})
	}
	s.publish(ctx, events.EventOrderStatusChanged, id, events.OrderStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
	})
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
