package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/events"
)

// NotificationService emits customer notifications for domain events. Email
// and webhook delivery are stubbed; only structured logs are produced.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventOrderCreated, n.handleOrderCreated)
	n.dispatcher.Subscribe(events.EventOrderStatusChanged, n.handleOrderStatusChanged)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.SubjectID))
	return nil
}

func (n *NotificationService) handleOrderCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderCreated", zap.String("order_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderStatusChanged", zap.String("order_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}
