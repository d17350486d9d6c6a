package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// OrdersHandler exposes order endpoints for customers and admins.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// CreateOrder handles POST /orders.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.PlaceOrder(c.UserContext(), principal.User.ID, items)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": orderResponse(order)})
}

// ListOrders handles GET /orders. Customers see their own, admins see all.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page, perPage := pagination(c)

	orders, err := h.orders.ListOrders(c.UserContext(), principal.User, perPage, (page-1)*perPage)
	if err != nil {
		return apperrors.MapError(err)
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, orderResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetOrder handles GET /orders/:id.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	order, err := h.orders.GetOrder(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		// Ownership mismatches read the same as missing rows.
		return apperrors.NewNotFound("order", nil)
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status.
func (h *OrdersHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	order, err := h.orders.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("order", nil)
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

func orderResponse(order *domain.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return dto.OrderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Items:      items,
		TotalCents: order.TotalCents,
		CreatedAt:  order.CreatedAt,
	}
}
