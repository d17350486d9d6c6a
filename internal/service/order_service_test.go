package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

type fakeOrderRepo struct {
	byID   map[string]*domain.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{byID: map[string]*domain.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.nextID++
	order.ID = fmt.Sprintf("order-%d", r.nextID)
	copied := *order
	r.byID[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	order, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if order, ok := r.byID[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string, limit, _ int) ([]domain.Order, error) {
	var orders []domain.Order
	for _, order := range r.byID {
		if order.UserID == userID && len(orders) < limit {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) List(_ context.Context, limit, _ int) ([]domain.Order, error) {
	var orders []domain.Order
	for _, order := range r.byID {
		if len(orders) == limit {
			break
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

type fakeProductRepo struct {
	byID map[string]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{byID: map[string]*domain.Product{}}
	for _, p := range products {
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = fmt.Sprintf("product-%d", len(r.byID)+1)
	}
	copied := *product
	r.byID[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := r.byID[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *product
	r.byID[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if product, ok := r.byID[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, product := range r.byID {
		if product.Slug == slug {
			copied := *product
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	var products []domain.Product
	for _, product := range r.byID {
		if filter.ActiveOnly && !product.Active {
			continue
		}
		if filter.CategoryID != "" && product.CategoryID != filter.CategoryID {
			continue
		}
		products = append(products, *product)
	}
	return products, nil
}

type fakeAuditRepo struct {
	entries []domain.AuditEntry
}

func (r *fakeAuditRepo) Record(_ context.Context, entry *domain.AuditEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, limit, offset int) ([]domain.AuditEntry, int64, error) {
	if offset >= len(r.entries) {
		return nil, int64(len(r.entries)), nil
	}
	end := offset + limit
	if end > len(r.entries) {
		end = len(r.entries)
	}
	return r.entries[offset:end], int64(len(r.entries)), nil
}

func catalogFixture() (*fakeProductRepo, *domain.Product, *domain.Product) {
	desk := &domain.Product{ID: "p-desk", CategoryID: "c-1", Name: "Desk", Slug: "desk", PriceCents: 49900, Stock: 5, Active: true}
	chair := &domain.Product{ID: "p-chair", CategoryID: "c-1", Name: "Chair", Slug: "chair", PriceCents: 29900, Stock: 2, Active: true}
	return newFakeProductRepo(desk, chair), desk, chair
}

func TestPlaceOrderPricesFromCatalog(t *testing.T) {
	products, _, _ := catalogFixture()
	orders := newFakeOrderRepo()
	svc := NewOrderService(orders, products, &fakeAuditRepo{}, events.NewInMemoryDispatcher(nil))

	order, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemInput{
		{ProductID: "p-desk", Quantity: 2},
		{ProductID: "p-chair", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2*49900+29900), order.TotalCents)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(49900), order.Items[0].UnitPriceCents, "unit price captured at order time")
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	products, _, _ := catalogFixture()
	svc := NewOrderService(newFakeOrderRepo(), products, nil, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, "user-1", nil)
	assert.EqualError(t, err, "order requires at least one item")

	_, err = svc.PlaceOrder(ctx, "user-1", []OrderItemInput{{ProductID: "p-desk", Quantity: 0}})
	assert.EqualError(t, err, "quantity must be positive")

	_, err = svc.PlaceOrder(ctx, "user-1", []OrderItemInput{{ProductID: "missing", Quantity: 1}})
	assert.EqualError(t, err, "product not found: missing")

	_, err = svc.PlaceOrder(ctx, "user-1", []OrderItemInput{{ProductID: "p-chair", Quantity: 3}})
	assert.EqualError(t, err, "insufficient stock: Chair")
}

func TestPlaceOrderRejectsInactiveProduct(t *testing.T) {
	products, desk, _ := catalogFixture()
	products.byID[desk.ID].Active = false
	svc := NewOrderService(newFakeOrderRepo(), products, nil, nil)

	_, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemInput{{ProductID: "p-desk", Quantity: 1}})
	assert.EqualError(t, err, "product unavailable: Desk")
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	products, _, _ := catalogFixture()
	orders := newFakeOrderRepo()
	svc := NewOrderService(orders, products, nil, nil)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user-1", []OrderItemInput{{ProductID: "p-desk", Quantity: 1}})
	require.NoError(t, err)

	owner := &domain.User{ID: "user-1", Role: domain.RoleCustomer}
	other := &domain.User{ID: "user-2", Role: domain.RoleCustomer}
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}

	got, err := svc.GetOrder(ctx, owner, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)

	_, err = svc.GetOrder(ctx, other, placed.ID)
	assert.EqualError(t, err, "order not found")

	_, err = svc.GetOrder(ctx, admin, placed.ID)
	assert.NoError(t, err)
}

func TestListOrdersScopesByRole(t *testing.T) {
	products, _, _ := catalogFixture()
	orders := newFakeOrderRepo()
	svc := NewOrderService(orders, products, nil, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, "user-1", []OrderItemInput{{ProductID: "p-desk", Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, "user-2", []OrderItemInput{{ProductID: "p-chair", Quantity: 1}})
	require.NoError(t, err)

	own, err := svc.ListOrders(ctx, &domain.User{ID: "user-1", Role: domain.RoleCustomer}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := svc.ListOrders(ctx, &domain.User{ID: "admin-1", Role: domain.RoleSubAdmin}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatusAuditsAndPublishes(t *testing.T) {
	products, _, _ := catalogFixture()
	orders := newFakeOrderRepo()
	audit := &fakeAuditRepo{}
	dispatcher := events.NewInMemoryDispatcher(nil)
	var seen []events.Event
	dispatcher.Subscribe(events.EventOrderStatusChanged, func(_ context.Context, e events.Event) error {
		seen = append(seen, e)
		return nil
	})
	svc := NewOrderService(orders, products, audit, dispatcher)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user-1", []OrderItemInput{{ProductID: "p-desk", Quantity: 1}})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, "admin-1", placed.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "admin-1", audit.entries[0].ActorID)
	assert.Equal(t, "order.status", audit.entries[0].Action)
	assert.Contains(t, audit.entries[0].Detail, string(domain.OrderStatusShipped))

	require.Len(t, seen, 1)
	assert.Equal(t, placed.ID, seen[0].SubjectID)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(), nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "admin-1", "order-1", domain.OrderStatus("teleported"))
	assert.EqualError(t, err, "unknown order status")
}

func TestUpdateStatusUnchangedIsNoop(t *testing.T) {
	products, _, _ := catalogFixture()
	orders := newFakeOrderRepo()
	audit := &fakeAuditRepo{}
	svc := NewOrderService(orders, products, audit, nil)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user-1", []OrderItemInput{{ProductID: "p-desk", Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, "admin-1", placed.ID, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Empty(t, audit.entries, "no audit entry for an unchanged status")
}
