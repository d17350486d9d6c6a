package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// OrderRepository defines persistence access for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]domain.Order, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const orderQuery = `
        INSERT INTO orders (user_id, status, total_cents)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, orderQuery,
		order.UserID,
		order.Status,
		order.TotalCents,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	const itemQuery = `
        INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
        VALUES ($1,$2,$3,$4)`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			order.ID,
			item.ProductID,
			item.Quantity,
			item.UnitPriceCents,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const query = `
        SELECT id, user_id, status, total_cents, created_at, updated_at
        FROM orders WHERE id=$1`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalCents,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	const query = `
        SELECT id, user_id, status, total_cents, created_at, updated_at
        FROM orders WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryOrders(ctx, query, userID, limit, offset)
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	const query = `
        SELECT id, user_id, status, total_cents, created_at, updated_at
        FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.queryOrders(ctx, query, limit, offset)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.TotalCents,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	const query = `
        SELECT product_id, quantity, unit_price_cents
        FROM order_items WHERE order_id=$1`

	rows, err := r.pool.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPriceCents); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}
