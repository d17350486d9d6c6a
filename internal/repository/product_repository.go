package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID string
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository defines persistence access for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, category_id, name, slug, description, price_cents, stock, image_url, active, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (category_id, name, slug, description, price_cents, stock, image_url, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.ImageURL,
		product.Active,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET category_id=$1, name=$2, slug=$3, description=$4,
            price_cents=$5, stock=$6, image_url=$7, active=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.ImageURL,
		product.Active,
		product.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug=$1`
	return scanProduct(r.pool.QueryRow(ctx, query, slug))
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += ` AND category_id=$` + itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND name ILIKE $` + itoa(len(args))
	}
	if filter.ActiveOnly {
		query += ` AND active`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.PriceCents,
		&p.Stock,
		&p.ImageURL,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
