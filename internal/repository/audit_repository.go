package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// AuditRepository persists admin action log entries.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.AuditEntry, int64, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed implementation.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (actor_id, action, entity, entity_id, detail)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// List returns a page of entries newest-first plus the total entry count for
// pagination controls.
func (r *auditRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditEntry, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT id, actor_id, action, entity, entity_id, detail, created_at
        FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.Entity,
			&entry.EntityID,
			&entry.Detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}
