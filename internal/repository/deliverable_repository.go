package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Deliverable struct {
	ID        string
	ProjectID string
	CreatorID string
	FileRef   string
	Message   *string
	CreatedAt time.Time
}

type DeliverableRepository interface {
	Create(ctx context.Context, d *Deliverable) error
	FindByProjectID(ctx context.Context, projectID string) ([]*Deliverable, error)
	CountByProjectID(ctx context.Context, projectID string) (int, error)
}

type pgDeliverableRepository struct {
	pool *pgxpool.Pool
}

func NewDeliverableRepository(pool *pgxpool.Pool) DeliverableRepository {
	return &pgDeliverableRepository{pool: pool}
}

func (r *pgDeliverableRepository) Create(ctx context.Context, d *Deliverable) error {
	query := `
		INSERT INTO deliverables (project_id, creator_id, file_ref, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		d.ProjectID, d.CreatorID, d.FileRef, d.Message,
	).Scan(&d.ID, &d.CreatedAt)
}

func (r *pgDeliverableRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Deliverable, error) {
	query := `
		SELECT id, project_id, creator_id, file_ref, message, created_at
		FROM deliverables WHERE project_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliverables []*Deliverable
	for rows.Next() {
		d := &Deliverable{}
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.CreatorID, &d.FileRef, &d.Message, &d.CreatedAt); err != nil {
			return nil, err
		}
		deliverables = append(deliverables, d)
	}
	return deliverables, rows.Err()
}

func (r *pgDeliverableRepository) CountByProjectID(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM deliverables WHERE project_id = $1`, projectID,
	).Scan(&count)
	return count, err
}
