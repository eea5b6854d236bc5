package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Project struct {
	ID              string
	ClientID        string
	Title           string
	Category        string
	Description     *string
	Status          string
	BudgetMin       int64
	BudgetMax       int64
	Deadline        *time.Time
	DeliveryFormats []string
	MaxRevisions    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ProjectFilter struct {
	Status   string
	Category string
	ClientID string
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindAll(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	// TransitionStatus atomically moves a project from one status to
	// another. Returns false when the project was not in the expected
	// status, meaning the caller lost the race or the transition is illegal.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
}

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (client_id, title, category, description, status, budget_min, budget_max, deadline, delivery_formats, max_revisions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.ClientID, project.Title, project.Category, project.Description,
		project.Status, project.BudgetMin, project.BudgetMax, project.Deadline,
		project.DeliveryFormats, project.MaxRevisions,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `
		SELECT id, client_id, title, category, description, status, budget_min, budget_max, deadline, delivery_formats, max_revisions, created_at, updated_at
		FROM projects WHERE id = $1
	`
	p := &Project{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ClientID, &p.Title, &p.Category, &p.Description, &p.Status,
		&p.BudgetMin, &p.BudgetMax, &p.Deadline, &p.DeliveryFormats,
		&p.MaxRevisions, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) FindAll(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	query := `
		SELECT id, client_id, title, category, description, status, budget_min, budget_max, deadline, delivery_formats, max_revisions, created_at, updated_at
		FROM projects
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR client_id::text = $3)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, filter.Status, filter.Category, filter.ClientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(
			&p.ID, &p.ClientID, &p.Title, &p.Category, &p.Description, &p.Status,
			&p.BudgetMin, &p.BudgetMax, &p.Deadline, &p.DeliveryFormats,
			&p.MaxRevisions, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET title = $2, category = $3, description = $4, budget_min = $5, budget_max = $6,
		    deadline = $7, delivery_formats = $8, max_revisions = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.ID, project.Title, project.Category, project.Description,
		project.BudgetMin, project.BudgetMax, project.Deadline,
		project.DeliveryFormats, project.MaxRevisions,
	).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
