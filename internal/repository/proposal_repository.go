package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAcceptedConflict reports the partial unique index on accepted
// proposals: another proposal of the same project already won.
var ErrAcceptedConflict = errors.New("project already has an accepted proposal")

type Proposal struct {
	ID           string
	ProjectID    string
	CreatorID    string
	Amount       int64
	DeliveryDays int
	Message      string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProposalRepository interface {
	Create(ctx context.Context, proposal *Proposal) error
	FindByID(ctx context.Context, id string) (*Proposal, error)
	FindByProjectID(ctx context.Context, projectID string) ([]*Proposal, error)
	FindByCreatorID(ctx context.Context, creatorID string) ([]*Proposal, error)
	// TransitionStatus atomically moves a proposal between statuses.
	// Returns false when the proposal was not in the expected status;
	// moving to accepted returns ErrAcceptedConflict when another
	// proposal of the same project already won.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
}

type pgProposalRepository struct {
	pool *pgxpool.Pool
}

func NewProposalRepository(pool *pgxpool.Pool) ProposalRepository {
	return &pgProposalRepository{pool: pool}
}

func (r *pgProposalRepository) Create(ctx context.Context, proposal *Proposal) error {
	query := `
		INSERT INTO proposals (project_id, creator_id, amount, delivery_days, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		proposal.ProjectID, proposal.CreatorID, proposal.Amount,
		proposal.DeliveryDays, proposal.Message, proposal.Status,
	).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt)
}

func (r *pgProposalRepository) FindByID(ctx context.Context, id string) (*Proposal, error) {
	query := `
		SELECT id, project_id, creator_id, amount, delivery_days, message, status, created_at, updated_at
		FROM proposals WHERE id = $1
	`
	p := &Proposal{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ProjectID, &p.CreatorID, &p.Amount, &p.DeliveryDays,
		&p.Message, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProposalRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Proposal, error) {
	query := `
		SELECT id, project_id, creator_id, amount, delivery_days, message, status, created_at, updated_at
		FROM proposals WHERE project_id = $1
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, projectID)
}

func (r *pgProposalRepository) FindByCreatorID(ctx context.Context, creatorID string) ([]*Proposal, error) {
	query := `
		SELECT id, project_id, creator_id, amount, delivery_days, message, status, created_at, updated_at
		FROM proposals WHERE creator_id = $1
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, creatorID)
}

func (r *pgProposalRepository) queryMany(ctx context.Context, query string, arg interface{}) ([]*Proposal, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []*Proposal
	for rows.Next() {
		p := &Proposal{}
		if err := rows.Scan(
			&p.ID, &p.ProjectID, &p.CreatorID, &p.Amount, &p.DeliveryDays,
			&p.Message, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (r *pgProposalRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE proposals SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, ErrAcceptedConflict
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
