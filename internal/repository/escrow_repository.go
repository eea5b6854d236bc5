package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EscrowTransaction struct {
	ID           string
	ProjectID    string
	ProposalID   string
	GrossAmount  int64
	PlatformFee  int64
	Tax          int64
	TotalCharged int64
	NetPayout    int64
	Status       string
	GatewayRef   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type EscrowRepository interface {
	Create(ctx context.Context, tx *EscrowTransaction) error
	FindByID(ctx context.Context, id string) (*EscrowTransaction, error)
	FindByProjectID(ctx context.Context, projectID string) (*EscrowTransaction, error)
	// TransitionStatus moves a transaction out of held. Terminal states
	// never transition again, so from is always checked.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
}

type pgEscrowRepository struct {
	pool *pgxpool.Pool
}

func NewEscrowRepository(pool *pgxpool.Pool) EscrowRepository {
	return &pgEscrowRepository{pool: pool}
}

func (r *pgEscrowRepository) Create(ctx context.Context, tx *EscrowTransaction) error {
	query := `
		INSERT INTO escrow_transactions (project_id, proposal_id, gross_amount, platform_fee, tax, total_charged, net_payout, status, gateway_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		tx.ProjectID, tx.ProposalID, tx.GrossAmount, tx.PlatformFee, tx.Tax,
		tx.TotalCharged, tx.NetPayout, tx.Status, tx.GatewayRef,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (r *pgEscrowRepository) FindByID(ctx context.Context, id string) (*EscrowTransaction, error) {
	query := `
		SELECT id, project_id, proposal_id, gross_amount, platform_fee, tax, total_charged, net_payout, status, gateway_ref, created_at, updated_at
		FROM escrow_transactions WHERE id = $1
	`
	return r.queryOne(ctx, query, id)
}

func (r *pgEscrowRepository) FindByProjectID(ctx context.Context, projectID string) (*EscrowTransaction, error) {
	query := `
		SELECT id, project_id, proposal_id, gross_amount, platform_fee, tax, total_charged, net_payout, status, gateway_ref, created_at, updated_at
		FROM escrow_transactions WHERE project_id = $1
		ORDER BY created_at DESC LIMIT 1
	`
	return r.queryOne(ctx, query, projectID)
}

func (r *pgEscrowRepository) queryOne(ctx context.Context, query string, arg interface{}) (*EscrowTransaction, error) {
	tx := &EscrowTransaction{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&tx.ID, &tx.ProjectID, &tx.ProposalID, &tx.GrossAmount, &tx.PlatformFee,
		&tx.Tax, &tx.TotalCharged, &tx.NetPayout, &tx.Status, &tx.GatewayRef,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *pgEscrowRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE escrow_transactions SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
