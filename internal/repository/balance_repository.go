package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CreatorBalance struct {
	CreatorID   string
	Available   int64
	Pending     int64
	Withdrawn   int64
	TotalEarned int64
	UpdatedAt   time.Time
}

// BalanceRepository mutates creator balances with single-statement
// conditional updates so concurrent withdrawals against the same
// balance serialize in the database.
type BalanceRepository interface {
	FindByCreatorID(ctx context.Context, creatorID string) (*CreatorBalance, error)
	// AddPending records escrow held for a creator (capture time).
	AddPending(ctx context.Context, creatorID string, amount int64) error
	// SettlePending moves amount from pending to available and bumps
	// total earnings (escrow release). Returns false if the pending
	// balance does not cover amount.
	SettlePending(ctx context.Context, creatorID string, amount int64) (bool, error)
	// DropPending removes amount from pending without crediting
	// (escrow refund).
	DropPending(ctx context.Context, creatorID string, amount int64) (bool, error)
	// Reserve debits amount from available for a withdrawal. Returns
	// false when available would go negative.
	Reserve(ctx context.Context, creatorID string, amount int64) (bool, error)
	// Restore credits a failed withdrawal reservation back.
	Restore(ctx context.Context, creatorID string, amount int64) error
	// Settle marks a reservation as withdrawn for good.
	Settle(ctx context.Context, creatorID string, amount int64) error
}

type pgBalanceRepository struct {
	pool *pgxpool.Pool
}

func NewBalanceRepository(pool *pgxpool.Pool) BalanceRepository {
	return &pgBalanceRepository{pool: pool}
}

func (r *pgBalanceRepository) FindByCreatorID(ctx context.Context, creatorID string) (*CreatorBalance, error) {
	query := `
		SELECT creator_id, available, pending, withdrawn, total_earned, updated_at
		FROM creator_balances WHERE creator_id = $1
	`
	b := &CreatorBalance{}
	err := r.pool.QueryRow(ctx, query, creatorID).Scan(
		&b.CreatorID, &b.Available, &b.Pending, &b.Withdrawn, &b.TotalEarned, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *pgBalanceRepository) AddPending(ctx context.Context, creatorID string, amount int64) error {
	query := `
		INSERT INTO creator_balances (creator_id, pending, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (creator_id)
		DO UPDATE SET pending = creator_balances.pending + $2, updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, creatorID, amount)
	return err
}

func (r *pgBalanceRepository) SettlePending(ctx context.Context, creatorID string, amount int64) (bool, error) {
	query := `
		UPDATE creator_balances
		SET pending = pending - $2,
		    available = available + $2,
		    total_earned = total_earned + $2,
		    updated_at = NOW()
		WHERE creator_id = $1 AND pending >= $2
	`
	tag, err := r.pool.Exec(ctx, query, creatorID, amount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgBalanceRepository) DropPending(ctx context.Context, creatorID string, amount int64) (bool, error) {
	query := `
		UPDATE creator_balances
		SET pending = pending - $2, updated_at = NOW()
		WHERE creator_id = $1 AND pending >= $2
	`
	tag, err := r.pool.Exec(ctx, query, creatorID, amount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgBalanceRepository) Reserve(ctx context.Context, creatorID string, amount int64) (bool, error) {
	query := `
		UPDATE creator_balances
		SET available = available - $2, updated_at = NOW()
		WHERE creator_id = $1 AND available >= $2
	`
	tag, err := r.pool.Exec(ctx, query, creatorID, amount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgBalanceRepository) Restore(ctx context.Context, creatorID string, amount int64) error {
	query := `
		UPDATE creator_balances
		SET available = available + $2, updated_at = NOW()
		WHERE creator_id = $1
	`
	_, err := r.pool.Exec(ctx, query, creatorID, amount)
	return err
}

func (r *pgBalanceRepository) Settle(ctx context.Context, creatorID string, amount int64) error {
	query := `
		UPDATE creator_balances
		SET withdrawn = withdrawn + $2, updated_at = NOW()
		WHERE creator_id = $1
	`
	_, err := r.pool.Exec(ctx, query, creatorID, amount)
	return err
}
