package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WithdrawalRequest struct {
	ID            string
	CreatorID     string
	Amount        int64
	Fee           int64
	Method        string
	Status        string
	FailureReason *string
	RequestDate   time.Time
	CompleteDate  *time.Time
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *WithdrawalRequest) error
	FindByID(ctx context.Context, id string) (*WithdrawalRequest, error)
	FindByCreatorID(ctx context.Context, creatorID string) ([]*WithdrawalRequest, error)
	FindByStatus(ctx context.Context, status string) ([]*WithdrawalRequest, error)
	// TransitionStatus is the idempotency guard for payout callbacks.
	// A retried completion finds the row already terminal and no-ops.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	MarkCompleted(ctx context.Context, id, from string) (bool, error)
	MarkFailed(ctx context.Context, id, from, reason string) (bool, error)
}

type pgWithdrawalRepository struct {
	pool *pgxpool.Pool
}

func NewWithdrawalRepository(pool *pgxpool.Pool) WithdrawalRepository {
	return &pgWithdrawalRepository{pool: pool}
}

func (r *pgWithdrawalRepository) Create(ctx context.Context, w *WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (creator_id, amount, fee, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, request_date
	`
	return r.pool.QueryRow(ctx, query,
		w.CreatorID, w.Amount, w.Fee, w.Method, w.Status,
	).Scan(&w.ID, &w.RequestDate)
}

func (r *pgWithdrawalRepository) FindByID(ctx context.Context, id string) (*WithdrawalRequest, error) {
	query := `
		SELECT id, creator_id, amount, fee, method, status, failure_reason, request_date, complete_date
		FROM withdrawal_requests WHERE id = $1
	`
	w := &WithdrawalRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.CreatorID, &w.Amount, &w.Fee, &w.Method, &w.Status,
		&w.FailureReason, &w.RequestDate, &w.CompleteDate,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *pgWithdrawalRepository) FindByCreatorID(ctx context.Context, creatorID string) ([]*WithdrawalRequest, error) {
	query := `
		SELECT id, creator_id, amount, fee, method, status, failure_reason, request_date, complete_date
		FROM withdrawal_requests WHERE creator_id = $1
		ORDER BY request_date DESC
	`
	return r.queryMany(ctx, query, creatorID)
}

func (r *pgWithdrawalRepository) FindByStatus(ctx context.Context, status string) ([]*WithdrawalRequest, error) {
	query := `
		SELECT id, creator_id, amount, fee, method, status, failure_reason, request_date, complete_date
		FROM withdrawal_requests WHERE status = $1
		ORDER BY request_date ASC
	`
	return r.queryMany(ctx, query, status)
}

func (r *pgWithdrawalRepository) queryMany(ctx context.Context, query string, arg interface{}) ([]*WithdrawalRequest, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []*WithdrawalRequest
	for rows.Next() {
		w := &WithdrawalRequest{}
		if err := rows.Scan(
			&w.ID, &w.CreatorID, &w.Amount, &w.Fee, &w.Method, &w.Status,
			&w.FailureReason, &w.RequestDate, &w.CompleteDate,
		); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

func (r *pgWithdrawalRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE withdrawal_requests SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgWithdrawalRepository) MarkCompleted(ctx context.Context, id, from string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE withdrawal_requests SET status = 'completed', complete_date = NOW() WHERE id = $1 AND status = $2`,
		id, from,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgWithdrawalRepository) MarkFailed(ctx context.Context, id, from, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE withdrawal_requests SET status = 'failed', failure_reason = $3, complete_date = NOW() WHERE id = $1 AND status = $2`,
		id, from, reason,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
