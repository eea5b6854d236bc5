package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// EarningsSummary is the aggregate the creator earnings page reads.
// Served from the sqlx read connection; listings tolerate replica lag.
type EarningsSummary struct {
	TotalEarnings    int64 `db:"total_earnings"`
	AvailableBalance int64 `db:"available_balance"`
	PendingBalance   int64 `db:"pending_balance"`
	WithdrawnAmount  int64 `db:"withdrawn_amount"`
}

// EarningsEntry is one row of the creator transaction history: a
// released escrow payout with its fee deduction.
type EarningsEntry struct {
	EscrowID     string    `db:"escrow_id"`
	ProjectID    string    `db:"project_id"`
	ProjectTitle string    `db:"project_title"`
	GrossAmount  int64     `db:"gross_amount"`
	Fee          int64     `db:"fee"`
	NetAmount    int64     `db:"net_amount"`
	ReleasedAt   time.Time `db:"released_at"`
}

type EarningsRepository interface {
	Summary(ctx context.Context, creatorID string) (*EarningsSummary, error)
	History(ctx context.Context, creatorID string, limit int) ([]*EarningsEntry, error)
}

type sqlxEarningsRepository struct {
	db *sqlx.DB
}

func NewEarningsRepository(db *sqlx.DB) EarningsRepository {
	return &sqlxEarningsRepository{db: db}
}

func (r *sqlxEarningsRepository) Summary(ctx context.Context, creatorID string) (*EarningsSummary, error) {
	query := `
		SELECT COALESCE(total_earned, 0) AS total_earnings,
		       COALESCE(available, 0)    AS available_balance,
		       COALESCE(pending, 0)      AS pending_balance,
		       COALESCE(withdrawn, 0)    AS withdrawn_amount
		FROM creator_balances
		WHERE creator_id = $1
	`
	summary := &EarningsSummary{}
	err := r.db.GetContext(ctx, summary, query, creatorID)
	if err != nil {
		// A creator who has never earned has no balance row yet.
		if errors.Is(err, sql.ErrNoRows) {
			return &EarningsSummary{}, nil
		}
		return nil, err
	}
	return summary, nil
}

func (r *sqlxEarningsRepository) History(ctx context.Context, creatorID string, limit int) ([]*EarningsEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT e.id          AS escrow_id,
		       e.project_id  AS project_id,
		       p.title       AS project_title,
		       e.gross_amount,
		       e.platform_fee AS fee,
		       e.net_payout   AS net_amount,
		       e.updated_at   AS released_at
		FROM escrow_transactions e
		JOIN projects p  ON p.id = e.project_id
		JOIN proposals pr ON pr.id = e.proposal_id
		WHERE pr.creator_id = $1 AND e.status = 'released'
		ORDER BY e.updated_at DESC
		LIMIT $2
	`
	var entries []*EarningsEntry
	if err := r.db.SelectContext(ctx, &entries, query, creatorID, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
