package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	// Write-side repositories (pgxpool)
	UserRepo         UserRepository
	ProjectRepo      ProjectRepository
	ProposalRepo     ProposalRepository
	EscrowRepo       EscrowRepository
	BalanceRepo      BalanceRepository
	WithdrawalRepo   WithdrawalRepository
	DeliverableRepo  DeliverableRepository
	MessageRepo      MessageRepository
	NotificationRepo NotificationRepository

	// Read-model repositories (sqlx)
	EarningsRepo EarningsRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sqlx.DB) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		ProjectRepo:      NewProjectRepository(pool),
		ProposalRepo:     NewProposalRepository(pool),
		EscrowRepo:       NewEscrowRepository(pool),
		BalanceRepo:      NewBalanceRepository(pool),
		WithdrawalRepo:   NewWithdrawalRepository(pool),
		DeliverableRepo:  NewDeliverableRepository(pool),
		MessageRepo:      NewMessageRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),

		EarningsRepo: NewEarningsRepository(db),
	}
}
