package service

import (
	"errors"

	"github.com/otoworks/otowork-backend/internal/config"
	"github.com/otoworks/otowork-backend/internal/db"
	"github.com/otoworks/otowork-backend/internal/email"
	"github.com/otoworks/otowork-backend/internal/ledger"
	"github.com/otoworks/otowork-backend/internal/notification"
	"github.com/otoworks/otowork-backend/internal/payment"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")

	// Validation errors
	ErrOutOfBudget  = errors.New("amount outside the project budget range")
	ErrBelowMinimum = errors.New("amount below the withdrawal minimum")

	// State conflicts
	ErrProjectNotOpen    = errors.New("project is not open")
	ErrAlreadyDecided    = errors.New("proposal already decided")
	ErrNotHeld           = errors.New("escrow transaction is not held")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNothingDelivered  = errors.New("no deliverable submitted yet")

	// External / balance failures
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	Project      ProjectService
	Proposal     ProposalService
	Escrow       EscrowService
	Withdrawal   WithdrawalService
	Earnings     EarningsService
	Message      MessageService
	Notification NotificationService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Schedule    ledger.Schedule
	Gateway     payment.Gateway
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Redis       *db.RedisDB
}

func NewServices(deps *ServiceDeps) *Services {
	repos := deps.Repos

	escrowSvc := NewEscrowService(
		deps.Schedule,
		deps.Gateway,
		repos.EscrowRepo,
		repos.ProjectRepo,
		repos.ProposalRepo,
		repos.BalanceRepo,
		repos.DeliverableRepo,
		repos.UserRepo,
		deps.NotifSvc,
		deps.EmailSvc,
	)

	return &Services{
		Auth:         NewAuthService(deps.Config, repos.UserRepo),
		Project:      NewProjectService(repos.ProjectRepo, deps.Redis),
		Proposal:     NewProposalService(repos.ProposalRepo, repos.ProjectRepo, repos.UserRepo, escrowSvc, deps.NotifSvc),
		Escrow:       escrowSvc,
		Withdrawal:   NewWithdrawalService(deps.Config, repos.WithdrawalRepo, repos.BalanceRepo, repos.UserRepo, deps.NotifSvc, deps.EmailSvc),
		Earnings:     NewEarningsService(repos.EarningsRepo),
		Message:      NewMessageService(repos.MessageRepo, repos.UserRepo, deps.NotifSvc, deps.Broadcaster),
		Notification: NewNotificationService(repos.NotificationRepo),
		Broadcaster:  deps.Broadcaster,
	}
}
