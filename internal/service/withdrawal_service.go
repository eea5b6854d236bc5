package service

import (
	"context"
	"log"

	"github.com/otoworks/otowork-backend/internal/config"
	"github.com/otoworks/otowork-backend/internal/email"
	"github.com/otoworks/otowork-backend/internal/notification"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
)

// ============================================
// Withdrawal Service
// ============================================

type WithdrawalService interface {
	Request(ctx context.Context, creatorID string, amount int64, method string) (*repository.WithdrawalRequest, error)
	GetByID(ctx context.Context, id, callerID string) (*repository.WithdrawalRequest, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*repository.WithdrawalRequest, error)
	GetBalance(ctx context.Context, creatorID string) (*repository.CreatorBalance, error)
	// DispatchPending hands pending requests to the payout processor.
	// Run from cron; completion arrives later on the webhook.
	DispatchPending(ctx context.Context) (int, error)
	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id, reason string) error
}

type withdrawalService struct {
	cfg            *config.Config
	withdrawalRepo repository.WithdrawalRepository
	balanceRepo    repository.BalanceRepository
	userRepo       repository.UserRepository
	notifSvc       *notification.Service
	emailSvc       *email.Service
}

func NewWithdrawalService(
	cfg *config.Config,
	withdrawalRepo repository.WithdrawalRepository,
	balanceRepo repository.BalanceRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
) WithdrawalService {
	return &withdrawalService{
		cfg:            cfg,
		withdrawalRepo: withdrawalRepo,
		balanceRepo:    balanceRepo,
		userRepo:       userRepo,
		notifSvc:       notifSvc,
		emailSvc:       emailSvc,
	}
}

func (s *withdrawalService) Request(ctx context.Context, creatorID string, amount int64, method string) (*repository.WithdrawalRequest, error) {
	if !types.IsValidWithdrawalMethod(method) {
		return nil, ErrInvalidInput
	}
	if amount < s.cfg.WithdrawalMinimum {
		return nil, ErrBelowMinimum
	}

	fee := s.cfg.WithdrawalFlatFee

	// Amount plus fee leaves the available balance up front. A failed
	// payout restores it; nothing is ever paid out of pending funds.
	ok, err := s.balanceRepo.Reserve(ctx, creatorID, amount+fee)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}

	w := &repository.WithdrawalRequest{
		CreatorID: creatorID,
		Amount:    amount,
		Fee:       fee,
		Method:    method,
		Status:    types.WithdrawalPending,
	}
	if err := s.withdrawalRepo.Create(ctx, w); err != nil {
		if restoreErr := s.balanceRepo.Restore(ctx, creatorID, amount+fee); restoreErr != nil {
			log.Printf("[Withdrawal] Failed to restore reserved balance for creator %s: %v", creatorID, restoreErr)
		}
		return nil, err
	}

	return w, nil
}

func (s *withdrawalService) GetByID(ctx context.Context, id, callerID string) (*repository.WithdrawalRequest, error) {
	w, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNotFound
	}
	if w.CreatorID != callerID {
		return nil, ErrForbidden
	}
	return w, nil
}

func (s *withdrawalService) ListByCreator(ctx context.Context, creatorID string) ([]*repository.WithdrawalRequest, error) {
	return s.withdrawalRepo.FindByCreatorID(ctx, creatorID)
}

func (s *withdrawalService) GetBalance(ctx context.Context, creatorID string) (*repository.CreatorBalance, error) {
	balance, err := s.balanceRepo.FindByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return &repository.CreatorBalance{CreatorID: creatorID}, nil
	}
	return balance, nil
}

func (s *withdrawalService) DispatchPending(ctx context.Context) (int, error) {
	pending, err := s.withdrawalRepo.FindByStatus(ctx, types.WithdrawalPending)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, w := range pending {
		ok, err := s.withdrawalRepo.TransitionStatus(ctx, w.ID, types.WithdrawalPending, types.WithdrawalProcessing)
		if err != nil {
			log.Printf("[Withdrawal] Failed to dispatch %s: %v", w.ID, err)
			continue
		}
		if ok {
			dispatched++
		}
	}
	return dispatched, nil
}

// Complete settles a withdrawal after the payout processor confirms the
// transfer. Safe to call more than once.
func (s *withdrawalService) Complete(ctx context.Context, id string) error {
	w, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrNotFound
	}

	ok, err := s.withdrawalRepo.MarkCompleted(ctx, id, types.WithdrawalProcessing)
	if err != nil {
		return err
	}
	if !ok {
		// A callback can land before the dispatch job runs.
		ok, err = s.withdrawalRepo.MarkCompleted(ctx, id, types.WithdrawalPending)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
	}

	if err := s.balanceRepo.Settle(ctx, w.CreatorID, w.Amount+w.Fee); err != nil {
		log.Printf("[Withdrawal] Failed to settle balance for creator %s: %v", w.CreatorID, err)
	}

	s.notifyResult(ctx, w, true, "")
	return nil
}

func (s *withdrawalService) Fail(ctx context.Context, id, reason string) error {
	w, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrNotFound
	}

	ok, err := s.withdrawalRepo.MarkFailed(ctx, id, types.WithdrawalProcessing, reason)
	if err != nil {
		return err
	}
	if !ok {
		ok, err = s.withdrawalRepo.MarkFailed(ctx, id, types.WithdrawalPending, reason)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
	}

	if err := s.balanceRepo.Restore(ctx, w.CreatorID, w.Amount+w.Fee); err != nil {
		log.Printf("[Withdrawal] Failed to restore balance for creator %s: %v", w.CreatorID, err)
	}

	s.notifyResult(ctx, w, false, reason)
	return nil
}

func (s *withdrawalService) notifyResult(ctx context.Context, w *repository.WithdrawalRequest, completed bool, reason string) {
	if s.notifSvc != nil {
		s.notifSvc.SendWithdrawalResult(ctx, w.CreatorID, w.ID, w.Amount, completed, reason)
	}
	if s.emailSvc != nil {
		if creator, err := s.userRepo.FindByID(ctx, w.CreatorID); err == nil && creator != nil {
			go s.emailSvc.SendWithdrawalResult(creator.Email, email.WithdrawalResultData{
				CreatorName: creator.Name,
				Amount:      w.Amount,
				Completed:   completed,
				Reason:      reason,
			})
		}
	}
}
