package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/otoworks/otowork-backend/internal/email"
	"github.com/otoworks/otowork-backend/internal/ledger"
	"github.com/otoworks/otowork-backend/internal/notification"
	"github.com/otoworks/otowork-backend/internal/payment"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
)

// ============================================
// Escrow Service
// ============================================

type EscrowService interface {
	// Capture charges the client and creates a held transaction. Called
	// from proposal acceptance; the caller rolls the acceptance back
	// when this fails.
	Capture(ctx context.Context, project *repository.Project, proposal *repository.Proposal) (*repository.EscrowTransaction, error)
	// Quote computes the fee breakdown for an amount without touching
	// any state. Used by clients to preview the total before accepting.
	Quote(amount int64) (ledger.Fees, error)
	GetByID(ctx context.Context, id string) (*repository.EscrowTransaction, error)
	GetByProjectID(ctx context.Context, projectID string) (*repository.EscrowTransaction, error)
	Release(ctx context.Context, id, callerID string) (*repository.EscrowTransaction, error)
	Refund(ctx context.Context, id, callerID, reason string) (*repository.EscrowTransaction, error)
	SubmitDelivery(ctx context.Context, projectID, creatorID, fileRef string, message *string) (*repository.Deliverable, error)
}

type escrowService struct {
	schedule        ledger.Schedule
	gateway         payment.Gateway
	escrowRepo      repository.EscrowRepository
	projectRepo     repository.ProjectRepository
	proposalRepo    repository.ProposalRepository
	balanceRepo     repository.BalanceRepository
	deliverableRepo repository.DeliverableRepository
	userRepo        repository.UserRepository
	notifSvc        *notification.Service
	emailSvc        *email.Service
}

func NewEscrowService(
	schedule ledger.Schedule,
	gateway payment.Gateway,
	escrowRepo repository.EscrowRepository,
	projectRepo repository.ProjectRepository,
	proposalRepo repository.ProposalRepository,
	balanceRepo repository.BalanceRepository,
	deliverableRepo repository.DeliverableRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
) EscrowService {
	return &escrowService{
		schedule:        schedule,
		gateway:         gateway,
		escrowRepo:      escrowRepo,
		projectRepo:     projectRepo,
		proposalRepo:    proposalRepo,
		balanceRepo:     balanceRepo,
		deliverableRepo: deliverableRepo,
		userRepo:        userRepo,
		notifSvc:        notifSvc,
		emailSvc:        emailSvc,
	}
}

func (s *escrowService) Quote(amount int64) (ledger.Fees, error) {
	fees, err := ledger.ComputeFees(amount, s.schedule)
	if err != nil {
		return ledger.Fees{}, ErrInvalidInput
	}
	return fees, nil
}

func (s *escrowService) Capture(ctx context.Context, project *repository.Project, proposal *repository.Proposal) (*repository.EscrowTransaction, error) {
	fees, err := ledger.ComputeFees(proposal.Amount, s.schedule)
	if err != nil {
		return nil, ErrInvalidInput
	}

	// The gateway call is bounded by the gateway's own timeout; a hang
	// comes back as a decline and the acceptance is compensated.
	ref, err := s.gateway.Charge(ctx, project.ClientID, fees.Total)
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			return nil, ErrPaymentDeclined
		}
		return nil, err
	}

	tx := &repository.EscrowTransaction{
		ProjectID:    project.ID,
		ProposalID:   proposal.ID,
		GrossAmount:  fees.GrossAmount,
		PlatformFee:  fees.PlatformFee,
		Tax:          fees.Tax,
		TotalCharged: fees.Total,
		NetPayout:    fees.NetPayout,
		Status:       types.EscrowHeld,
		GatewayRef:   &ref,
	}

	if err := s.escrowRepo.Create(ctx, tx); err != nil {
		// Funds are charged but unrecorded: refund immediately.
		if refundErr := s.gateway.Refund(ctx, ref, fees.Total); refundErr != nil {
			log.Printf("[Escrow] ⚠️ Orphaned charge %s needs manual refund: %v", ref, refundErr)
		}
		return nil, err
	}

	if err := s.balanceRepo.AddPending(ctx, proposal.CreatorID, fees.NetPayout); err != nil {
		log.Printf("[Escrow] Failed to add pending balance for creator %s: %v", proposal.CreatorID, err)
	}

	if s.emailSvc != nil {
		if client, err := s.userRepo.FindByID(ctx, project.ClientID); err == nil && client != nil {
			go s.emailSvc.SendPaymentReceipt(client.Email, email.PaymentReceiptData{
				ClientName:   client.Name,
				ProjectTitle: project.Title,
				GrossAmount:  fees.GrossAmount,
				PlatformFee:  fees.PlatformFee,
				Tax:          fees.Tax,
				TotalCharged: fees.Total,
			})
		}
	}

	return tx, nil
}

func (s *escrowService) GetByID(ctx context.Context, id string) (*repository.EscrowTransaction, error) {
	tx, err := s.escrowRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (s *escrowService) GetByProjectID(ctx context.Context, projectID string) (*repository.EscrowTransaction, error) {
	tx, err := s.escrowRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}
	return tx, nil
}

// SubmitDelivery records a deliverable against an in-progress project.
func (s *escrowService) SubmitDelivery(ctx context.Context, projectID, creatorID, fileRef string, message *string) (*repository.Deliverable, error) {
	if fileRef == "" {
		return nil, ErrInvalidInput
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.Status != types.ProjectInProgress {
		return nil, ErrInvalidTransition
	}

	tx, err := s.escrowRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}

	proposal, err := s.proposalRepo.FindByID(ctx, tx.ProposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil || proposal.CreatorID != creatorID {
		return nil, ErrForbidden
	}

	deliverable := &repository.Deliverable{
		ProjectID: projectID,
		CreatorID: creatorID,
		FileRef:   fileRef,
		Message:   message,
	}
	if err := s.deliverableRepo.Create(ctx, deliverable); err != nil {
		return nil, err
	}

	if s.notifSvc != nil {
		s.notifSvc.SendDeliverySubmitted(ctx, project.ClientID, project.Title, project.ID)
	}
	return deliverable, nil
}

func (s *escrowService) Release(ctx context.Context, id, callerID string) (*repository.EscrowTransaction, error) {
	tx, err := s.escrowRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, tx.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.ClientID != callerID {
		return nil, ErrForbidden
	}

	// Release is the client approving a delivery, so one must exist.
	count, err := s.deliverableRepo.CountByProjectID(ctx, tx.ProjectID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNothingDelivered
	}

	proposal, err := s.proposalRepo.FindByID(ctx, tx.ProposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrNotFound
	}

	ok, err := s.escrowRepo.TransitionStatus(ctx, id, types.EscrowHeld, types.EscrowReleased)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotHeld
	}
	tx.Status = types.EscrowReleased

	ok, err = s.projectRepo.TransitionStatus(ctx, tx.ProjectID, types.ProjectInProgress, types.ProjectCompleted)
	if err != nil || !ok {
		s.revertEscrowStatus(ctx, id, types.EscrowReleased, types.EscrowHeld)
		if err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	// The payout credit must land together with the status flips. If it
	// cannot, everything is put back so a retry settles the full amount.
	ok, err = s.balanceRepo.SettlePending(ctx, proposal.CreatorID, tx.NetPayout)
	if err != nil || !ok {
		if _, revertErr := s.projectRepo.TransitionStatus(ctx, tx.ProjectID, types.ProjectCompleted, types.ProjectInProgress); revertErr != nil {
			log.Printf("[Escrow] Failed to revert project %s after settle failure: %v", tx.ProjectID, revertErr)
		}
		s.revertEscrowStatus(ctx, id, types.EscrowReleased, types.EscrowHeld)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("pending balance of creator %s does not cover payout for escrow %s", proposal.CreatorID, id)
	}

	if s.notifSvc != nil {
		s.notifSvc.SendEscrowReleased(ctx, proposal.CreatorID, project.Title, tx.NetPayout, tx.ID)
	}
	if s.emailSvc != nil {
		if creator, err := s.userRepo.FindByID(ctx, proposal.CreatorID); err == nil && creator != nil {
			go s.emailSvc.SendPayoutReleased(creator.Email, email.PayoutReleasedData{
				CreatorName:  creator.Name,
				ProjectTitle: project.Title,
				NetPayout:    tx.NetPayout,
			})
		}
	}

	return tx, nil
}

func (s *escrowService) Refund(ctx context.Context, id, callerID, reason string) (*repository.EscrowTransaction, error) {
	tx, err := s.escrowRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, tx.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.ClientID != callerID {
		return nil, ErrForbidden
	}
	if project.Status != types.ProjectInProgress {
		return nil, ErrInvalidTransition
	}

	proposal, err := s.proposalRepo.FindByID(ctx, tx.ProposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrNotFound
	}

	ok, err := s.escrowRepo.TransitionStatus(ctx, id, types.EscrowHeld, types.EscrowRefunded)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotHeld
	}
	tx.Status = types.EscrowRefunded

	ok, err = s.projectRepo.TransitionStatus(ctx, tx.ProjectID, types.ProjectInProgress, types.ProjectCancelled)
	if err != nil || !ok {
		s.revertEscrowStatus(ctx, id, types.EscrowRefunded, types.EscrowHeld)
		if err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	ok, err = s.balanceRepo.DropPending(ctx, proposal.CreatorID, tx.NetPayout)
	if err != nil || !ok {
		if _, revertErr := s.projectRepo.TransitionStatus(ctx, tx.ProjectID, types.ProjectCancelled, types.ProjectInProgress); revertErr != nil {
			log.Printf("[Escrow] Failed to revert project %s after drop failure: %v", tx.ProjectID, revertErr)
		}
		s.revertEscrowStatus(ctx, id, types.EscrowRefunded, types.EscrowHeld)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("pending balance of creator %s does not cover escrow %s", proposal.CreatorID, id)
	}

	// The gateway refund goes out only after the records are settled.
	// Status is already terminal, so a retry cannot double-refund; a
	// failed charge reversal is reconciled manually from this log line.
	if tx.GatewayRef != nil {
		if err := s.gateway.Refund(ctx, *tx.GatewayRef, tx.TotalCharged); err != nil {
			log.Printf("[Escrow] ⚠️ Gateway refund failed for %s (ref %s): %v", tx.ID, *tx.GatewayRef, err)
		}
	}

	if s.notifSvc != nil {
		s.notifSvc.SendEscrowRefunded(ctx, proposal.CreatorID, project.Title, tx.ID)
	}

	log.Printf("[Escrow] Refunded transaction %s (reason: %s)", tx.ID, reason)
	return tx, nil
}

func (s *escrowService) revertEscrowStatus(ctx context.Context, id, from, to string) {
	if _, err := s.escrowRepo.TransitionStatus(ctx, id, from, to); err != nil {
		log.Printf("[Escrow] ⚠️ Failed to revert escrow %s to %s: %v", id, to, err)
	}
}
