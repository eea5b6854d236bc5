package service

import (
	"context"
	"errors"
	"log"

	"github.com/otoworks/otowork-backend/internal/notification"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
)

// ============================================
// Proposal Service
// ============================================

type SubmitProposalInput struct {
	ProjectID    string
	Amount       int64
	Message      string
	DeliveryDays int
}

type AcceptResult struct {
	Proposal *repository.Proposal
	Escrow   *repository.EscrowTransaction
}

type ProposalService interface {
	Submit(ctx context.Context, creatorID string, input SubmitProposalInput) (*repository.Proposal, error)
	GetByID(ctx context.Context, id string) (*repository.Proposal, error)
	ListByProject(ctx context.Context, projectID, callerID string) ([]*repository.Proposal, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*repository.Proposal, error)
	Accept(ctx context.Context, id, clientID string) (*AcceptResult, error)
	Reject(ctx context.Context, id, clientID string) (*repository.Proposal, error)
}

type proposalService struct {
	proposalRepo repository.ProposalRepository
	projectRepo  repository.ProjectRepository
	userRepo     repository.UserRepository
	escrowSvc    EscrowService
	notifSvc     *notification.Service
}

func NewProposalService(
	proposalRepo repository.ProposalRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	escrowSvc EscrowService,
	notifSvc *notification.Service,
) ProposalService {
	return &proposalService{
		proposalRepo: proposalRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		escrowSvc:    escrowSvc,
		notifSvc:     notifSvc,
	}
}

func (s *proposalService) Submit(ctx context.Context, creatorID string, input SubmitProposalInput) (*repository.Proposal, error) {
	if input.Amount <= 0 || input.DeliveryDays <= 0 {
		return nil, ErrInvalidInput
	}

	creator, err := s.userRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrNotFound
	}
	if creator.Role != types.RoleCreator {
		return nil, ErrForbidden
	}

	project, err := s.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.Status != types.ProjectOpen {
		return nil, ErrProjectNotOpen
	}
	if project.ClientID == creatorID {
		return nil, ErrForbidden
	}

	// Budget bounds are inclusive on both ends.
	if input.Amount < project.BudgetMin || input.Amount > project.BudgetMax {
		return nil, ErrOutOfBudget
	}

	proposal := &repository.Proposal{
		ProjectID:    input.ProjectID,
		CreatorID:    creatorID,
		Amount:       input.Amount,
		Message:      input.Message,
		DeliveryDays: input.DeliveryDays,
		Status:       types.ProposalPending,
	}
	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, err
	}

	if s.notifSvc != nil {
		s.notifSvc.SendProposalReceived(ctx, project.ClientID, project.Title, proposal.ID)
	}
	return proposal, nil
}

func (s *proposalService) GetByID(ctx context.Context, id string) (*repository.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrNotFound
	}
	return proposal, nil
}

func (s *proposalService) ListByProject(ctx context.Context, projectID, callerID string) ([]*repository.Proposal, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.ClientID != callerID {
		return nil, ErrForbidden
	}
	return s.proposalRepo.FindByProjectID(ctx, projectID)
}

func (s *proposalService) ListByCreator(ctx context.Context, creatorID string) ([]*repository.Proposal, error) {
	return s.proposalRepo.FindByCreatorID(ctx, creatorID)
}

// Accept is the pivotal transition of the whole marketplace: it flips the
// proposal, takes the project off the board and captures the client's
// payment into escrow. Each step is a guarded update; a later failure
// compensates the earlier steps so concurrent accepts converge on
// exactly one winner.
func (s *proposalService) Accept(ctx context.Context, id, clientID string) (*AcceptResult, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, proposal.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.ClientID != clientID {
		return nil, ErrForbidden
	}
	if project.Status != types.ProjectOpen {
		return nil, ErrProjectNotOpen
	}

	ok, err := s.proposalRepo.TransitionStatus(ctx, id, types.ProposalPending, types.ProposalAccepted)
	if err != nil {
		// A sibling proposal won between our status read and this
		// update; the accepted-proposal index rejects a second winner.
		if errors.Is(err, repository.ErrAcceptedConflict) {
			return nil, ErrProjectNotOpen
		}
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyDecided
	}

	ok, err = s.projectRepo.TransitionStatus(ctx, proposal.ProjectID, types.ProjectOpen, types.ProjectInProgress)
	if err != nil || !ok {
		s.revertAcceptance(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, ErrProjectNotOpen
	}

	tx, err := s.escrowSvc.Capture(ctx, project, proposal)
	if err != nil {
		// Payment fell through: put the project back on the board and
		// the proposal back to pending.
		if _, revertErr := s.projectRepo.TransitionStatus(ctx, proposal.ProjectID, types.ProjectInProgress, types.ProjectOpen); revertErr != nil {
			log.Printf("[Proposal] Failed to reopen project %s after capture failure: %v", proposal.ProjectID, revertErr)
		}
		s.revertAcceptance(ctx, id)
		return nil, err
	}

	proposal.Status = types.ProposalAccepted

	if s.notifSvc != nil {
		s.notifSvc.SendProposalDecided(ctx, proposal.CreatorID, project.Title, proposal.ID, true)
	}
	return &AcceptResult{Proposal: proposal, Escrow: tx}, nil
}

func (s *proposalService) Reject(ctx context.Context, id, clientID string) (*repository.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, proposal.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.ClientID != clientID {
		return nil, ErrForbidden
	}

	ok, err := s.proposalRepo.TransitionStatus(ctx, id, types.ProposalPending, types.ProposalRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyDecided
	}
	proposal.Status = types.ProposalRejected

	if s.notifSvc != nil {
		s.notifSvc.SendProposalDecided(ctx, proposal.CreatorID, project.Title, proposal.ID, false)
	}
	return proposal, nil
}

func (s *proposalService) revertAcceptance(ctx context.Context, id string) {
	if _, err := s.proposalRepo.TransitionStatus(ctx, id, types.ProposalAccepted, types.ProposalPending); err != nil {
		log.Printf("[Proposal] Failed to revert proposal %s to pending: %v", id, err)
	}
}
