package service

import (
	"context"
	"errors"
	"testing"

	"github.com/otoworks/otowork-backend/internal/config"
	"github.com/otoworks/otowork-backend/internal/ledger"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
)

type testEnv struct {
	users       *memUserRepo
	projects    *memProjectRepo
	proposals   *memProposalRepo
	escrows     *memEscrowRepo
	balances    *memBalanceRepo
	deliveries  *memDeliverableRepo
	withdrawals *memWithdrawalRepo
	gateway     *fakeGateway

	escrowSvc     EscrowService
	proposalSvc   ProposalService
	withdrawalSvc WithdrawalService

	client  *repository.User
	creator *repository.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:       newMemUserRepo(),
		projects:    newMemProjectRepo(),
		proposals:   newMemProposalRepo(),
		escrows:     newMemEscrowRepo(),
		balances:    newMemBalanceRepo(),
		deliveries:  newMemDeliverableRepo(),
		withdrawals: newMemWithdrawalRepo(),
		gateway:     &fakeGateway{},
	}

	schedule, err := ledger.NewSchedule("10", "10")
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}

	env.escrowSvc = NewEscrowService(
		schedule, env.gateway, env.escrows, env.projects, env.proposals,
		env.balances, env.deliveries, env.users, nil, nil,
	)
	env.proposalSvc = NewProposalService(env.proposals, env.projects, env.users, env.escrowSvc, nil)

	cfg := &config.Config{WithdrawalFlatFee: 250, WithdrawalMinimum: 1000}
	env.withdrawalSvc = NewWithdrawalService(cfg, env.withdrawals, env.balances, env.users, nil, nil)

	ctx := context.Background()
	env.client = &repository.User{Email: "client@example.com", Name: "Client", Role: types.RoleClient}
	env.creator = &repository.User{Email: "creator@example.com", Name: "Creator", Role: types.RoleCreator}
	env.users.Create(ctx, env.client)
	env.users.Create(ctx, env.creator)

	return env
}

func (env *testEnv) openProject(t *testing.T, min, max int64) *repository.Project {
	t.Helper()
	p := &repository.Project{
		ClientID:  env.client.ID,
		Title:     "Boss battle theme",
		Category:  types.CategoryComposition,
		Status:    types.ProjectOpen,
		BudgetMin: min,
		BudgetMax: max,
	}
	if err := env.projects.Create(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (env *testEnv) pendingProposal(t *testing.T, projectID string, amount int64) *repository.Proposal {
	t.Helper()
	prop, err := env.proposalSvc.Submit(context.Background(), env.creator.ID, SubmitProposalInput{
		ProjectID:    projectID,
		Amount:       amount,
		DeliveryDays: 14,
	})
	if err != nil {
		t.Fatalf("submit proposal: %v", err)
	}
	return prop
}

func TestSubmitBudgetBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)

	// Both bounds are inclusive.
	for _, amount := range []int64{50000, 120000} {
		if _, err := env.proposalSvc.Submit(ctx, env.creator.ID, SubmitProposalInput{
			ProjectID: project.ID, Amount: amount, DeliveryDays: 7,
		}); err != nil {
			t.Errorf("Submit(%d) = %v, want nil", amount, err)
		}
	}

	for _, amount := range []int64{49999, 120001} {
		if _, err := env.proposalSvc.Submit(ctx, env.creator.ID, SubmitProposalInput{
			ProjectID: project.ID, Amount: amount, DeliveryDays: 7,
		}); !errors.Is(err, ErrOutOfBudget) {
			t.Errorf("Submit(%d) = %v, want ErrOutOfBudget", amount, err)
		}
	}
}

func TestSubmitRequiresOpenProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft := &repository.Project{
		ClientID: env.client.ID, Title: "Draft", Category: types.CategoryMixing,
		Status: types.ProjectDraft, BudgetMin: 1000, BudgetMax: 5000,
	}
	env.projects.Create(ctx, draft)

	_, err := env.proposalSvc.Submit(ctx, env.creator.ID, SubmitProposalInput{
		ProjectID: draft.ID, Amount: 2000, DeliveryDays: 7,
	})
	if !errors.Is(err, ErrProjectNotOpen) {
		t.Fatalf("Submit on draft = %v, want ErrProjectNotOpen", err)
	}
}

func TestSubmitRejectsClients(t *testing.T) {
	env := newTestEnv(t)
	project := env.openProject(t, 1000, 5000)

	_, err := env.proposalSvc.Submit(context.Background(), env.client.ID, SubmitProposalInput{
		ProjectID: project.ID, Amount: 2000, DeliveryDays: 7,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Submit by client = %v, want ErrForbidden", err)
	}
}

func TestAcceptCapturesEscrow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)
	proposal := env.pendingProposal(t, project.ID, 75000)

	result, err := env.proposalSvc.Accept(ctx, proposal.ID, env.client.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	tx := result.Escrow
	if tx.GrossAmount != 75000 || tx.PlatformFee != 7500 || tx.Tax != 8250 || tx.TotalCharged != 90750 || tx.NetPayout != 67500 {
		t.Errorf("fee breakdown = %d/%d/%d/%d/%d, want 75000/7500/8250/90750/67500",
			tx.GrossAmount, tx.PlatformFee, tx.Tax, tx.TotalCharged, tx.NetPayout)
	}
	if tx.Status != types.EscrowHeld {
		t.Errorf("escrow status = %q, want held", tx.Status)
	}

	if len(env.gateway.charges) != 1 || env.gateway.charges[0] != 90750 {
		t.Errorf("gateway charges = %v, want [90750]", env.gateway.charges)
	}

	p, _ := env.projects.FindByID(ctx, project.ID)
	if p.Status != types.ProjectInProgress {
		t.Errorf("project status = %q, want in_progress", p.Status)
	}

	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Pending != 67500 {
		t.Errorf("pending balance = %d, want 67500", balance.Pending)
	}
}

func TestAcceptIsExclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)
	first := env.pendingProposal(t, project.ID, 60000)
	second := env.pendingProposal(t, project.ID, 80000)

	if _, err := env.proposalSvc.Accept(ctx, first.ID, env.client.ID); err != nil {
		t.Fatalf("first Accept: %v", err)
	}

	_, err := env.proposalSvc.Accept(ctx, second.ID, env.client.ID)
	if !errors.Is(err, ErrProjectNotOpen) {
		t.Fatalf("second Accept = %v, want ErrProjectNotOpen", err)
	}

	// The losing proposal must be back in pending, not stuck accepted.
	p, _ := env.proposals.FindByID(ctx, second.ID)
	if p.Status != types.ProposalPending {
		t.Errorf("losing proposal status = %q, want pending", p.Status)
	}

	if len(env.gateway.charges) != 1 {
		t.Errorf("gateway charges = %d, want exactly 1", len(env.gateway.charges))
	}
}

func TestAcceptSameProposalTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)
	proposal := env.pendingProposal(t, project.ID, 75000)

	if _, err := env.proposalSvc.Accept(ctx, proposal.ID, env.client.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if _, err := env.proposalSvc.Accept(ctx, proposal.ID, env.client.ID); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second Accept = %v, want ErrAlreadyDecided", err)
	}
}

func TestAcceptPaymentDeclinedRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)
	proposal := env.pendingProposal(t, project.ID, 75000)

	env.gateway.decline = true

	_, err := env.proposalSvc.Accept(ctx, proposal.ID, env.client.ID)
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("Accept = %v, want ErrPaymentDeclined", err)
	}

	// Everything compensated: proposal pending, project open, no balance.
	prop, _ := env.proposals.FindByID(ctx, proposal.ID)
	if prop.Status != types.ProposalPending {
		t.Errorf("proposal status = %q, want pending", prop.Status)
	}
	p, _ := env.projects.FindByID(ctx, project.ID)
	if p.Status != types.ProjectOpen {
		t.Errorf("project status = %q, want open", p.Status)
	}
	if balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID); balance != nil && balance.Pending != 0 {
		t.Errorf("pending balance = %d, want 0", balance.Pending)
	}

	// Retry succeeds once the gateway recovers.
	env.gateway.decline = false
	if _, err := env.proposalSvc.Accept(ctx, proposal.ID, env.client.ID); err != nil {
		t.Fatalf("Accept retry: %v", err)
	}
}

func TestAcceptRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	project := env.openProject(t, 50000, 120000)
	proposal := env.pendingProposal(t, project.ID, 75000)

	_, err := env.proposalSvc.Accept(context.Background(), proposal.ID, env.creator.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Accept by non-owner = %v, want ErrForbidden", err)
	}
}

func TestRejectAlreadyDecided(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)
	proposal := env.pendingProposal(t, project.ID, 75000)

	if _, err := env.proposalSvc.Reject(ctx, proposal.ID, env.client.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if _, err := env.proposalSvc.Reject(ctx, proposal.ID, env.client.ID); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second Reject = %v, want ErrAlreadyDecided", err)
	}
}

func TestAcceptWithAcceptedSibling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)
	first := env.pendingProposal(t, project.ID, 60000)
	second := env.pendingProposal(t, project.ID, 80000)

	// A sibling wins after our status read: the project row still says
	// open when the second accept reaches the proposal update, and only
	// the accepted-proposal constraint stands in the way.
	if ok, err := env.proposals.TransitionStatus(ctx, first.ID, types.ProposalPending, types.ProposalAccepted); err != nil || !ok {
		t.Fatalf("mark sibling accepted: ok=%v err=%v", ok, err)
	}

	_, err := env.proposalSvc.Accept(ctx, second.ID, env.client.ID)
	if !errors.Is(err, ErrProjectNotOpen) {
		t.Fatalf("Accept with accepted sibling = %v, want ErrProjectNotOpen", err)
	}

	p, _ := env.proposals.FindByID(ctx, second.ID)
	if p.Status != types.ProposalPending {
		t.Errorf("proposal status = %q, want pending", p.Status)
	}
	if len(env.gateway.charges) != 0 {
		t.Errorf("gateway charges = %d, want none", len(env.gateway.charges))
	}
}
