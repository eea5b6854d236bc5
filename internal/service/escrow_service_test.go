package service

import (
	"context"
	"errors"
	"testing"

	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
)

// acceptedProject drives a full accept so the escrow tests start from
// an in-progress project with a held transaction.
func acceptedProject(t *testing.T, env *testEnv) (*repository.Project, *repository.EscrowTransaction) {
	t.Helper()
	ctx := context.Background()
	project := env.openProject(t, 50000, 120000)
	proposal := env.pendingProposal(t, project.ID, 75000)
	result, err := env.proposalSvc.Accept(ctx, proposal.ID, env.client.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	return project, result.Escrow
}

func deliver(t *testing.T, env *testEnv, projectID string) {
	t.Helper()
	if _, err := env.escrowSvc.SubmitDelivery(context.Background(), projectID, env.creator.ID, "s3://deliveries/final.wav", nil); err != nil {
		t.Fatalf("SubmitDelivery: %v", err)
	}
}

func TestReleaseCreditsNetPayout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, tx := acceptedProject(t, env)
	deliver(t, env, project.ID)

	released, err := env.escrowSvc.Release(ctx, tx.ID, env.client.ID)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if released.Status != types.EscrowReleased {
		t.Errorf("escrow status = %q, want released", released.Status)
	}

	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Available != 67500 || balance.Pending != 0 || balance.TotalEarned != 67500 {
		t.Errorf("balance = available %d pending %d earned %d, want 67500/0/67500",
			balance.Available, balance.Pending, balance.TotalEarned)
	}

	p, _ := env.projects.FindByID(ctx, project.ID)
	if p.Status != types.ProjectCompleted {
		t.Errorf("project status = %q, want completed", p.Status)
	}
}

func TestReleaseRequiresDelivery(t *testing.T) {
	env := newTestEnv(t)
	_, tx := acceptedProject(t, env)

	_, err := env.escrowSvc.Release(context.Background(), tx.ID, env.client.ID)
	if !errors.Is(err, ErrNothingDelivered) {
		t.Fatalf("Release without delivery = %v, want ErrNothingDelivered", err)
	}
}

func TestReleaseRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	project, tx := acceptedProject(t, env)
	deliver(t, env, project.ID)

	_, err := env.escrowSvc.Release(context.Background(), tx.ID, env.creator.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Release by creator = %v, want ErrForbidden", err)
	}
}

func TestReleaseIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, tx := acceptedProject(t, env)
	deliver(t, env, project.ID)

	if _, err := env.escrowSvc.Release(ctx, tx.ID, env.client.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// Neither a repeat release nor a refund can touch a settled escrow.
	if _, err := env.escrowSvc.Release(ctx, tx.ID, env.client.ID); !errors.Is(err, ErrNotHeld) {
		t.Errorf("second Release = %v, want ErrNotHeld", err)
	}

	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Available != 67500 {
		t.Errorf("balance after double release = %d, want 67500", balance.Available)
	}
}

func TestRefundReturnsFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, tx := acceptedProject(t, env)

	refunded, err := env.escrowSvc.Refund(ctx, tx.ID, env.client.ID, "creator unresponsive")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Status != types.EscrowRefunded {
		t.Errorf("escrow status = %q, want refunded", refunded.Status)
	}

	if len(env.gateway.refunds) != 1 {
		t.Errorf("gateway refunds = %d, want 1", len(env.gateway.refunds))
	}

	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Pending != 0 || balance.Available != 0 {
		t.Errorf("balance = pending %d available %d, want 0/0", balance.Pending, balance.Available)
	}

	p, _ := env.projects.FindByID(ctx, project.ID)
	if p.Status != types.ProjectCancelled {
		t.Errorf("project status = %q, want cancelled", p.Status)
	}
}

func TestRefundThenReleaseFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, tx := acceptedProject(t, env)
	deliver(t, env, project.ID)

	if _, err := env.escrowSvc.Refund(ctx, tx.ID, env.client.ID, "changed my mind"); err != nil {
		t.Fatalf("Refund: %v", err)
	}

	if _, err := env.escrowSvc.Release(ctx, tx.ID, env.client.ID); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("Release after refund = %v, want ErrNotHeld", err)
	}
}

func TestSubmitDeliveryRequiresAssignedCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := acceptedProject(t, env)

	outsider := &repository.User{Email: "other@example.com", Name: "Other", Role: types.RoleCreator}
	env.users.Create(ctx, outsider)

	_, err := env.escrowSvc.SubmitDelivery(ctx, project.ID, outsider.ID, "s3://deliveries/rogue.wav", nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("SubmitDelivery by outsider = %v, want ErrForbidden", err)
	}
}

func TestSubmitDeliveryRequiresInProgress(t *testing.T) {
	env := newTestEnv(t)
	project := env.openProject(t, 50000, 120000)

	_, err := env.escrowSvc.SubmitDelivery(context.Background(), project.ID, env.creator.ID, "s3://deliveries/early.wav", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("SubmitDelivery on open project = %v, want ErrInvalidTransition", err)
	}
}

func TestQuoteMatchesCaptureBreakdown(t *testing.T) {
	env := newTestEnv(t)

	fees, err := env.escrowSvc.Quote(75000)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if fees.PlatformFee != 7500 || fees.Tax != 8250 || fees.Total != 90750 || fees.NetPayout != 67500 {
		t.Errorf("quote = %d/%d/%d/%d, want 7500/8250/90750/67500",
			fees.PlatformFee, fees.Tax, fees.Total, fees.NetPayout)
	}

	if _, err := env.escrowSvc.Quote(0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Quote(0) = %v, want ErrInvalidInput", err)
	}
}

func TestReleaseBalanceFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, tx := acceptedProject(t, env)
	deliver(t, env, project.ID)

	env.balances.settleErr = errors.New("connection reset")
	if _, err := env.escrowSvc.Release(ctx, tx.ID, env.client.ID); err == nil {
		t.Fatal("Release = nil, want error when the payout credit fails")
	}

	// Nothing moved: the escrow stays held, the project stays in
	// progress and the payout is still pending.
	e, _ := env.escrows.FindByID(ctx, tx.ID)
	if e.Status != types.EscrowHeld {
		t.Errorf("escrow status = %q, want held", e.Status)
	}
	p, _ := env.projects.FindByID(ctx, project.ID)
	if p.Status != types.ProjectInProgress {
		t.Errorf("project status = %q, want in_progress", p.Status)
	}
	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Available != 0 || balance.Pending != 67500 {
		t.Errorf("balance = available %d pending %d, want 0/67500", balance.Available, balance.Pending)
	}

	// A retry after the outage settles the full amount.
	env.balances.settleErr = nil
	if _, err := env.escrowSvc.Release(ctx, tx.ID, env.client.ID); err != nil {
		t.Fatalf("Release retry: %v", err)
	}
	balance, _ = env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Available != 67500 || balance.Pending != 0 {
		t.Errorf("balance after retry = available %d pending %d, want 67500/0", balance.Available, balance.Pending)
	}
}

func TestRefundBalanceFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, tx := acceptedProject(t, env)

	env.balances.dropErr = errors.New("connection reset")
	if _, err := env.escrowSvc.Refund(ctx, tx.ID, env.client.ID, "wrong vibe"); err == nil {
		t.Fatal("Refund = nil, want error when the pending drop fails")
	}

	e, _ := env.escrows.FindByID(ctx, tx.ID)
	if e.Status != types.EscrowHeld {
		t.Errorf("escrow status = %q, want held", e.Status)
	}
	p, _ := env.projects.FindByID(ctx, project.ID)
	if p.Status != types.ProjectInProgress {
		t.Errorf("project status = %q, want in_progress", p.Status)
	}
	if len(env.gateway.refunds) != 0 {
		t.Errorf("gateway refunds = %d, want none before the records settle", len(env.gateway.refunds))
	}

	env.balances.dropErr = nil
	if _, err := env.escrowSvc.Refund(ctx, tx.ID, env.client.ID, "wrong vibe"); err != nil {
		t.Fatalf("Refund retry: %v", err)
	}
	if len(env.gateway.refunds) != 1 {
		t.Errorf("gateway refunds = %d, want 1 after retry", len(env.gateway.refunds))
	}
	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Pending != 0 {
		t.Errorf("pending after refund = %d, want 0", balance.Pending)
	}
}
