package service

import (
	"context"
	"errors"
	"testing"

	"github.com/otoworks/otowork-backend/internal/types"
)

func fundCreator(t *testing.T, env *testEnv, amount int64) {
	t.Helper()
	ctx := context.Background()
	if err := env.balances.AddPending(ctx, env.creator.ID, amount); err != nil {
		t.Fatalf("AddPending: %v", err)
	}
	if ok, err := env.balances.SettlePending(ctx, env.creator.ID, amount); err != nil || !ok {
		t.Fatalf("SettlePending: ok=%v err=%v", ok, err)
	}
}

func TestRequestBelowMinimum(t *testing.T) {
	env := newTestEnv(t)
	fundCreator(t, env, 125000)

	_, err := env.withdrawalSvc.Request(context.Background(), env.creator.ID, 500, types.MethodBank)
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("Request(500) = %v, want ErrBelowMinimum", err)
	}
}

func TestRequestInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fundCreator(t, env, 125000)

	_, err := env.withdrawalSvc.Request(ctx, env.creator.ID, 200000, types.MethodBank)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Request(200000) = %v, want ErrInsufficientBalance", err)
	}

	// A rejected request must not touch the balance.
	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Available != 125000 {
		t.Errorf("available = %d, want 125000", balance.Available)
	}
}

func TestRequestReservesAmountPlusFee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fundCreator(t, env, 125000)

	w, err := env.withdrawalSvc.Request(ctx, env.creator.ID, 100000, types.MethodBank)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if w.Fee != 250 || w.Status != types.WithdrawalPending {
		t.Errorf("withdrawal = fee %d status %q, want 250/pending", w.Fee, w.Status)
	}

	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Available != 24750 {
		t.Errorf("available = %d, want 24750", balance.Available)
	}
}

func TestRequestInvalidMethod(t *testing.T) {
	env := newTestEnv(t)
	fundCreator(t, env, 125000)

	_, err := env.withdrawalSvc.Request(context.Background(), env.creator.ID, 5000, "cash")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Request(cash) = %v, want ErrInvalidInput", err)
	}
}

func TestCompleteSettlesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fundCreator(t, env, 125000)

	w, err := env.withdrawalSvc.Request(ctx, env.creator.ID, 100000, types.MethodBank)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	if _, err := env.withdrawalSvc.DispatchPending(ctx); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}

	if err := env.withdrawalSvc.Complete(ctx, w.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// A retried callback must be a no-op, not a second settlement.
	if err := env.withdrawalSvc.Complete(ctx, w.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Complete = %v, want ErrInvalidTransition", err)
	}

	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Withdrawn != 100250 {
		t.Errorf("withdrawn = %d, want 100250", balance.Withdrawn)
	}

	got, _ := env.withdrawals.FindByID(ctx, w.ID)
	if got.Status != types.WithdrawalCompleted || got.CompleteDate == nil {
		t.Errorf("withdrawal = status %q completeDate %v, want completed with date", got.Status, got.CompleteDate)
	}
}

func TestCompleteBeforeDispatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fundCreator(t, env, 125000)

	w, _ := env.withdrawalSvc.Request(ctx, env.creator.ID, 50000, types.MethodPaypal)

	// Callback lands while the request is still pending.
	if err := env.withdrawalSvc.Complete(ctx, w.ID); err != nil {
		t.Fatalf("Complete before dispatch: %v", err)
	}

	got, _ := env.withdrawals.FindByID(ctx, w.ID)
	if got.Status != types.WithdrawalCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
}

func TestFailRestoresBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fundCreator(t, env, 125000)

	w, _ := env.withdrawalSvc.Request(ctx, env.creator.ID, 100000, types.MethodBank)
	env.withdrawalSvc.DispatchPending(ctx)

	if err := env.withdrawalSvc.Fail(ctx, w.ID, "bank account closed"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	balance, _ := env.balances.FindByCreatorID(ctx, env.creator.ID)
	if balance.Available != 125000 || balance.Withdrawn != 0 {
		t.Errorf("balance = available %d withdrawn %d, want 125000/0", balance.Available, balance.Withdrawn)
	}

	got, _ := env.withdrawals.FindByID(ctx, w.ID)
	if got.Status != types.WithdrawalFailed || got.FailureReason == nil || *got.FailureReason != "bank account closed" {
		t.Errorf("withdrawal = status %q reason %v, want failed with reason", got.Status, got.FailureReason)
	}

	// The failure is terminal too.
	if err := env.withdrawalSvc.Complete(ctx, w.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Complete after Fail = %v, want ErrInvalidTransition", err)
	}
}

func TestDispatchMovesPendingToProcessing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fundCreator(t, env, 125000)

	w1, _ := env.withdrawalSvc.Request(ctx, env.creator.ID, 10000, types.MethodBank)
	w2, _ := env.withdrawalSvc.Request(ctx, env.creator.ID, 20000, types.MethodBank)

	count, err := env.withdrawalSvc.DispatchPending(ctx)
	if err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if count != 2 {
		t.Errorf("dispatched = %d, want 2", count)
	}

	for _, id := range []string{w1.ID, w2.ID} {
		got, _ := env.withdrawals.FindByID(ctx, id)
		if got.Status != types.WithdrawalProcessing {
			t.Errorf("withdrawal %s status = %q, want processing", id, got.Status)
		}
	}

	// Nothing left to pick up on the next run.
	count, _ = env.withdrawalSvc.DispatchPending(ctx)
	if count != 0 {
		t.Errorf("second dispatch = %d, want 0", count)
	}
}
