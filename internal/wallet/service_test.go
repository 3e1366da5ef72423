package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
)

func TestServiceGetCreatesWalletLazily(t *testing.T) {
	svc := NewService(ledger.NewInMemory())
	ctx := context.Background()
	userID := uuid.NewString()

	w, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if w.UserID != userID || w.Balance != 0 || len(w.Transactions) != 0 {
		t.Fatalf("unexpected fresh wallet: %+v", w)
	}

	again, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.ID != w.ID {
		t.Fatalf("expected same wallet, got %s and %s", w.ID, again.ID)
	}
}

func TestServiceDepositLifecycle(t *testing.T) {
	svc := NewService(ledger.NewInMemory())
	ctx := context.Background()
	userID := uuid.NewString()

	tx, err := svc.CreateTransaction(ctx, userID, 1_000, ledger.KindDeposit, "TKT-9", "ticket top-up")
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if tx.Status != ledger.StatusPending {
		t.Fatalf("expected pending, got %s", tx.Status)
	}

	settled, err := svc.UpdateTransactionStatus(ctx, userID, tx.ID, ledger.StatusCompleted)
	if err != nil {
		t.Fatalf("complete transaction: %v", err)
	}
	if settled.Status != ledger.StatusCompleted {
		t.Fatalf("expected completed, got %s", settled.Status)
	}

	w, _ := svc.Get(ctx, userID)
	if w.Balance != 1_000 {
		t.Fatalf("expected balance 1000, got %d", w.Balance)
	}
}

func TestServiceProcessRefund(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led)
	ctx := context.Background()
	userID := uuid.NewString()

	tx, err := svc.ProcessRefund(ctx, userID, 200, "REF-1", "booking cancelled")
	if err != nil {
		t.Fatalf("process refund: %v", err)
	}
	if tx.Kind != ledger.KindRefund || tx.Status != ledger.StatusCompleted {
		t.Fatalf("unexpected refund transaction: %+v", tx)
	}

	w, _ := svc.Get(ctx, userID)
	if w.Balance != 200 {
		t.Fatalf("expected balance 200, got %d", w.Balance)
	}
}

func TestServiceRejectsBadInput(t *testing.T) {
	svc := NewService(ledger.NewInMemory())
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.CreateTransaction(ctx, userID, -5, ledger.KindDeposit, "", ""); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, userID, 100, "bonus", "", ""); !errors.Is(err, ledger.ErrInvalidKind) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}
