package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestInMemoryLedger_GetOrCreateWalletIsStable(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := l.GetOrCreateWallet(ctx, userID)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if first.Balance != 0 {
		t.Fatalf("expected zero balance, got %d", first.Balance)
	}

	second, err := l.GetOrCreateWallet(ctx, userID)
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected one wallet per user, got %s and %s", first.ID, second.ID)
	}
}

func TestInMemoryLedger_BalanceFollowsCompletedTransactions(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	complete := func(amount int64, kind string) {
		t.Helper()
		tx, err := l.CreateTransaction(ctx, userID, amount, kind, "", "")
		if err != nil {
			t.Fatalf("create %s: %v", kind, err)
		}
		if tx.Status != StatusPending {
			t.Fatalf("new transaction should be pending, got %s", tx.Status)
		}
		if _, err := l.UpdateTransactionStatus(ctx, userID, tx.ID, StatusCompleted); err != nil {
			t.Fatalf("complete %s: %v", kind, err)
		}
	}

	complete(500, KindDeposit)
	complete(300, KindDeposit)
	complete(200, KindRefund)
	complete(400, KindWithdrawal)

	w, err := l.Wallet(ctx, userID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.Balance != 600 {
		t.Fatalf("expected balance 600, got %d", w.Balance)
	}
	if len(w.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(w.Transactions))
	}
}

func TestInMemoryLedger_PendingAndFailedDoNotTouchBalance(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	tx, err := l.CreateTransaction(ctx, userID, 1_000, KindDeposit, "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.UpdateTransactionStatus(ctx, userID, tx.ID, StatusFailed); err != nil {
		t.Fatalf("fail transaction: %v", err)
	}

	w, _ := l.Wallet(ctx, userID)
	if w.Balance != 0 {
		t.Fatalf("failed deposit must not credit, balance=%d", w.Balance)
	}
}

func TestInMemoryLedger_CompletionIsIdempotent(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	tx, err := l.CreateTransaction(ctx, userID, 500, KindDeposit, "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.UpdateTransactionStatus(ctx, userID, tx.ID, StatusCompleted); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	again, err := l.UpdateTransactionStatus(ctx, userID, tx.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("repeat completion: %v", err)
	}
	if again.Status != StatusCompleted {
		t.Fatalf("unexpected status %s", again.Status)
	}

	w, _ := l.Wallet(ctx, userID)
	if w.Balance != 500 {
		t.Fatalf("repeat completion double-applied, balance=%d", w.Balance)
	}

	// A settled transaction cannot be flipped to failed either.
	if _, err := l.UpdateTransactionStatus(ctx, userID, tx.ID, StatusFailed); err != nil {
		t.Fatalf("transition on terminal transaction: %v", err)
	}
	w, _ = l.Wallet(ctx, userID)
	if w.Balance != 500 || w.Transactions[0].Status != StatusCompleted {
		t.Fatalf("terminal status must be final: %+v", w.Transactions[0])
	}
}

func TestInMemoryLedger_InsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	SeedBalance(l, userID, 300)

	tx, err := l.CreateTransaction(ctx, userID, 500, KindWithdrawal, "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.UpdateTransactionStatus(ctx, userID, tx.ID, StatusCompleted); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	w, _ := l.Wallet(ctx, userID)
	if w.Balance != 300 {
		t.Fatalf("balance changed after failed withdrawal: %d", w.Balance)
	}
	if w.Transactions[0].Status != StatusPending {
		t.Fatalf("transaction should remain pending, got %s", w.Transactions[0].Status)
	}
}

func TestInMemoryLedger_Validation(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := l.CreateTransaction(ctx, userID, 0, KindDeposit, "", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := l.CreateTransaction(ctx, userID, 100, "transfer", "", ""); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
	if _, err := l.UpdateTransactionStatus(ctx, userID, "whatever", "settled"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := l.UpdateTransactionStatus(ctx, uuid.NewString(), "whatever", StatusCompleted); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}

	tx, _ := l.CreateTransaction(ctx, userID, 100, KindDeposit, "", "")
	_ = tx
	if _, err := l.UpdateTransactionStatus(ctx, userID, uuid.NewString(), StatusCompleted); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected transaction not found, got %v", err)
	}
}

func TestInMemoryLedger_ConcurrentCompletions(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	userID := uuid.NewString()

	const workers = 10
	const amount = int64(500)

	ids := make([]string, workers)
	for i := range ids {
		tx, err := l.CreateTransaction(ctx, userID, amount, KindDeposit, fmt.Sprintf("ref-%d", i), "")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids[i] = tx.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := l.UpdateTransactionStatus(ctx, userID, id, StatusCompleted); err != nil {
				t.Errorf("complete %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	w, _ := l.Wallet(ctx, userID)
	if w.Balance != amount*workers {
		t.Fatalf("lost update under concurrency, balance=%d", w.Balance)
	}
}
