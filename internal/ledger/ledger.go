package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInsufficientFunds occurs when completing a withdrawal whose amount
	// exceeds the wallet balance at the moment of transition.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound indicates no wallet exists for the given user.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTransactionNotFound indicates the transaction id does not belong to
	// the user's wallet.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidAmount rejects non-positive transaction amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidKind rejects unrecognized transaction kinds.
	ErrInvalidKind = errors.New("invalid transaction kind")

	// ErrInvalidStatus rejects unrecognized transaction statuses.
	ErrInvalidStatus = errors.New("invalid transaction status")
)

const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindRefund     = "refund"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Transaction is a single wallet ledger entry. It is created pending and
// moves to exactly one terminal status; the balance is applied only on the
// transition into completed.
type Transaction struct {
	ID          string
	UserID      string
	Amount      int64
	Kind        string
	Status      string
	Reference   string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Wallet holds a user's balance together with the ordered transaction
// history that produced it. Amounts are whole shillings.
type Wallet struct {
	ID           string
	UserID       string
	Balance      int64
	Transactions []Transaction
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ledger defines the contract implemented by wallet ledger backends.
//
// Balance mutation happens in exactly one place: the pending->completed
// transition inside UpdateTransactionStatus. Transitions on a transaction
// already in a terminal status are no-ops that return the stored transaction
// unchanged, so repeating a completion can never double-apply the amount.
type Ledger interface {
	// GetOrCreateWallet returns the user's wallet, creating an empty one on
	// first access. Concurrent calls for the same user yield a single wallet.
	GetOrCreateWallet(ctx context.Context, userID string) (Wallet, error)

	// Wallet returns the user's wallet with its full transaction history, or
	// ErrWalletNotFound when none exists yet.
	Wallet(ctx context.Context, userID string) (Wallet, error)

	// CreateTransaction appends a pending transaction to the user's wallet.
	CreateTransaction(ctx context.Context, userID string, amount int64, kind, reference, description string) (Transaction, error)

	// UpdateTransactionStatus transitions a transaction and, when the new
	// status is completed, applies its balance effect atomically with the
	// status write.
	UpdateTransactionStatus(ctx context.Context, userID, transactionID, status string) (Transaction, error)
}

// ValidKind reports whether kind names a recognized transaction kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindDeposit, KindWithdrawal, KindRefund:
		return true
	}
	return false
}

// ValidStatus reports whether status names a recognized lifecycle status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// credits reports whether a completed transaction of this kind increases the
// balance; withdrawals decrease it.
func credits(kind string) bool {
	return kind == KindDeposit || kind == KindRefund
}
