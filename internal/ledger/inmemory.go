package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryLedger struct {
	mu      sync.Mutex
	wallets map[string]*Wallet
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests.
func NewInMemory() Ledger {
	return &inMemoryLedger{wallets: make(map[string]*Wallet)}
}

func (l *inMemoryLedger) GetOrCreateWallet(_ context.Context, userID string) (Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOrCreateLocked(userID), nil
}

func (l *inMemoryLedger) getOrCreateLocked(userID string) Wallet {
	if w, ok := l.wallets[userID]; ok {
		return snapshot(w)
	}
	now := time.Now().UTC()
	w := &Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.wallets[userID] = w
	return snapshot(w)
}

func (l *inMemoryLedger) Wallet(_ context.Context, userID string) (Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.wallets[userID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return snapshot(w), nil
}

func (l *inMemoryLedger) CreateTransaction(_ context.Context, userID string, amount int64, kind, reference, description string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if !ValidKind(kind) {
		return Transaction{}, ErrInvalidKind
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.getOrCreateLocked(userID)
	w := l.wallets[userID]

	now := time.Now().UTC()
	tx := Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Status:      StatusPending,
		Reference:   reference,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.Transactions = append(w.Transactions, tx)
	w.UpdatedAt = now
	return tx, nil
}

func (l *inMemoryLedger) UpdateTransactionStatus(_ context.Context, userID, transactionID, status string) (Transaction, error) {
	if !ValidStatus(status) {
		return Transaction{}, ErrInvalidStatus
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.wallets[userID]
	if !ok {
		return Transaction{}, ErrWalletNotFound
	}

	var tx *Transaction
	for i := range w.Transactions {
		if w.Transactions[i].ID == transactionID {
			tx = &w.Transactions[i]
			break
		}
	}
	if tx == nil {
		return Transaction{}, ErrTransactionNotFound
	}

	// Terminal statuses are final: re-entering completed (or any attempt to
	// move a settled transaction) returns the stored row untouched.
	if terminal(tx.Status) || tx.Status == status {
		return *tx, nil
	}

	if status == StatusCompleted {
		if credits(tx.Kind) {
			w.Balance += tx.Amount
		} else {
			if tx.Amount > w.Balance {
				return Transaction{}, ErrInsufficientFunds
			}
			w.Balance -= tx.Amount
		}
	}

	now := time.Now().UTC()
	tx.Status = status
	tx.UpdatedAt = now
	w.UpdatedAt = now
	return *tx, nil
}

func snapshot(w *Wallet) Wallet {
	out := *w
	out.Transactions = make([]Transaction, len(w.Transactions))
	copy(out.Transactions, w.Transactions)
	return out
}
