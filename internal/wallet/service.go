package wallet

import (
	"context"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
)

// Service exposes wallet operations to the HTTP layer and to other services.
// All state lives in the ledger; this layer only shapes the calls.
type Service struct {
	ledger ledger.Ledger
}

// NewService builds a wallet service over the given ledger backend.
func NewService(l ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// Get returns the user's wallet with its transaction history, creating an
// empty wallet on first access.
func (s *Service) Get(ctx context.Context, userID string) (ledger.Wallet, error) {
	return s.ledger.GetOrCreateWallet(ctx, userID)
}

// CreateTransaction appends a pending transaction to the user's wallet.
func (s *Service) CreateTransaction(ctx context.Context, userID string, amount int64, kind, reference, description string) (ledger.Transaction, error) {
	return s.ledger.CreateTransaction(ctx, userID, amount, kind, reference, description)
}

// UpdateTransactionStatus transitions a transaction, applying its balance
// effect when it completes.
func (s *Service) UpdateTransactionStatus(ctx context.Context, userID, transactionID, status string) (ledger.Transaction, error) {
	return s.ledger.UpdateTransactionStatus(ctx, userID, transactionID, status)
}

// ProcessRefund credits the wallet with an immediately settled refund
// transaction carrying the original reference.
func (s *Service) ProcessRefund(ctx context.Context, userID string, amount int64, reference, description string) (ledger.Transaction, error) {
	tx, err := s.ledger.CreateTransaction(ctx, userID, amount, ledger.KindRefund, reference, description)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return s.ledger.UpdateTransactionStatus(ctx, userID, tx.ID, ledger.StatusCompleted)
}
