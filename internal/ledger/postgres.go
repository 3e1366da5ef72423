package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists wallets and their transactions in PostgreSQL. The
// wallet row is the unit of atomicity: every status transition locks it with
// SELECT ... FOR UPDATE so concurrent completions on one wallet serialize.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// GetOrCreateWallet ensures a wallet row exists for the user and returns it.
// The unique constraint on user_id makes concurrent first accesses converge
// on a single row.
func (l *PostgresLedger) GetOrCreateWallet(ctx context.Context, userID string) (Wallet, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, err
	}
	now := time.Now().UTC()
	if _, err := l.db.Exec(ctx, `INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
        VALUES ($1, $2, 0, $3, $3) ON CONFLICT (user_id) DO NOTHING`, uuid.New(), uid, now); err != nil {
		return Wallet{}, err
	}
	return l.Wallet(ctx, userID)
}

// Wallet loads the wallet row and its transactions in insertion order.
func (l *PostgresLedger) Wallet(ctx context.Context, userID string) (Wallet, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, err
	}

	row := l.db.QueryRow(ctx, `SELECT id, balance, created_at, updated_at FROM wallets WHERE user_id = $1`, uid)
	var w Wallet
	var walletID uuid.UUID
	if err := row.Scan(&walletID, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, err
	}
	w.ID = walletID.String()
	w.UserID = userID

	rows, err := l.db.Query(ctx, `SELECT id, amount, kind, status, reference, description, created_at, updated_at
        FROM wallet_transactions WHERE wallet_id = $1 ORDER BY created_at, id`, walletID)
	if err != nil {
		return Wallet{}, err
	}
	defer rows.Close()

	for rows.Next() {
		tx, err := scanTransaction(rows, userID)
		if err != nil {
			return Wallet{}, err
		}
		w.Transactions = append(w.Transactions, tx)
	}
	return w, rows.Err()
}

// CreateTransaction appends a pending transaction to the user's wallet,
// creating the wallet lazily on first use.
func (l *PostgresLedger) CreateTransaction(ctx context.Context, userID string, amount int64, kind, reference, description string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if !ValidKind(kind) {
		return Transaction{}, ErrInvalidKind
	}

	w, err := l.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return Transaction{}, err
	}

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

	_, err = l.db.Exec(ctx, `INSERT INTO wallet_transactions
        (id, wallet_id, user_id, amount, kind, status, reference, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.MustParse(tx.ID), uuid.MustParse(w.ID), uuid.MustParse(userID),
		tx.Amount, tx.Kind, tx.Status, nullable(tx.Reference), nullable(tx.Description), tx.CreatedAt, tx.UpdatedAt)
	if err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// UpdateTransactionStatus transitions a transaction under the wallet row lock
// and applies the balance effect exactly once on completion.
func (l *PostgresLedger) UpdateTransactionStatus(ctx context.Context, userID, transactionID, status string) (Transaction, error) {
	if !ValidStatus(status) {
		return Transaction{}, ErrInvalidStatus
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Transaction{}, err
	}
	txID, err := uuid.Parse(transactionID)
	if err != nil {
		return Transaction{}, ErrTransactionNotFound
	}

	dbTx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer dbTx.Rollback(ctx) // nolint:errcheck

	var walletID uuid.UUID
	var balance int64
	if err := dbTx.QueryRow(ctx, `SELECT id, balance FROM wallets WHERE user_id = $1 FOR UPDATE`, uid).Scan(&walletID, &balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrWalletNotFound
		}
		return Transaction{}, err
	}

	row := dbTx.QueryRow(ctx, `SELECT id, amount, kind, status, reference, description, created_at, updated_at
        FROM wallet_transactions WHERE id = $1 AND wallet_id = $2`, txID, walletID)
	tx, err := scanTransaction(row, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}

	// Terminal statuses are final; repeating a transition is a no-op so the
	// balance can never be applied twice for one transaction.
	if terminal(tx.Status) || tx.Status == status {
		return tx, nil
	}

	now := time.Now().UTC()
	if status == StatusCompleted {
		if credits(tx.Kind) {
			balance += tx.Amount
		} else {
			if tx.Amount > balance {
				return Transaction{}, ErrInsufficientFunds
			}
			balance -= tx.Amount
		}
		if _, err := dbTx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`, balance, now, walletID); err != nil {
			return Transaction{}, err
		}
	}

	if _, err := dbTx.Exec(ctx, `UPDATE wallet_transactions SET status = $1, updated_at = $2 WHERE id = $3`, status, now, txID); err != nil {
		return Transaction{}, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	tx.Status = status
	tx.UpdatedAt = now
	return tx, nil
}

func scanTransaction(row pgx.Row, userID string) (Transaction, error) {
	var tx Transaction
	var id uuid.UUID
	var reference, description sql.NullString
	if err := row.Scan(&id, &tx.Amount, &tx.Kind, &tx.Status, &reference, &description, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	tx.ID = id.String()
	tx.UserID = userID
	tx.Reference = reference.String
	tx.Description = description.String
	return tx, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
