package payments

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists payment records. Records are independent of each other;
// no cross-record locking is required.
type Repository interface {
	Create(ctx context.Context, record Record) error
	FindByCheckoutID(ctx context.Context, checkoutRequestID string) (Record, error)
	Update(ctx context.Context, record Record) error
	// ExpirePending marks pending records created before the cutoff as failed
	// and returns how many were touched.
	ExpirePending(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

// PostgresRepository stores payment records in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a payment record.
func (r *PostgresRepository) Create(ctx context.Context, record Record) error {
	recordID, err := uuid.Parse(record.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(record.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO mpesa_payments
        (id, user_id, phone_number, amount, reference, merchant_request_id, checkout_request_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		recordID, userID, record.PhoneNumber, record.Amount, record.Reference,
		record.MerchantRequestID, record.CheckoutRequestID, record.Status,
		record.CreatedAt.UTC(), record.UpdatedAt.UTC())
	return err
}

// FindByCheckoutID fetches the record matching the provider correlation id.
func (r *PostgresRepository) FindByCheckoutID(ctx context.Context, checkoutRequestID string) (Record, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, phone_number, amount, reference, merchant_request_id,
        checkout_request_id, result_code, result_desc, receipt_number, status, transaction_id, created_at, updated_at
        FROM mpesa_payments WHERE checkout_request_id = $1`, checkoutRequestID)

	var rec Record
	var id, userID uuid.UUID
	var resultCode sql.NullInt32
	var resultDesc, receipt sql.NullString
	var txID *uuid.UUID
	if err := row.Scan(&id, &userID, &rec.PhoneNumber, &rec.Amount, &rec.Reference, &rec.MerchantRequestID,
		&rec.CheckoutRequestID, &resultCode, &resultDesc, &receipt, &rec.Status, &txID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrPaymentNotFound
		}
		return Record{}, err
	}
	rec.ID = id.String()
	rec.UserID = userID.String()
	rec.ResultCode = int(resultCode.Int32)
	rec.ResultDesc = resultDesc.String
	rec.ReceiptNumber = receipt.String
	if txID != nil {
		rec.TransactionID = txID.String()
	}
	return rec, nil
}

// Update writes the mutable callback-resolution fields of a record.
func (r *PostgresRepository) Update(ctx context.Context, record Record) error {
	recordID, err := uuid.Parse(record.ID)
	if err != nil {
		return err
	}
	var txID any
	if record.TransactionID != "" {
		parsed, err := uuid.Parse(record.TransactionID)
		if err != nil {
			return err
		}
		txID = parsed
	}
	cmd, err := r.db.Exec(ctx, `UPDATE mpesa_payments
        SET result_code = $1, result_desc = $2, receipt_number = $3, status = $4, transaction_id = $5, updated_at = $6
        WHERE id = $7`,
		record.ResultCode, nullString(record.ResultDesc), nullString(record.ReceiptNumber),
		record.Status, txID, time.Now().UTC(), recordID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ExpirePending fails pending records older than the cutoff in one statement.
func (r *PostgresRepository) ExpirePending(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE mpesa_payments
        SET status = $1, result_desc = $2, updated_at = $3
        WHERE status = $4 AND created_at < $5`,
		StatusFailed, reason, time.Now().UTC(), StatusPending, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
