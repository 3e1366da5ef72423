package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists bookings.
type Repository interface {
	Create(ctx context.Context, booking Booking) error
	Find(ctx context.Context, id string) (Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed booking repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, booking Booking) error {
	id, err := uuid.Parse(booking.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(booking.UserID)
	if err != nil {
		return err
	}
	showID, err := uuid.Parse(booking.ShowID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO bookings (id, user_id, show_id, seats, amount, status, transaction_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, userID, showID, booking.Seats, booking.Amount, booking.Status, booking.TransactionID, booking.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return Booking{}, ErrBookingNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, user_id, show_id, seats, amount, status, transaction_id, created_at
        FROM bookings WHERE id = $1`, bookingID)
	return scanBooking(row)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, show_id, seats, amount, status, transaction_id, created_at
        FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, booking)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return ErrBookingNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, status, bookingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func scanBooking(row pgx.Row) (Booking, error) {
	var (
		id        uuid.UUID
		userID    uuid.UUID
		showID    uuid.UUID
		createdAt time.Time
		booking   Booking
	)
	err := row.Scan(&id, &userID, &showID, &booking.Seats, &booking.Amount, &booking.Status, &booking.TransactionID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, err
	}
	booking.ID = id.String()
	booking.UserID = userID.String()
	booking.ShowID = showID.String()
	booking.CreatedAt = createdAt.UTC()
	return booking, nil
}
