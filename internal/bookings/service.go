package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
	"github.com/ticket-pesa/ticket_pesa/internal/movies"
	"github.com/ticket-pesa/ticket_pesa/internal/notification"
	"github.com/ticket-pesa/ticket_pesa/internal/payments"
)

// Service books seats, settling payment from the user's wallet. Seats are
// reserved before the wallet is charged; a failed charge releases them.
type Service struct {
	repo     Repository
	catalog  *movies.Service
	wallets  ledger.Ledger
	refunds  *payments.Service
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService creates a booking service.
func NewService(repo Repository, catalog *movies.Service, wallets ledger.Ledger, refunds *payments.Service, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, wallets: wallets, refunds: refunds, notifier: notifier, logger: logger}
}

// CreateInput carries a booking request.
type CreateInput struct {
	UserID string
	ShowID string
	Seats  []string
}

// Create reserves the seats, charges the wallet and records the booking.
func (s *Service) Create(ctx context.Context, input CreateInput) (Booking, error) {
	if input.UserID == "" || input.ShowID == "" || len(input.Seats) == 0 {
		return Booking{}, fmt.Errorf("%w: user, show and seats are required", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(input.Seats))
	for _, seat := range input.Seats {
		if seat == "" || seen[seat] {
			return Booking{}, fmt.Errorf("%w: seats must be unique and non-empty", ErrInvalidInput)
		}
		seen[seat] = true
	}

	show, err := s.catalog.GetShow(ctx, input.ShowID)
	if err != nil {
		return Booking{}, err
	}
	if !show.Active {
		return Booking{}, fmt.Errorf("%w: show is not open for booking", ErrInvalidInput)
	}

	amount := show.Price * int64(len(input.Seats))
	if err := s.catalog.ReserveSeats(ctx, input.ShowID, len(input.Seats)); err != nil {
		return Booking{}, err
	}

	bookingID := uuid.New().String()
	description := fmt.Sprintf("Booking %s: %d seat(s) at %s", bookingID, len(input.Seats), show.Theater)
	tx, err := s.wallets.CreateTransaction(ctx, input.UserID, amount, ledger.KindWithdrawal, "BOOK-"+bookingID, description)
	if err != nil {
		s.releaseSeats(ctx, input.ShowID, len(input.Seats))
		return Booking{}, err
	}
	settled, err := s.wallets.UpdateTransactionStatus(ctx, input.UserID, tx.ID, ledger.StatusCompleted)
	if err != nil {
		if _, failErr := s.wallets.UpdateTransactionStatus(ctx, input.UserID, tx.ID, ledger.StatusFailed); failErr != nil {
			s.logger.Error("failed to mark booking charge failed", "transaction_id", tx.ID, "error", failErr)
		}
		s.releaseSeats(ctx, input.ShowID, len(input.Seats))
		return Booking{}, err
	}

	booking := Booking{
		ID:            bookingID,
		UserID:        input.UserID,
		ShowID:        input.ShowID,
		Seats:         input.Seats,
		Amount:        amount,
		Status:        StatusConfirmed,
		TransactionID: settled.ID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return Booking{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindBookingConfirmed,
			Destination: input.UserID,
			Body:        fmt.Sprintf("Booking confirmed: %d seat(s) for %d", len(input.Seats), amount),
		})
	}
	s.logger.Info("booking confirmed", "booking_id", bookingID, "show_id", input.ShowID, "amount", amount)
	return booking, nil
}

// Get fetches a booking, scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, bookingID string) (Booking, error) {
	booking, err := s.repo.Find(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if booking.UserID != userID {
		return Booking{}, ErrBookingNotFound
	}
	return booking, nil
}

// ListByUser returns the user's bookings, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Cancel refunds a confirmed booking and returns its seats to the show.
func (s *Service) Cancel(ctx context.Context, userID, bookingID string) (Booking, error) {
	booking, err := s.Get(ctx, userID, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if booking.Status == StatusCancelled {
		return Booking{}, ErrAlreadyCancelled
	}

	if _, err := s.refunds.InitiateRefund(ctx, payments.RefundInput{
		UserID:                userID,
		OriginalTransactionID: booking.TransactionID,
		Amount:                booking.Amount,
		Reason:                "Booking cancelled: " + booking.ID,
	}); err != nil {
		return Booking{}, err
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, StatusCancelled); err != nil {
		return Booking{}, err
	}
	s.releaseSeats(ctx, booking.ShowID, len(booking.Seats))

	booking.Status = StatusCancelled
	s.logger.Info("booking cancelled", "booking_id", booking.ID, "refund", booking.Amount)
	return booking, nil
}

func (s *Service) releaseSeats(ctx context.Context, showID string, count int) {
	if err := s.catalog.ReleaseSeats(ctx, showID, count); err != nil {
		s.logger.Error("failed to release seats", "show_id", showID, "count", count, "error", err)
	}
}
