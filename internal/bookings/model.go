// Package bookings sells seats for shows, charging wallets through the
// ledger and returning seats on cancellation.
package bookings

import (
	"errors"
	"time"
)

var (
	// ErrBookingNotFound indicates the lookup matched no booking.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrAlreadyCancelled rejects a second cancellation of the same booking.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrInvalidInput flags rejected booking payloads.
	ErrInvalidInput = errors.New("invalid input")
)

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking records paid seats for a show. Amount is in whole shillings and
// TransactionID links the wallet withdrawal that paid for it.
type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ShowID        string    `json:"show_id"`
	Seats         []string  `json:"seats"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}
