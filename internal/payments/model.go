package payments

import (
	"errors"
	"time"
)

var (
	// ErrGateway wraps failures talking to the external payment provider.
	ErrGateway = errors.New("payment gateway error")

	// ErrPaymentNotFound indicates no payment record matches the provider
	// correlation id.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrBadCallback rejects malformed provider callback payloads before they
	// reach any business logic.
	ErrBadCallback = errors.New("malformed callback payload")

	// ErrInvalidRequest rejects payment or refund requests with missing
	// fields or a non-positive amount.
	ErrInvalidRequest = errors.New("phone number, amount and reference are required")
)

const (
	// StatusInitiated marks a record before the provider acknowledged the
	// push request. Records are persisted after the ack, so it appears only
	// transiently.
	StatusInitiated = "initiated"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record tracks one STK push request from initiation through its callback
// resolution. CheckoutRequestID correlates the asynchronous provider callback
// back to this record; TransactionID points at the wallet deposit created on
// success and is set exactly once.
type Record struct {
	ID                string
	UserID            string
	PhoneNumber       string
	Amount            int64
	Reference         string
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
	Status            string
	TransactionID     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Terminal reports whether the record reached a final status. Terminal
// records are immutable; a duplicate callback for one is acknowledged without
// touching the ledger.
func (r Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
