package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
	"github.com/ticket-pesa/ticket_pesa/internal/notification"
)

// Service bridges asynchronous M-Pesa payments to the wallet ledger: it keeps
// a payment record and its linked wallet transaction moving in lockstep, and
// tolerates lost, duplicated and out-of-order callback delivery.
type Service struct {
	records  Repository
	wallets  ledger.Ledger
	gateway  Gateway
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs the payment reconciliation service.
func NewService(records Repository, wallets ledger.Ledger, gateway Gateway, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{records: records, wallets: wallets, gateway: gateway, notifier: notifier, logger: logger}
}

// InitiateInput captures a payment request from an authenticated caller.
type InitiateInput struct {
	UserID      string
	PhoneNumber string
	Amount      int64
	Reference   string
}

// InitiateResult returns the provider correlation ids alongside our record id
// so the caller can poll CheckPaymentStatus.
type InitiateResult struct {
	PaymentID         string
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
}

// InitiatePayment normalizes the phone number, asks the provider to push the
// payment and persists a pending record carrying the provider's correlation
// identifiers. The wallet is not touched until the callback confirms payment.
func (s *Service) InitiatePayment(ctx context.Context, input InitiateInput) (InitiateResult, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	reference := strings.TrimSpace(input.Reference)
	if phone == "" || reference == "" || input.Amount <= 0 {
		return InitiateResult{}, ErrInvalidRequest
	}
	phone = NormalizePhone(phone)

	ack, err := s.gateway.STKPush(ctx, STKPushInput{
		PhoneNumber: phone,
		Amount:      input.Amount,
		Reference:   reference,
		Description: "Payment for " + reference,
	})
	if err != nil {
		return InitiateResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	now := time.Now().UTC()
	record := Record{
		ID:                uuid.NewString(),
		UserID:            input.UserID,
		PhoneNumber:       phone,
		Amount:            input.Amount,
		Reference:         reference,
		MerchantRequestID: ack.MerchantRequestID,
		CheckoutRequestID: ack.CheckoutRequestID,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return InitiateResult{}, err
	}

	return InitiateResult{
		PaymentID:         record.ID,
		MerchantRequestID: ack.MerchantRequestID,
		CheckoutRequestID: ack.CheckoutRequestID,
		CustomerMessage:   ack.CustomerMessage,
	}, nil
}

// StatusResult is the poll answer for one payment.
type StatusResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CheckPaymentStatus reports the current state of a payment by provider
// correlation id. A pure read: callbacks, not polls, advance the state.
func (s *Service) CheckPaymentStatus(ctx context.Context, checkoutRequestID string) (StatusResult, error) {
	record, err := s.records.FindByCheckoutID(ctx, checkoutRequestID)
	if err != nil {
		if err == ErrPaymentNotFound {
			return StatusResult{Status: StatusFailed, Message: "Payment not found"}, nil
		}
		return StatusResult{}, err
	}

	message := record.ResultDesc
	if message == "" {
		message = "Payment is being processed"
	}
	status := record.Status
	if status != StatusCompleted && status != StatusFailed {
		status = StatusPending
	}
	return StatusResult{Status: status, Message: message}, nil
}

// ProcessCallback resolves a payment record from a provider callback. On
// success it credits the wallet through the ledger exactly once: a record
// that is already terminal is returned untouched, so duplicate callback
// delivery cannot double-apply.
func (s *Service) ProcessCallback(ctx context.Context, envelope CallbackEnvelope) (Record, error) {
	if err := envelope.Validate(); err != nil {
		return Record{}, err
	}
	cb := envelope.Body.STKCallback

	record, err := s.records.FindByCheckoutID(ctx, cb.CheckoutRequestID)
	if err != nil {
		return Record{}, err
	}
	if record.Terminal() {
		return record, nil
	}

	record.ResultCode = cb.ResultCode
	record.ResultDesc = cb.ResultDesc

	if cb.ResultCode == 0 {
		receipt, _ := cb.ReceiptNumber()

		tx, err := s.wallets.CreateTransaction(ctx, record.UserID, record.Amount,
			ledger.KindDeposit, record.Reference, "M-Pesa payment: "+receipt)
		if err != nil {
			return Record{}, err
		}
		if _, err := s.wallets.UpdateTransactionStatus(ctx, record.UserID, tx.ID, ledger.StatusCompleted); err != nil {
			return Record{}, err
		}

		record.ReceiptNumber = receipt
		record.Status = StatusCompleted
		record.TransactionID = tx.ID

		if s.notifier != nil {
			_ = s.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindPaymentReceived,
				Destination: record.UserID,
				Body:        fmt.Sprintf("Wallet credited with %d (receipt %s)", record.Amount, receipt),
			})
		}
	} else {
		record.Status = StatusFailed
	}

	if err := s.records.Update(ctx, record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// RefundInput captures a refund request against a previously settled payment.
type RefundInput struct {
	UserID                string
	OriginalTransactionID string
	Amount                int64
	Reason                string
}

// RefundResult returns the generated reference and the settled refund
// transaction.
type RefundResult struct {
	Reference   string
	Transaction ledger.Transaction
}

// InitiateRefund credits the wallet with a refund transaction and settles it
// synchronously. Refunds never call the provider's reversal API; they are
// internal ledger credits only.
func (s *Service) InitiateRefund(ctx context.Context, input RefundInput) (RefundResult, error) {
	if input.OriginalTransactionID == "" || strings.TrimSpace(input.Reason) == "" || input.Amount <= 0 {
		return RefundResult{}, ErrInvalidRequest
	}

	reference := fmt.Sprintf("REF-%d", time.Now().UnixMilli())

	tx, err := s.wallets.CreateTransaction(ctx, input.UserID, input.Amount,
		ledger.KindRefund, reference, input.Reason)
	if err != nil {
		return RefundResult{}, err
	}
	settled, err := s.wallets.UpdateTransactionStatus(ctx, input.UserID, tx.ID, ledger.StatusCompleted)
	if err != nil {
		return RefundResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindRefundIssued,
			Destination: input.UserID,
			Body:        fmt.Sprintf("Refund of %d issued: %s", input.Amount, input.Reason),
		})
	}

	return RefundResult{Reference: reference, Transaction: settled}, nil
}

// NormalizePhone converts a Kenyan subscriber number to canonical 254...
// form: a leading 0 or +254 is stripped and the 254 country code ensured.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	if strings.HasPrefix(p, "+254") {
		p = p[len("+254"):]
	} else if strings.HasPrefix(p, "0") {
		p = p[1:]
	}
	if !strings.HasPrefix(p, "254") {
		p = "254" + p
	}
	return p
}
