package payments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
	"github.com/ticket-pesa/ticket_pesa/internal/logging"
	"github.com/ticket-pesa/ticket_pesa/internal/notification"
)

type testNotifier struct {
	messages []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func newTestService(gateway Gateway) (*Service, ledger.Ledger, *testNotifier) {
	led := ledger.NewInMemory()
	notifier := &testNotifier{}
	svc := NewService(NewMemoryRepository(), led, gateway, notifier, logging.Discard())
	return svc, led, notifier
}

func successCallback(checkoutRequestID, receipt string, amount int64) CallbackEnvelope {
	return CallbackEnvelope{Body: CallbackBody{STKCallback: STKCallback{
		MerchantRequestID: "29115-34620561-1",
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
		CallbackMetadata: &CallbackMetadata{Item: []CallbackItem{
			{Name: "Amount", Value: float64(amount)},
			{Name: "MpesaReceiptNumber", Value: receipt},
			{Name: "PhoneNumber", Value: float64(254712345678)},
		}},
	}}}
}

func TestInitiatePaymentEndToEnd(t *testing.T) {
	gateway := &StaticGateway{Ack: STKPushAck{CheckoutRequestID: "ws_1", MerchantRequestID: "m_1"}}
	svc, led, notifier := newTestService(gateway)
	ctx := context.Background()
	userID := uuid.NewString()

	res, err := svc.InitiatePayment(ctx, InitiateInput{
		UserID:      userID,
		PhoneNumber: "0712345678",
		Amount:      500,
		Reference:   "TKT-1",
	})
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}
	if res.CheckoutRequestID != "ws_1" {
		t.Fatalf("unexpected checkout request id: %s", res.CheckoutRequestID)
	}
	if len(gateway.Requests) != 1 || gateway.Requests[0].PhoneNumber != "254712345678" {
		t.Fatalf("phone not normalized for the gateway: %+v", gateway.Requests)
	}

	// Pending until the callback arrives; wallet untouched.
	status, err := svc.CheckPaymentStatus(ctx, "ws_1")
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if status.Status != StatusPending || status.Message != "Payment is being processed" {
		t.Fatalf("unexpected pending status: %+v", status)
	}

	record, err := svc.ProcessCallback(ctx, successCallback("ws_1", "QAX123", 500))
	if err != nil {
		t.Fatalf("process callback: %v", err)
	}
	if record.Status != StatusCompleted || record.ReceiptNumber != "QAX123" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.TransactionID == "" {
		t.Fatal("record not linked to a wallet transaction")
	}

	w, err := led.Wallet(ctx, userID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.Balance != 500 {
		t.Fatalf("expected balance 500, got %d", w.Balance)
	}
	if len(w.Transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(w.Transactions))
	}
	tx := w.Transactions[0]
	if tx.Kind != ledger.KindDeposit || tx.Status != ledger.StatusCompleted {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.ID != record.TransactionID {
		t.Fatalf("linked transaction mismatch: %s vs %s", tx.ID, record.TransactionID)
	}
	if tx.Reference != "TKT-1" || !strings.Contains(tx.Description, "QAX123") {
		t.Fatalf("transaction should carry reference and receipt: %+v", tx)
	}

	if len(notifier.messages) != 1 || notifier.messages[0].Kind != notification.KindPaymentReceived {
		t.Fatalf("expected payment notification, got %+v", notifier.messages)
	}

	status, _ = svc.CheckPaymentStatus(ctx, "ws_1")
	if status.Status != StatusCompleted {
		t.Fatalf("status should be completed, got %+v", status)
	}
}

func TestProcessCallbackDuplicateDeliveryCreditsOnce(t *testing.T) {
	gateway := &StaticGateway{Ack: STKPushAck{CheckoutRequestID: "ws_dup"}}
	svc, led, _ := newTestService(gateway)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.InitiatePayment(ctx, InitiateInput{UserID: userID, PhoneNumber: "0712345678", Amount: 750, Reference: "TKT-2"}); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	first, err := svc.ProcessCallback(ctx, successCallback("ws_dup", "QBY456", 750))
	if err != nil {
		t.Fatalf("first callback: %v", err)
	}
	second, err := svc.ProcessCallback(ctx, successCallback("ws_dup", "QBY456", 750))
	if err != nil {
		t.Fatalf("duplicate callback: %v", err)
	}
	if second.TransactionID != first.TransactionID {
		t.Fatalf("duplicate callback created a second transaction: %s vs %s", second.TransactionID, first.TransactionID)
	}

	w, _ := led.Wallet(ctx, userID)
	if w.Balance != 750 {
		t.Fatalf("duplicate callback double-credited, balance=%d", w.Balance)
	}
	if len(w.Transactions) != 1 {
		t.Fatalf("expected a single deposit, got %d", len(w.Transactions))
	}
}

func TestProcessCallbackFailureCreatesNoTransaction(t *testing.T) {
	gateway := &StaticGateway{Ack: STKPushAck{CheckoutRequestID: "ws_fail"}}
	svc, led, _ := newTestService(gateway)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.InitiatePayment(ctx, InitiateInput{UserID: userID, PhoneNumber: "0712345678", Amount: 300, Reference: "TKT-3"}); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	record, err := svc.ProcessCallback(ctx, CallbackEnvelope{Body: CallbackBody{STKCallback: STKCallback{
		CheckoutRequestID: "ws_fail",
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	}}})
	if err != nil {
		t.Fatalf("process failure callback: %v", err)
	}
	if record.Status != StatusFailed || record.TransactionID != "" {
		t.Fatalf("unexpected record after failure: %+v", record)
	}

	w, err := led.Wallet(ctx, userID)
	if err == nil && (w.Balance != 0 || len(w.Transactions) != 0) {
		t.Fatalf("failed payment must not touch the wallet: %+v", w)
	}

	status, _ := svc.CheckPaymentStatus(ctx, "ws_fail")
	if status.Status != StatusFailed || status.Message != "Request cancelled by user" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestProcessCallbackUnknownCorrelationID(t *testing.T) {
	svc, _, _ := newTestService(&StaticGateway{})

	if _, err := svc.ProcessCallback(context.Background(), successCallback("ws_missing", "QZZ999", 100)); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected payment not found, got %v", err)
	}
}

func TestCheckPaymentStatusUnknown(t *testing.T) {
	svc, _, _ := newTestService(&StaticGateway{})

	status, err := svc.CheckPaymentStatus(context.Background(), "ws_unknown")
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if status.Status != StatusFailed || status.Message != "Payment not found" {
		t.Fatalf("unexpected status for unknown payment: %+v", status)
	}
}

func TestInitiatePaymentValidation(t *testing.T) {
	svc, _, _ := newTestService(&StaticGateway{})
	ctx := context.Background()

	cases := []InitiateInput{
		{UserID: "u", PhoneNumber: "", Amount: 100, Reference: "TKT"},
		{UserID: "u", PhoneNumber: "0712345678", Amount: 0, Reference: "TKT"},
		{UserID: "u", PhoneNumber: "0712345678", Amount: 100, Reference: ""},
	}
	for _, input := range cases {
		if _, err := svc.InitiatePayment(ctx, input); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("expected invalid request for %+v, got %v", input, err)
		}
	}
}

func TestInitiatePaymentGatewayFailure(t *testing.T) {
	svc, _, _ := newTestService(&StaticGateway{Err: errors.New("connection refused")})

	_, err := svc.InitiatePayment(context.Background(), InitiateInput{
		UserID: "u", PhoneNumber: "0712345678", Amount: 100, Reference: "TKT",
	})
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	// Nothing persisted: status lookups still miss.
	status, _ := svc.CheckPaymentStatus(context.Background(), "anything")
	if status.Message != "Payment not found" {
		t.Fatalf("no record should exist after gateway failure: %+v", status)
	}
}

func TestInitiateRefund(t *testing.T) {
	svc, led, notifier := newTestService(&StaticGateway{})
	ctx := context.Background()
	userID := uuid.NewString()
	ledger.SeedBalance(led, userID, 1_000)

	res, err := svc.InitiateRefund(ctx, RefundInput{
		UserID:                userID,
		OriginalTransactionID: "T1",
		Amount:                200,
		Reason:                "customer request",
	})
	if err != nil {
		t.Fatalf("initiate refund: %v", err)
	}
	if !strings.HasPrefix(res.Reference, "REF-") {
		t.Fatalf("refund reference should start with REF-, got %s", res.Reference)
	}
	if res.Transaction.Kind != ledger.KindRefund || res.Transaction.Status != ledger.StatusCompleted {
		t.Fatalf("unexpected refund transaction: %+v", res.Transaction)
	}

	w, _ := led.Wallet(ctx, userID)
	if w.Balance != 1_200 {
		t.Fatalf("expected balance 1200 after refund, got %d", w.Balance)
	}

	if len(notifier.messages) != 1 || notifier.messages[0].Kind != notification.KindRefundIssued {
		t.Fatalf("expected refund notification, got %+v", notifier.messages)
	}

	if _, err := svc.InitiateRefund(ctx, RefundInput{UserID: userID, Amount: 100, Reason: "x"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request without transaction id, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0712345678":    "254712345678",
		"+254712345678": "254712345678",
		"254712345678":  "254712345678",
		"712345678":     "254712345678",
	}
	for input, want := range cases {
		if got := NormalizePhone(input); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", input, got, want)
		}
	}
}
