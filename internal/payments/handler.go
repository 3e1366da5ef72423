package payments

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
)

// Handler exposes payment initiation, status polling, the provider callback
// endpoint and refunds.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a payments handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type initiateRequest struct {
	PhoneNumber string `json:"phone_number"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}

// Initiate starts an STK push payment for the authenticated user.
func (h *Handler) Initiate(c *fiber.Ctx) error {
	var req initiateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)

	result, err := h.service.InitiatePayment(c.UserContext(), InitiateInput{
		UserID:      userID,
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Reference:   req.Reference,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrGateway):
			return fiber.NewError(http.StatusBadGateway, "payment provider unavailable")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"payment_id":          result.PaymentID,
		"merchant_request_id": result.MerchantRequestID,
		"checkout_request_id": result.CheckoutRequestID,
		"customer_message":    result.CustomerMessage,
	})
}

// Status reports the current state of a payment by checkout request id.
func (h *Handler) Status(c *fiber.Ctx) error {
	result, err := h.service.CheckPaymentStatus(c.UserContext(), c.Params("checkoutRequestId"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(result)
}

// Callback receives the provider's asynchronous result notification. The
// delivery contract requires a ResultCode 0 acknowledgment no matter what
// happens internally: the provider does not retry once acknowledged, so
// processing failures are logged rather than surfaced.
func (h *Handler) Callback(c *fiber.Ctx) error {
	var envelope CallbackEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		h.logger.Error("mpesa callback: unreadable payload", "error", err)
		return c.Status(http.StatusOK).JSON(fiber.Map{"ResultCode": 0, "ResultDesc": "Callback received"})
	}

	if _, err := h.service.ProcessCallback(c.UserContext(), envelope); err != nil {
		h.logger.Error("mpesa callback processing failed",
			"checkout_request_id", envelope.Body.STKCallback.CheckoutRequestID,
			"error", err)
		return c.Status(http.StatusOK).JSON(fiber.Map{"ResultCode": 0, "ResultDesc": "Callback received"})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"ResultCode": 0, "ResultDesc": "Callback processed successfully"})
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason"`
}

// Refund issues an internal-ledger refund for the authenticated user.
func (h *Handler) Refund(c *fiber.Ctx) error {
	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)

	result, err := h.service.InitiateRefund(c.UserContext(), RefundInput{
		UserID:                userID,
		OriginalTransactionID: req.TransactionID,
		Amount:                req.Amount,
		Reason:                req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest), errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":   true,
		"reference": result.Reference,
		"transaction": fiber.Map{
			"id":          result.Transaction.ID,
			"amount":      result.Transaction.Amount,
			"type":        result.Transaction.Kind,
			"status":      result.Transaction.Status,
			"reference":   result.Transaction.Reference,
			"description": result.Transaction.Description,
		},
	})
}
