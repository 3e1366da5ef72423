package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transactionResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Reference   string `json:"reference,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toTransactionResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Amount:      tx.Amount,
		Type:        tx.Kind,
		Status:      tx.Status,
		Reference:   tx.Reference,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   tx.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Get returns the authenticated user's wallet and transaction history.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	w, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	transactions := make([]transactionResponse, 0, len(w.Transactions))
	for _, tx := range w.Transactions {
		transactions = append(transactions, toTransactionResponse(tx))
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"id":           w.ID,
		"user_id":      w.UserID,
		"balance":      w.Balance,
		"transactions": transactions,
	})
}

type createTransactionRequest struct {
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
}

// CreateTransaction appends a pending transaction to the user's wallet.
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req createTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)

	tx, err := h.service.CreateTransaction(c.UserContext(), userID, req.Amount, req.Type, req.Reference, req.Description)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusCreated).JSON(toTransactionResponse(tx))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateTransactionStatus transitions one of the user's transactions.
func (h *Handler) UpdateTransactionStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)

	tx, err := h.service.UpdateTransactionStatus(c.UserContext(), userID, c.Params("id"), req.Status)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(toTransactionResponse(tx))
}

type refundRequest struct {
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
}

// Refund credits the user's wallet with an immediately settled refund.
func (h *Handler) Refund(c *fiber.Ctx) error {
	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)

	tx, err := h.service.ProcessRefund(c.UserContext(), userID, req.Amount, req.Reference, req.Description)
	if err != nil {
		return mapLedgerError(err)
	}
	return c.Status(http.StatusCreated).JSON(toTransactionResponse(tx))
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidKind),
		errors.Is(err, ledger.ErrInvalidStatus),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
