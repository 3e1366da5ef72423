package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints for the authenticated user.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	group := r.Group("/wallet")
	group.Get("", h.Get)
	group.Post("/transactions", h.CreateTransaction)
	group.Patch("/transactions/:id", h.UpdateTransactionStatus)
	group.Post("/refund", h.Refund)
}
