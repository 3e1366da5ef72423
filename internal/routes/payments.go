package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/payments"
)

// RegisterPaymentRoutes wires M-Pesa payment endpoints. The provider
// callback is registered separately as a public route.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	group := r.Group("/payments")
	group.Post("/initiate", h.Initiate)
	group.Get("/status/:checkoutRequestId", h.Status)
	group.Post("/refund", h.Refund)
}
