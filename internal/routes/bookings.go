package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/bookings"
)

// RegisterBookingRoutes wires booking endpoints for the authenticated user.
func RegisterBookingRoutes(r fiber.Router, h *bookings.Handler) {
	group := r.Group("/bookings")
	group.Post("", h.Create)
	group.Get("", h.List)
	group.Get("/:id", h.Get)
	group.Post("/:id/cancel", h.Cancel)
}
