package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/middleware"
	"github.com/ticket-pesa/ticket_pesa/internal/movies"
)

// RegisterCatalogRoutes wires public, read-only catalog endpoints.
func RegisterCatalogRoutes(r fiber.Router, h *movies.Handler) {
	group := r.Group("/movies")
	group.Get("", h.ListMovies)
	group.Get("/:id", h.GetMovie)
	group.Get("/:id/shows", h.ListShows)
	r.Get("/shows/:id", h.GetShow)
}

// RegisterCatalogAdminRoutes wires catalog management endpoints for admins.
func RegisterCatalogAdminRoutes(r fiber.Router, h *movies.Handler) {
	admin := middleware.RequireAdmin()
	group := r.Group("/movies", admin)
	group.Post("", h.CreateMovie)
	group.Put("/:id", h.UpdateMovie)
	group.Delete("/:id", h.DeactivateMovie)
	r.Post("/shows", admin, h.CreateShow)
}
