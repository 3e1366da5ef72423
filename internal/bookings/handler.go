package bookings

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
	"github.com/ticket-pesa/ticket_pesa/internal/movies"
)

// Handler exposes booking endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the booking HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	ShowID string   `json:"show_id"`
	Seats  []string `json:"seats"`
}

// Create books seats on a show for the authenticated user.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	booking, err := h.service.Create(c.Context(), CreateInput{UserID: userID, ShowID: req.ShowID, Seats: req.Seats})
	if err != nil {
		return mapBookingError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

// Get returns one booking owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	booking, err := h.service.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(booking)
}

// List returns the caller's bookings.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	out, err := h.service.ListByUser(c.Context(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list bookings")
	}
	if out == nil {
		out = []Booking{}
	}
	return c.JSON(out)
}

// Cancel refunds and cancels a booking owned by the caller.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	booking, err := h.service.Cancel(c.Context(), userID, c.Params("id"))
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(booking)
}

func mapBookingError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, movies.ErrNotEnoughSeats),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, movies.ErrShowNotFound),
		errors.Is(err, movies.ErrMovieNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "booking operation failed")
	}
}
