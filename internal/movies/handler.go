package movies

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes catalog endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the catalog HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListMovies returns active movies; admins can pass ?all=true.
func (h *Handler) ListMovies(c *fiber.Ctx) error {
	activeOnly := c.Query("all") != "true"
	out, err := h.service.ListMovies(c.Context(), activeOnly)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list movies")
	}
	if out == nil {
		out = []Movie{}
	}
	return c.JSON(out)
}

// GetMovie returns one movie.
func (h *Handler) GetMovie(c *fiber.Ctx) error {
	movie, err := h.service.GetMovie(c.Context(), c.Params("id"))
	if err != nil {
		return mapCatalogError(err)
	}
	return c.JSON(movie)
}

// CreateMovie adds a movie to the catalog.
func (h *Handler) CreateMovie(c *fiber.Ctx) error {
	var in MovieInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	movie, err := h.service.CreateMovie(c.Context(), in)
	if err != nil {
		return mapCatalogError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(movie)
}

// UpdateMovie replaces a movie's editable fields.
func (h *Handler) UpdateMovie(c *fiber.Ctx) error {
	var in MovieInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	movie, err := h.service.UpdateMovie(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapCatalogError(err)
	}
	return c.JSON(movie)
}

// DeactivateMovie hides a movie from listings.
func (h *Handler) DeactivateMovie(c *fiber.Ctx) error {
	if err := h.service.DeactivateMovie(c.Context(), c.Params("id")); err != nil {
		return mapCatalogError(err)
	}
	return c.JSON(fiber.Map{"message": "movie deactivated"})
}

// CreateShow schedules a screening.
func (h *Handler) CreateShow(c *fiber.Ctx) error {
	var in ShowInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	show, err := h.service.CreateShow(c.Context(), in)
	if err != nil {
		return mapCatalogError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(show)
}

// GetShow returns one show.
func (h *Handler) GetShow(c *fiber.Ctx) error {
	show, err := h.service.GetShow(c.Context(), c.Params("id"))
	if err != nil {
		return mapCatalogError(err)
	}
	return c.JSON(show)
}

// ListShows returns active shows for a movie.
func (h *Handler) ListShows(c *fiber.Ctx) error {
	out, err := h.service.ListShows(c.Context(), c.Params("id"))
	if err != nil {
		return mapCatalogError(err)
	}
	if out == nil {
		out = []Show{}
	}
	return c.JSON(out)
}

func mapCatalogError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotEnoughSeats):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMovieNotFound), errors.Is(err, ErrShowNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "catalog operation failed")
	}
}
