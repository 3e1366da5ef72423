package auth

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ticket-pesa/ticket_pesa/internal/identity"
)

// Handler exposes authentication endpoints.
type Handler struct {
	identity *identity.Service
	auth     *Service
	logger   *slog.Logger
}

// NewHandler creates the auth HTTP handler.
func NewHandler(identitySvc *identity.Service, authSvc *Service, logger *slog.Logger) *Handler {
	return &Handler{identity: identitySvc, auth: authSvc, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates a user account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user, err := h.identity.Register(c.Context(), identity.Credentials{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	h.logger.Info("user registered", "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

// Login authenticates a user and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user, err := h.identity.Authenticate(c.Context(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "login failed")
	}
	pair, err := h.auth.IssuePair(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "token issuance failed")
	}
	return c.JSON(pair)
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "refresh_token is required")
	}
	pair, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid refresh token")
	}
	return c.JSON(pair)
}

// Logout invalidates every outstanding token for the caller.
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}
	if err := h.auth.Logout(c.Context(), userID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "logout failed")
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}
