package registration

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the signup and verification endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a registration HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Code: status, Message: message})
}

// SignUp handles candidate staging. All success-shaped outcomes, including
// idempotent repeats, share one response.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var candidate Candidate
	if err := c.BodyParser(&candidate); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	if err := h.service.SignUp(c.UserContext(), candidate); err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return respondError(c, http.StatusBadRequest, ve.Error())
		case errors.Is(err, ErrDelivery):
			return respondError(c, http.StatusBadRequest, ErrDelivery.Error())
		default:
			return respondError(c, http.StatusInternalServerError, "internal error")
		}
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{})
}

// Verify redeems a confirmation token.
func (h *Handler) Verify(c *fiber.Ctx) error {
	token := c.Params("token")

	if err := h.service.Verify(c.UserContext(), token); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respondError(c, http.StatusBadRequest, "unknown or already used token")
		}
		return respondError(c, http.StatusInternalServerError, "internal error")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{})
}
