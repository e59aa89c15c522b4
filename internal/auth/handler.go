package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the session token on browsers. The request gate also
// accepts the same token as a bearer Authorization header.
const SessionCookie = "session_token"

// Handler exposes login/logout endpoints.
type Handler struct {
	service *Service
	window  time.Duration
}

// NewHandler constructs an auth HTTP handler. The window only shapes the
// cookie lifetime; the store and the request gate own actual expiry.
func NewHandler(service *Service, window time.Duration) *Handler {
	return &Handler{service: service, window: window}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Code: status, Message: message})
}

// Login validates credentials and sets the session cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	sess, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return respondError(c, http.StatusBadRequest, ErrInvalidCredentials.Error())
		}
		return respondError(c, http.StatusInternalServerError, "internal error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Expires:  sess.CreatedAt.Add(h.window),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	return c.Status(http.StatusOK).JSON(fiber.Map{})
}

// Logout discards the caller's session. Runs behind the session gate, which
// stores the verified token in locals.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("session_token").(string)
	if token == "" {
		return respondError(c, http.StatusUnauthorized, "missing session")
	}

	if err := h.service.Logout(c.UserContext(), token); err != nil {
		return respondError(c, http.StatusInternalServerError, "internal error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
