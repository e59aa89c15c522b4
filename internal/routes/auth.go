package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/accountgate/accountgate/internal/auth"
)

// RegisterAuthRoutes wires the public authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	r.Post("/login", h.Login)
}
