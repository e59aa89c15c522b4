package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/accountgate/accountgate/internal/registration"
)

// RegisterRegistrationRoutes wires the two-phase signup endpoints.
func RegisterRegistrationRoutes(r fiber.Router, h *registration.Handler) {
	r.Post("/signup", h.SignUp)
	r.Get("/verify/:token", h.Verify)
}
