package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/accountgate/accountgate/internal/auth"
	"github.com/accountgate/accountgate/internal/session"
)

// SessionAuth returns the admission gate for protected routes. It resolves
// the bearer token (Authorization header or session cookie), checks the
// session's age against the validity window, and propagates the account
// identity via locals.
func SessionAuth(store session.Store, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies(auth.SessionCookie)
		}
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing session token")
		}

		sess, err := store.Get(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return fiber.NewError(http.StatusUnauthorized, "invalid or expired session")
			}
			return fiber.NewError(http.StatusInternalServerError, "session lookup failed")
		}

		if time.Since(sess.CreatedAt) > window {
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired session")
		}

		c.Locals("account_id", sess.AccountID)
		c.Locals("session_token", sess.Token)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}
