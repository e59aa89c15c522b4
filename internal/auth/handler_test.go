package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/accountgate/accountgate/internal/password"
	"github.com/accountgate/accountgate/internal/registration"
	"github.com/accountgate/accountgate/internal/session"
)

func setupLoginApp(t *testing.T) (*fiber.App, *registration.MemoryRepository) {
	t.Helper()

	repo := registration.NewMemoryRepository()
	store := session.NewMemoryStore()
	svc := NewService(repo, password.Bcrypt{Cost: 4}, store)
	h := NewHandler(svc, 7*24*time.Hour)

	app := fiber.New()
	app.Post("/login", h.Login)

	return app, repo
}

func TestLoginEndpointSetsSessionCookie(t *testing.T) {
	app, repo := setupLoginApp(t)
	seedAccount(t, repo, "user_name", "password")

	req := httptest.NewRequest(fiber.MethodPost, "/login",
		strings.NewReader(`{"username":"user_name","password":"password"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, resp.StatusCode)
	}

	var found bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookie && cookie.Value != "" {
			if !cookie.HttpOnly {
				t.Fatalf("session cookie must be HttpOnly")
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a session cookie on successful login")
	}
}

func TestLoginEndpointUniformFailure(t *testing.T) {
	app, repo := setupLoginApp(t)
	seedAccount(t, repo, "user_name", "password")

	payloads := []string{
		`{"username":"user_name","password":"wrong"}`,
		`{"username":"no_such_user","password":"password"}`,
	}

	var bodies []string
	for _, payload := range payloads {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("expected %d got %d", fiber.StatusBadRequest, resp.StatusCode)
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		bodies = append(bodies, string(raw))

		if len(resp.Cookies()) != 0 {
			t.Fatalf("no cookie may be issued on failed login")
		}
	}

	if bodies[0] != bodies[1] {
		t.Fatalf("failure responses must be identical: %q vs %q", bodies[0], bodies[1])
	}

	var body errorResponse
	if err := json.Unmarshal([]byte(bodies[0]), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != fiber.StatusBadRequest {
		t.Fatalf("expected code %d in body, got %d", fiber.StatusBadRequest, body.Code)
	}
}
