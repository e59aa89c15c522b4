package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/accountgate/accountgate/internal/auth"
	"github.com/accountgate/accountgate/internal/config"
	"github.com/accountgate/accountgate/internal/mailer"
	"github.com/accountgate/accountgate/internal/middleware"
	"github.com/accountgate/accountgate/internal/password"
	"github.com/accountgate/accountgate/internal/registration"
	"github.com/accountgate/accountgate/internal/session"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories and collaborators
	var repo registration.Repository
	if d.DB != nil {
		repo = registration.NewPostgresRepository(d.DB)
	} else {
		repo = registration.NewMemoryRepository()
	}

	var mail mailer.Mailer
	if d.Cfg.SMTPHost != "" {
		smtp, err := mailer.NewSMTPMailer(d.Cfg.SMTPHost, d.Cfg.SMTPPort, d.Cfg.SMTPUsername, d.Cfg.SMTPPassword, d.Cfg.MailFrom)
		if err != nil {
			return err
		}
		mail = smtp
	} else {
		mail = mailer.NewLoggerMailer(d.Logger)
	}

	var sessions session.Store
	if d.Cache != nil {
		sessions = session.NewRedisStore(d.Cache, d.Cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryStore()
	}

	hasher := password.Bcrypt{}
	validator := registration.NewCandidateValidator()

	// Services and handlers
	regSvc := registration.NewService(repo, validator, hasher, mail, d.Cfg.VerifyBaseURL, d.Logger)
	regHandler := registration.NewHandler(regSvc)
	authSvc := auth.NewService(repo, hasher, sessions)
	authHandler := auth.NewHandler(authSvc, d.Cfg.SessionTTL)

	// API routes
	api := app.Group("/api/v1")

	// Public routes
	RegisterRegistrationRoutes(api, regHandler)
	RegisterAuthRoutes(api, authHandler)

	// Protected routes
	gate := middleware.SessionAuth(sessions, d.Cfg.SessionTTL)
	protected := api.Group("", gate)
	protected.Post("/logout", authHandler.Logout)
	protected.Get("/me", func(c *fiber.Ctx) error {
		id, _ := c.Locals("account_id").(string)
		if id == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		account, err := repo.FindAccountByID(c.UserContext(), id)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "account not found")
		}
		return c.JSON(fiber.Map{
			"account_id": account.ID,
			"username":   account.Username,
			"email":      account.Email,
			"created_at": account.CreatedAt,
		})
	})

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
