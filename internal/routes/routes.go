package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ticket-pesa/ticket_pesa/internal/auth"
	"github.com/ticket-pesa/ticket_pesa/internal/bookings"
	"github.com/ticket-pesa/ticket_pesa/internal/config"
	"github.com/ticket-pesa/ticket_pesa/internal/identity"
	"github.com/ticket-pesa/ticket_pesa/internal/ledger"
	"github.com/ticket-pesa/ticket_pesa/internal/middleware"
	"github.com/ticket-pesa/ticket_pesa/internal/movies"
	"github.com/ticket-pesa/ticket_pesa/internal/notification"
	"github.com/ticket-pesa/ticket_pesa/internal/payments"
	"github.com/ticket-pesa/ticket_pesa/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. It returns the
// payment sweeper so the server can manage its lifecycle.
func Setup(app *fiber.App, d Deps) (*payments.Sweeper, error) {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.Env) {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
	}

	var paymentRepo payments.Repository
	if d.DB != nil {
		paymentRepo = payments.NewPostgresRepository(d.DB)
	} else {
		paymentRepo = payments.NewMemoryRepository()
	}
	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	var catalogRepo movies.Repository
	if d.DB != nil {
		catalogRepo = movies.NewPostgresRepository(d.DB)
	} else {
		catalogRepo = movies.NewMemoryRepository()
	}
	var bookingRepo bookings.Repository
	if d.DB != nil {
		bookingRepo = bookings.NewPostgresRepository(d.DB)
	} else {
		bookingRepo = bookings.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(ledgerBackend)
	paymentSvc := payments.NewService(paymentRepo, ledgerBackend, payments.NewDarajaGateway(d.Cfg.Mpesa), notifier, d.Logger)
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(identityRepo, &d.Cfg)
	catalogSvc := movies.NewService(catalogRepo)
	bookingSvc := bookings.NewService(bookingRepo, catalogSvc, ledgerBackend, paymentSvc, notifier, d.Logger)

	authHandler := auth.NewHandler(identitySvc, authSvc, d.Logger)
	walletHandler := wallet.NewHandler(walletSvc)
	paymentHandler := payments.NewHandler(paymentSvc, d.Logger)
	movieHandler := movies.NewHandler(catalogSvc)
	bookingHandler := bookings.NewHandler(bookingSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes. The provider callback stays outside the idempotency and
	// auth layers: Safaricom sends neither header, and duplicate deliveries
	// are absorbed by the reconciliation logic itself.
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	api.Post("/payments/callback", paymentHandler.Callback)
	RegisterCatalogRoutes(api, movieHandler)

	// Protected routes
	jwtmw := middleware.JWTAuth(authSvc)
	api.Post("/auth/logout", jwtmw, authHandler.Logout)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	protected.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		user, err := identityRepo.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"created_at": user.CreatedAt,
		})
	})
	RegisterWalletRoutes(protected, walletHandler)
	RegisterPaymentRoutes(protected, paymentHandler)
	RegisterBookingRoutes(protected, bookingHandler)
	RegisterCatalogAdminRoutes(protected, movieHandler)

	sweeper := payments.NewSweeper(paymentRepo, d.Cfg.SweepInterval, d.Cfg.PaymentExpiry, d.Logger)
	return sweeper, nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
