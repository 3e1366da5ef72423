package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ticket-pesa/ticket_pesa/internal/config"
	"github.com/ticket-pesa/ticket_pesa/internal/payments"
	"github.com/ticket-pesa/ticket_pesa/internal/routes"
)

// Server wraps the Fiber application, shared dependencies and the payment
// sweeper's lifecycle.
type Server struct {
	app     *fiber.App
	cfg     config.Config
	sweeper *payments.Sweeper
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	sweeper, err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger})
	if err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, sweeper: sweeper}, nil
}

// Listen starts the payment sweeper and the HTTP server.
func (s *Server) Listen() error {
	s.sweeper.Start()
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and waits for any in-flight
// sweep to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	select {
	case <-s.sweeper.Stop().Done():
	case <-ctx.Done():
	}
	return err
}
