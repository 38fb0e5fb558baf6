// Package httpapi exposes the comparison service over HTTP: the search,
// compare, and recents endpoints plus health, readiness, and metrics routes.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/search"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server wraps the Fiber app with start and graceful-shutdown handles.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(addr string, session *search.Session, svc *search.Service, suggester *search.Suggester, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "warmer-colder",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          errorHandler(logger),
	})

	RegisterRoutes(app, session, svc, suggester)

	return &Server{app: app, addr: addr, logger: logger}
}

// Start begins listening. Blocks until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler maps domain errors onto HTTP statuses. Handlers surface
// validation problems as fiber errors themselves; everything else falls
// through here.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, domain.ErrNoMatch):
			status = fiber.StatusNotFound
			message = "no place matches the query"
		case errors.Is(err, domain.ErrNoData):
			status = fiber.StatusBadGateway
			message = "weather service returned no usable data"
		default:
			logger.Error("request failed", "path", c.Path(), "error", err)
		}

		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}
