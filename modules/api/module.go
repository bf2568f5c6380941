package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/nextchat/modules/auth"
	"github.com/example/nextchat/modules/broadcast"
	"github.com/example/nextchat/modules/mailer"
	"github.com/example/nextchat/modules/relay"
)

// Module is the HTTP and WebSocket gateway.
type Module struct {
	app      *fiber.App
	addr     string
	authPort auth.Port
	mailPort mailer.Port
	hub      *broadcast.Hub
	relay    *relay.Relay
	origins  *OriginChecker
	gateway  *Gateway
	handlers *Handlers
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new api Module listening on addr.
func NewModule(addr string) *Module {
	return &Module{
		addr: addr,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"auth", "mailer"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAdapter(container)
	case "mailer":
		m.mailPort = mailer.NewAdapter(container)
	}
}

// SetHub wires the broadcast hub. Called from main before the
// application starts.
func (m *Module) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// SetRelay wires the relay core. Called from main before the
// application starts.
func (m *Module) SetRelay(r *relay.Relay) {
	m.relay = r
}

// Start initializes and starts the Fiber server.
func (m *Module) Start(_ context.Context) error {
	if m.authPort == nil || m.mailPort == nil {
		return fmt.Errorf("module dependencies not set")
	}
	if m.hub == nil || m.relay == nil {
		return fmt.Errorf("hub and relay must be wired before start")
	}

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}
	m.origins = NewOriginChecker(allowedOrigins)

	m.app = fiber.New(fiber.Config{
		AppName:               "nextchat",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	m.app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: true,
	}))

	m.gateway = NewGateway(m.hub, m.relay)
	m.handlers = NewHandlers(m.authPort, m.mailPort)
	m.registerRoutes()

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[api] Server started on %s", m.addr)
	return nil
}

// Stop gracefully shuts down the server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	log.Println("[api] Server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "server not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":              m.addr,
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// registerRoutes sets up all HTTP and WebSocket routes.
func (m *Module) registerRoutes() {
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, fiber.Map{
			"status":            "healthy",
			"connected_clients": m.hub.ClientCount(),
			"active_rooms":      m.hub.RoomCount(),
		})
	})

	// WebSocket upgrade with origin enforcement
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !m.origins.Allowed(c.Get("Origin")) {
			log.Printf("[api] Blocked WebSocket connection from disallowed origin: %q", c.Get("Origin"))
			return fiber.ErrForbidden
		}
		return c.Next()
	})
	m.app.Get("/ws", websocket.New(m.gateway.HandleWebSocket))

	users := m.app.Group("/api/users")
	users.Post("/", m.handlers.Register)
	users.Post("/login", m.handlers.Login)
	users.Post("/logout", m.handlers.Logout)
	users.Post("/forgot-password", m.handlers.ForgotPassword)
	users.Post("/reset-password/:token", m.handlers.ResetPassword)

	protected := users.Group("", RequireAuth(m.authPort))
	protected.Get("/me", m.handlers.Me)
	protected.Put("/:id", m.handlers.Update)
	protected.Delete("/:id", m.handlers.Delete)

	m.app.Post("/api/contact", m.handlers.Contact)
}

// errorHandler handles Fiber errors globally.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return fail(c, code, message)
}
