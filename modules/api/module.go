package api

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/typerush-presence/config"
	"github.com/example/typerush-presence/modules/broadcast"
	"github.com/example/typerush-presence/modules/presence"
	"github.com/example/typerush-presence/modules/stats"
)

// EventDispatcher accepts inbound client events for serial processing.
type EventDispatcher interface {
	Dispatch(in presence.Inbound) bool
}

// APIModule is the HTTP API module with WebSocket support.
type APIModule struct {
	app             *fiber.App
	presenceAdapter presence.PresencePort
	statsAdapter    stats.StatsPort
	hub             *broadcast.Hub
	dispatcher      EventDispatcher
	port            string
	addr            string
	corsOrigins     string
	staticDir       string
	logger          types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg config.Config, logger types.Logger) *APIModule {
	return &APIModule{
		port:        cfg.Port,
		addr:        cfg.ListenAddr(),
		corsOrigins: cfg.CORSAllowedOrigins,
		staticDir:   cfg.StaticDir,
		logger:      logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"presence", "stats"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "presence":
		m.presenceAdapter = presence.NewPresenceAdapter(container)
	case "stats":
		m.statsAdapter = stats.NewStatsAdapter(container)
	}
}

// SetHub sets the broadcast hub (called from main.go).
func (m *APIModule) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// SetDispatcher sets the inbound event sink (called from main.go).
func (m *APIModule) SetDispatcher(dispatcher EventDispatcher) {
	m.dispatcher = dispatcher
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.presenceAdapter == nil {
		return fmt.Errorf("presence adapter dependency not set")
	}
	if m.statsAdapter == nil {
		return fmt.Errorf("stats adapter dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}
	if m.dispatcher == nil {
		return fmt.Errorf("event dispatcher dependency not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", m.addr)
	return nil
}

// newApp builds the Fiber application with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		UnescapePath:          true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return websocket.IsWebSocketUpgrade(c)
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.corsOrigins,
	}))

	m.setupRoutes(app)

	if m.staticDir != "" {
		app.Static("/", m.staticDir)
	}
	return app
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	clients := 0
	if m.hub != nil {
		clients = m.hub.ClientCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":              m.port,
			"connected_clients": clients,
		},
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
