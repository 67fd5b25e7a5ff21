// Package api provides the HTTP API server for Gridium. It uses the Echo
// framework to serve the grid's scheduling surface: host capacity and load
// queries, per-host session reservation, administrative drain control, and
// a WebSocket stream of host status events.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"evalgo.org/gridium/internal/auth"
	"evalgo.org/gridium/internal/config"
	"evalgo.org/gridium/internal/scheduler"
	"evalgo.org/gridium/internal/version"
)

// Server represents the Gridium API server.
type Server struct {
	echo       *echo.Echo
	registry   *scheduler.Registry
	config     *config.Config
	hub        *Hub
	authMiddle *auth.Middleware
	validate   *validator.Validate
}

// New creates a new API server over the given host registry.
func New(cfg *config.Config, registry *scheduler.Registry) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug

	e.HTTPErrorHandler = HTTPErrorHandler

	hub := NewHub()

	server := &Server{
		echo:       e,
		registry:   registry,
		config:     cfg,
		hub:        hub,
		authMiddle: auth.NewMiddleware(cfg),
		validate:   validator.New(),
	}

	// Start event hub in background
	go hub.Run()

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Logger middleware
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	// Recover middleware
	s.echo.Use(middleware.Recover())

	// Security headers middleware
	s.echo.Use(SecurityHeaders)

	// CORS middleware
	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Rate limiting
	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	// Content-Type and Accept validation for API routes
	s.echo.Use(ValidateContentType)
	s.echo.Use(ValidateAcceptHeader)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.healthCheck)

	// WebSocket event stream
	s.echo.GET("/ws", s.handleWebSocket)

	// API v1 group
	v1 := s.echo.Group("/api/v1")

	// Host routes
	hosts := v1.Group("/hosts")
	hosts.GET("", s.listHosts, s.authMiddle.RequireRead)
	hosts.GET("/:id", s.getHost, s.authMiddle.RequireRead)
	hosts.GET("/:id/capacity", s.hostCapacity, s.authMiddle.RequireRead)
	hosts.POST("/:id/drain", s.drainHost, s.authMiddle.RequireAdmin)
	hosts.DELETE("/:id/drain", s.undrainHost, s.authMiddle.RequireAdmin)
	hosts.POST("/:id/sessions", s.createSession, s.authMiddle.RequireWrite)

	// Grid-wide aggregate
	v1.GET("/grid/status", s.gridStatus, s.authMiddle.RequireRead)
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "gridium",
		"version": version.Version,
		"hosts":   s.registry.Count(),
	})
}

// StatusChangeFunc returns the callback hosts should use to publish
// liveness transitions to connected WebSocket clients.
func (s *Server) StatusChangeFunc() scheduler.StatusChangeFunc {
	return func(workerID string, previous, current scheduler.HostStatus, message string) {
		event := EventHostDown
		if current == scheduler.HostUp {
			event = EventHostUp
		}
		s.hub.BroadcastEvent(GridEvent{
			Type: event,
			Data: HostStatusChange{
				WorkerID: workerID,
				Previous: previous.String(),
				Current:  current.String(),
				Message:  message,
			},
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	if s.config.Server.TLSEnabled {
		return s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	}
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
