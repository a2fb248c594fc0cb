// Package api provides the HTTP API server for hostjobs.
// It uses the Echo framework to serve REST endpoints for hosts and the jobs
// that may run on them, and a WebSocket stream of host events.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "evalgo.org/hostjobs/docs" // swagger spec
	"evalgo.org/hostjobs/internal/auth"
	"evalgo.org/hostjobs/internal/config"
	"evalgo.org/hostjobs/internal/dispatch"
	"evalgo.org/hostjobs/internal/jobs"
	"evalgo.org/hostjobs/internal/logging"
	"evalgo.org/hostjobs/internal/storage"
	"evalgo.org/hostjobs/internal/validation"
	"evalgo.org/hostjobs/internal/version"
	"evalgo.org/hostjobs/models"
)

// Server represents the hostjobs API server.
type Server struct {
	echo       *echo.Echo
	store      storage.HostStore
	dispatcher *dispatch.Dispatcher
	catalog    *jobs.Catalog[models.Host]
	validator  *validation.Validator
	config     *config.Config
	wsHub      *Hub
	authMiddle *auth.Middleware
	logger     *slog.Logger

	// set while store changes are relayed from a storage.Watcher
	relaying atomic.Bool
}

// New creates a new API server instance. A nil logger discards output.
func New(cfg *config.Config, store storage.HostStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler

	hub := NewHub(logger)

	server := &Server{
		echo:       e,
		store:      store,
		catalog:    jobs.DefaultHostCatalog(),
		validator:  validation.New(),
		config:     cfg,
		wsHub:      hub,
		authMiddle: auth.NewMiddleware(cfg.Security),
		logger:     logger.With("component", "api"),
	}
	server.dispatcher = dispatch.New(store,
		dispatch.WithLogger(logger),
		dispatch.WithConcurrency(cfg.Dispatch.Concurrency),
		dispatch.WithObserver(server.relayDispatchEvent),
	)

	go hub.Run()

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// Dispatcher returns the dispatcher that serializes work per host.
func (s *Server) Dispatcher() *dispatch.Dispatcher { return s.dispatcher }

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(SecurityHeaders)

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	s.echo.Use(middleware.RequestID())

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	s.echo.Use(ValidateContentType)
	s.echo.Use(ValidateAcceptHeader)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.healthCheck)

	// Swagger UI is public; the endpoints it calls are still protected
	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	v1 := s.echo.Group("/api/v1")

	v1.GET("/states", s.listStates, s.authMiddle.RequireRead)
	v1.GET("/stats", s.getStatistics, s.authMiddle.RequireRead)

	hosts := v1.Group("/hosts")
	hosts.Use(ValidateQueryParams)
	hosts.GET("", s.listHosts, s.authMiddle.RequireRead)
	hosts.POST("", s.createHost, s.authMiddle.RequireWrite)
	hosts.GET("/:id", s.getHost, ValidateIDFormat, s.authMiddle.RequireRead)
	hosts.DELETE("/:id", s.deleteHost, ValidateIDFormat, s.authMiddle.RequireWrite)
	hosts.PUT("/:id/state", s.setHostState, ValidateIDFormat, s.authMiddle.RequireWrite)
	hosts.GET("/:id/jobs", s.listHostJobs, ValidateIDFormat, s.authMiddle.RequireRead)
	hosts.GET("/:id/jobs/:job", s.checkHostJob, ValidateIDFormat, s.authMiddle.RequireRead)
	hosts.POST("/:id/jobs/:job", s.dispatchHostJob, ValidateIDFormat, s.authMiddle.RequireWrite)

	jobRoutes := v1.Group("/jobs")
	jobRoutes.GET("", s.listJobs, s.authMiddle.RequireRead)
	jobRoutes.POST("/:job/dispatch", s.bulkDispatchJob, s.authMiddle.RequireWrite)

	validate := v1.Group("/validate")
	validate.POST("/host", s.validateHost, s.authMiddle.RequireRead)

	ws := v1.Group("/ws")
	ws.GET("/events", s.HandleWebSocket, s.authMiddle.RequireRead)
	ws.GET("/stats", s.GetWebSocketStats, s.authMiddle.RequireRead)
}

// ServeHTTP lets the server be used as an http.Handler, e.g. with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server. It blocks until the server stops and
// returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.logger.Info("starting hostjobs API server",
		"address", addr,
		"backend", s.store.Backend(),
		"auth", s.config.Security.AuthEnabled,
		"debug", s.config.Server.Debug,
	)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	var err error
	if s.config.Server.TLSEnabled {
		err = s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	} else {
		err = s.echo.Start(addr)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down hostjobs API server")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.wsHub.Stop()

	if err := s.store.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// healthCheck handles health check requests.
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} APIError
// @Router /health [get]
func (s *Server) healthCheck(c echo.Context) error {
	resp := HealthResponse{
		Status:  "healthy",
		Service: "hostjobs",
		Version: version.Version,
		Backend: s.store.Backend(),
		Clients: s.wsHub.ClientCount(),
	}

	if couch, ok := s.store.(*storage.CouchStore); ok {
		info, err := couch.DatabaseInfo()
		if err != nil {
			return NewAPIError(http.StatusServiceUnavailable, "database connection failed", err.Error())
		}
		resp.Database = &DatabaseStats{
			Name:      info.DBName,
			Documents: int64(info.DocCount),
			Deleted:   int64(info.DocDelCount),
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// WatchStore relays host changes reported by the store to WebSocket
// clients. It returns immediately when the store cannot report changes and
// otherwise blocks until the feed ends.
func (s *Server) WatchStore() error {
	watcher, ok := s.store.(storage.Watcher)
	if !ok {
		return nil
	}

	s.relaying.Store(true)
	defer s.relaying.Store(false)

	s.logger.Info("relaying store changes", "backend", s.store.Backend())
	return watcher.WatchHosts(func(change storage.HostChange) {
		s.broadcast(hostChangeEvent(change))
	})
}

// hostChangeEvent maps a store change to the event the handlers would have
// sent for it. Deletions carry only the ID.
func hostChangeEvent(change storage.HostChange) (HostEventType, interface{}) {
	switch change.Type {
	case storage.ChangeTypeCreated:
		return EventHostCreated, change.Host
	case storage.ChangeTypeDeleted:
		return EventHostDeleted, map[string]string{"id": change.ID}
	default:
		return EventHostUpdated, change.Host
	}
}

// broadcastHostChange announces a change made through this server, unless
// the store feed already reports it.
func (s *Server) broadcastHostChange(eventType HostEventType, data interface{}) {
	if s.relaying.Load() {
		return
	}
	s.broadcast(eventType, data)
}

func (s *Server) relayDispatchEvent(ev dispatch.Event) {
	s.broadcast(HostEventType(ev.Type), ev)
}

func (s *Server) broadcast(eventType HostEventType, data interface{}) {
	if err := s.wsHub.BroadcastEvent(HostEvent{Type: eventType, Data: data}); err != nil {
		s.logger.Error("failed to broadcast event", "type", eventType, "error", err)
		return
	}
	if s.config.Server.Debug {
		s.logger.Debug("event broadcast", "type", eventType, "clients", s.wsHub.ClientCount())
	}
}
