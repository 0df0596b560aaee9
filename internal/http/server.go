// Package http provides the HTTP server, route table, and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/parsivoice/pasban/internal/audit/http"
	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	authHTTP "github.com/parsivoice/pasban/internal/auth/http"
	authUseCase "github.com/parsivoice/pasban/internal/auth/usecase"
	"github.com/parsivoice/pasban/internal/config"
	"github.com/parsivoice/pasban/internal/metrics"
	permissionHTTP "github.com/parsivoice/pasban/internal/permission/http"
	skillsHTTP "github.com/parsivoice/pasban/internal/skills/http"
)

// Server represents the main HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The database handle is only used by
// the readiness probe and may be nil when the audit archive is not
// configured. Routes are registered separately via SetupRouter.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the route table with all middleware and handlers.
//
// Route layout:
//   - /healthz, /readyz: unauthenticated probes
//   - POST /v1/session: credential exchange, guarded by the per-address limiter
//   - /v1/*: bearer session required, sliding-window rate limit applied
//   - permission grant/revoke and the raw audit event list require the admin tier
//
// The metrics endpoint is served by MetricsServer on its own listener and is
// deliberately absent here.
func (s *Server) SetupRouter(
	cfg *config.Config,
	sessionUseCase authUseCase.SessionUseCase,
	sessionHandler *authHTTP.SessionHandler,
	skillHandler *skillsHTTP.SkillHandler,
	permissionHandler *permissionHTTP.PermissionHandler,
	auditHandler *auditHTTP.AuditHandler,
	meterProvider metric.MeterProvider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.GET("/healthz", s.healthHandler)
	router.GET("/readyz", s.readinessHandler)

	v1 := router.Group("/v1")

	// Session issuance is the only unauthenticated API route. The per-address
	// token bucket slows credential guessing before the reputation tracker in
	// the auth layer sees the failures.
	session := v1.Group("")
	if cfg.RateLimitSessionEnabled {
		session.Use(authHTTP.SessionRateLimitMiddleware(
			cfg.RateLimitSessionRequestsPerSec,
			cfg.RateLimitSessionBurst,
			s.logger,
		))
	}
	session.POST("/session", sessionHandler.IssueSessionHandler)

	authenticated := v1.Group("")
	authenticated.Use(authHTTP.AuthenticationMiddleware(sessionUseCase, s.logger))
	authenticated.Use(authHTTP.RateLimitMiddleware(sessionUseCase, s.logger))
	{
		authenticated.POST("/route", skillHandler.RouteHandler)
		authenticated.GET("/skills", skillHandler.ListHandler)
		authenticated.POST("/skills/:name/execute", skillHandler.ExecuteHandler)
		authenticated.POST("/plan", skillHandler.ExecutePlanHandler)
		authenticated.GET("/permissions/:name", permissionHandler.CheckHandler)
		authenticated.GET("/audit/summary", auditHandler.SummaryHandler)
	}

	admin := authenticated.Group("")
	admin.Use(authHTTP.RequireTierMiddleware(authDomain.TierAdmin, s.logger))
	{
		admin.POST("/permissions/:name/grant", permissionHandler.GrantHandler)
		admin.POST("/permissions/:name/revoke", permissionHandler.RevokeHandler)
		admin.GET("/audit/events", auditHandler.ListEventsHandler)
	}

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The audit
// archive database is optional, so a nil handle reports the component as
// disabled without failing the probe; a configured but unreachable database
// does fail it.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	status := http.StatusOK
	overall := "ready"

	if s.db == nil {
		components["database"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			status = http.StatusServiceUnavailable
			overall = "not_ready"
		} else {
			components["database"] = "ok"
		}
	}

	c.JSON(status, gin.H{"status": overall, "components": components})
}

// GetHandler returns the underlying handler for use with httptest servers.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized, call SetupRouter before Start")
	}

	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
