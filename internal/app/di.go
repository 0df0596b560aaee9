// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/parsivoice/pasban/internal/audit/http"
	auditService "github.com/parsivoice/pasban/internal/audit/service"
	auditUseCase "github.com/parsivoice/pasban/internal/audit/usecase"
	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	authHTTP "github.com/parsivoice/pasban/internal/auth/http"
	authService "github.com/parsivoice/pasban/internal/auth/service"
	authUseCase "github.com/parsivoice/pasban/internal/auth/usecase"
	"github.com/parsivoice/pasban/internal/config"
	"github.com/parsivoice/pasban/internal/database"
	"github.com/parsivoice/pasban/internal/http"
	"github.com/parsivoice/pasban/internal/metrics"
	permissionHTTP "github.com/parsivoice/pasban/internal/permission/http"
	permissionService "github.com/parsivoice/pasban/internal/permission/service"
	permissionUseCase "github.com/parsivoice/pasban/internal/permission/usecase"
	sandboxService "github.com/parsivoice/pasban/internal/sandbox/service"
	skillsDomain "github.com/parsivoice/pasban/internal/skills/domain"
	skillsHTTP "github.com/parsivoice/pasban/internal/skills/http"
	skillsService "github.com/parsivoice/pasban/internal/skills/service"
	skillsUseCase "github.com/parsivoice/pasban/internal/skills/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Metrics
	metricsProvider *metrics.Provider
	securityMetrics metrics.SecurityMetrics

	// Sandbox
	commandValidator sandboxService.CommandValidator
	sandboxExecutor  sandboxService.SkillSandboxExecutor

	// Auth
	credentialTable     *authDomain.CredentialTable
	credentialService   authService.CredentialService
	sessionTokenService authService.SessionTokenService
	rateLimiter         authService.RateLimiter
	reputationTracker   authService.IPReputationTracker
	sessionUseCase      authUseCase.SessionUseCase
	sessionHandler      *authHTTP.SessionHandler

	// Skills
	manifests    []skillsDomain.Manifest
	skillRouter  skillsService.IntentRouter
	skillUseCase skillsUseCase.SkillUseCase
	skillHandler *skillsHTTP.SkillHandler

	// Permissions
	permissionStore   permissionService.PermissionStore
	permissionUseCase permissionUseCase.PermissionUseCase
	permissionHandler *permissionHTTP.PermissionHandler

	// Audit
	eventLog        auditService.EventLog
	eventSigner     auditService.EventSigner
	eventRepository auditUseCase.EventRepository
	auditUseCase    auditUseCase.AuditUseCase
	auditHandler    *auditHTTP.AuditHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                      sync.Mutex
	loggerInit              sync.Once
	dbInit                  sync.Once
	metricsProviderInit     sync.Once
	securityMetricsInit     sync.Once
	commandValidatorInit    sync.Once
	sandboxExecutorInit     sync.Once
	credentialTableInit     sync.Once
	credentialServiceInit   sync.Once
	sessionTokenServiceInit sync.Once
	rateLimiterInit         sync.Once
	reputationTrackerInit   sync.Once
	sessionUseCaseInit      sync.Once
	sessionHandlerInit      sync.Once
	skillsInit              sync.Once
	skillUseCaseInit        sync.Once
	skillHandlerInit        sync.Once
	permissionStoreInit     sync.Once
	permissionUseCaseInit   sync.Once
	permissionHandlerInit   sync.Once
	eventLogInit            sync.Once
	eventSignerInit         sync.Once
	eventRepositoryInit     sync.Once
	auditUseCaseInit        sync.Once
	auditHandlerInit        sync.Once
	httpServerInit          sync.Once
	metricsServerInit       sync.Once
	initErrors              map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the audit archive database connection. It returns nil without
// error when no archive is configured; the rest of the application treats a
// nil handle as "archive disabled".
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		if !c.config.ArchiveEnabled() {
			return
		}
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// SecurityMetrics returns the security metrics recorder. When metrics are
// disabled it returns a no-op recorder so callers never branch.
func (c *Container) SecurityMetrics() (metrics.SecurityMetrics, error) {
	var err error
	c.securityMetricsInit.Do(func() {
		c.securityMetrics, err = c.initSecurityMetrics()
		if err != nil {
			c.initErrors["securityMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["securityMetrics"]; exists {
		return nil, storedErr
	}
	return c.securityMetrics, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log
// level and format in configuration.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if c.config.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// initDB creates and configures the audit archive database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initSecurityMetrics creates the security metrics recorder.
func (c *Container) initSecurityMetrics() (metrics.SecurityMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpSecurityMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for security metrics: %w", err)
	}

	securityMetrics, err := metrics.NewSecurityMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create security metrics: %w", err)
	}

	return securityMetrics, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for http server: %w", err)
	}

	sessionHandler, err := c.SessionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get session handler for http server: %w", err)
	}

	skillHandler, err := c.SkillHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get skill handler for http server: %w", err)
	}

	permissionHandler, err := c.PermissionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission handler for http server: %w", err)
	}

	auditHandler, err := c.AuditHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit handler for http server: %w", err)
	}

	var meterProvider metric.MeterProvider
	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		meterProvider = provider.MeterProvider()
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(
		c.config,
		sessionUseCase,
		sessionHandler,
		skillHandler,
		permissionHandler,
		auditHandler,
		meterProvider,
	)

	return server, nil
}

// initMetricsServer creates the Prometheus metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	logger := c.Logger()

	var provider *metrics.Provider
	if c.config.MetricsEnabled {
		var err error
		provider, err = c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, logger, provider), nil
}
