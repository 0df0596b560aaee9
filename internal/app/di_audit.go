package app

import (
	"encoding/base64"
	"fmt"

	auditHTTP "github.com/parsivoice/pasban/internal/audit/http"
	auditRepository "github.com/parsivoice/pasban/internal/audit/repository"
	auditService "github.com/parsivoice/pasban/internal/audit/service"
	auditUseCase "github.com/parsivoice/pasban/internal/audit/usecase"
)

// EventLog returns the bounded in-memory security event log.
func (c *Container) EventLog() auditService.EventLog {
	c.eventLogInit.Do(func() {
		c.eventLog = auditService.NewRingEventLog(c.config.EventLogCapacity)
	})
	return c.eventLog
}

// EventSigner returns the HMAC signer for archived events.
func (c *Container) EventSigner() auditService.EventSigner {
	c.eventSignerInit.Do(func() {
		c.eventSigner = auditService.NewEventSigner()
	})
	return c.eventSigner
}

// EventRepository returns the archive repository, or nil when no archive
// database is configured.
func (c *Container) EventRepository() (auditUseCase.EventRepository, error) {
	var err error
	c.eventRepositoryInit.Do(func() {
		if !c.config.ArchiveEnabled() {
			return
		}
		c.eventRepository, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepository"]; exists {
		return nil, storedErr
	}
	return c.eventRepository, nil
}

// AuditUseCase returns the audit use case.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		c.auditUseCase, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// AuditHandler returns the HTTP handler for audit queries.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	var err error
	c.auditHandlerInit.Do(func() {
		c.auditHandler, err = c.initAuditHandler()
		if err != nil {
			c.initErrors["auditHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.auditHandler, nil
}

// initEventRepository creates the archive repository for the configured driver.
func (c *Container) initEventRepository() (auditUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLEventRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	repository, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for audit use case: %w", err)
	}

	var signingKey []byte
	if c.config.AuditSigningKey != "" {
		signingKey, err = base64.StdEncoding.DecodeString(c.config.AuditSigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audit signing key: %w", err)
		}
	}

	logger := c.Logger()
	if repository != nil && len(signingKey) == 0 {
		logger.Warn("audit archive configured without a signing key, archived events will be unsigned")
	}

	baseUseCase := auditUseCase.NewAuditUseCase(
		c.EventLog(),
		c.EventSigner(),
		signingKey,
		repository,
		c.RateLimiter(),
		c.IPReputationTracker(),
		logger,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		securityMetrics, err := c.SecurityMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get security metrics for audit use case: %w", err)
		}
		return auditUseCase.NewAuditUseCaseWithMetrics(baseUseCase, securityMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditHandler creates the audit HTTP handler.
func (c *Container) initAuditHandler() (*auditHTTP.AuditHandler, error) {
	useCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for audit handler: %w", err)
	}

	return auditHTTP.NewAuditHandler(useCase, c.Logger()), nil
}
