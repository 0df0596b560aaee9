package app

import (
	"context"
	"crypto/ed25519"
	"fmt"

	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	authHTTP "github.com/parsivoice/pasban/internal/auth/http"
	authService "github.com/parsivoice/pasban/internal/auth/service"
	authUseCase "github.com/parsivoice/pasban/internal/auth/usecase"
)

// CredentialTable returns the credential table loaded from the credential file.
func (c *Container) CredentialTable() (*authDomain.CredentialTable, error) {
	var err error
	c.credentialTableInit.Do(func() {
		c.credentialTable, err = c.initCredentialTable()
		if err != nil {
			c.initErrors["credentialTable"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialTable"]; exists {
		return nil, storedErr
	}
	return c.credentialTable, nil
}

// CredentialService returns the credential validation service.
func (c *Container) CredentialService() (authService.CredentialService, error) {
	var err error
	c.credentialServiceInit.Do(func() {
		c.credentialService, err = c.initCredentialService()
		if err != nil {
			c.initErrors["credentialService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialService"]; exists {
		return nil, storedErr
	}
	return c.credentialService, nil
}

// SessionTokenService returns the session token signing service.
func (c *Container) SessionTokenService() (authService.SessionTokenService, error) {
	var err error
	c.sessionTokenServiceInit.Do(func() {
		c.sessionTokenService, err = c.initSessionTokenService()
		if err != nil {
			c.initErrors["sessionTokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionTokenService"]; exists {
		return nil, storedErr
	}
	return c.sessionTokenService, nil
}

// RateLimiter returns the sliding-window rate limiter. Tier overrides from
// the credential file apply when the table is loadable; otherwise the
// config-derived budgets stand.
func (c *Container) RateLimiter() authService.RateLimiter {
	c.rateLimiterInit.Do(func() {
		profiles := c.rateProfiles()
		if table, err := c.CredentialTable(); err == nil {
			for tier := range profiles {
				profiles[tier] = table.ProfileFor(tier)
			}
		}
		c.rateLimiter = authService.NewRateLimiter(profiles)
	})
	return c.rateLimiter
}

// IPReputationTracker returns the per-address failure tracker.
func (c *Container) IPReputationTracker() authService.IPReputationTracker {
	c.reputationTrackerInit.Do(func() {
		c.reputationTracker = authService.NewIPReputationTracker(authService.ReputationThresholds{
			FailureWindow:  c.config.ReputationFailureWindow,
			ShortThreshold: c.config.ReputationShortThreshold,
			ShortBlock:     c.config.ReputationShortBlock,
			LongThreshold:  c.config.ReputationLongThreshold,
			LongBlock:      c.config.ReputationLongBlock,
		})
	})
	return c.reputationTracker
}

// SessionUseCase returns the session use case.
func (c *Container) SessionUseCase() (authUseCase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUseCase, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// SessionHandler returns the HTTP handler for session issuance.
func (c *Container) SessionHandler() (*authHTTP.SessionHandler, error) {
	var err error
	c.sessionHandlerInit.Do(func() {
		c.sessionHandler, err = c.initSessionHandler()
		if err != nil {
			c.initErrors["sessionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionHandler"]; exists {
		return nil, storedErr
	}
	return c.sessionHandler, nil
}

// rateProfiles builds the per-tier sliding-window profiles from configuration.
func (c *Container) rateProfiles() map[authDomain.Tier]authDomain.RateProfile {
	window := c.config.RateLimitWindow
	return map[authDomain.Tier]authDomain.RateProfile{
		authDomain.TierAdmin: {Limit: c.config.RateLimitAdmin, Window: window},
		authDomain.TierUser:  {Limit: c.config.RateLimitUser, Window: window},
		authDomain.TierLocal: {Limit: c.config.RateLimitLocal, Window: window},
		authDomain.TierDemo:  {Limit: c.config.RateLimitDemo, Window: window},
	}
}

// initCredentialTable loads the credential file with config-derived defaults.
func (c *Container) initCredentialTable() (*authDomain.CredentialTable, error) {
	table, err := authService.LoadCredentialTable(
		c.config.CredentialFile,
		authDomain.DefaultPermissions(),
		c.rateProfiles(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential file %q: %w", c.config.CredentialFile, err)
	}
	return table, nil
}

// initCredentialService creates the credential service over the loaded table.
func (c *Container) initCredentialService() (authService.CredentialService, error) {
	table, err := c.CredentialTable()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential table for credential service: %w", err)
	}

	return authService.NewCredentialService(table, c.config.MinCredentialLength), nil
}

// initSessionTokenService creates the token service with the signing key.
// A KMS-wrapped seed takes precedence; otherwise the key is loaded from or
// generated into the state directory.
func (c *Container) initSessionTokenService() (authService.SessionTokenService, error) {
	var key ed25519.PrivateKey
	var err error

	if c.config.KMSKeyURI != "" && c.config.SigningSeedEncrypted != "" {
		key, err = authService.DecryptSigningSeed(
			context.Background(),
			c.config.KMSKeyURI,
			c.config.SigningSeedEncrypted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt session signing seed: %w", err)
		}
	} else {
		key, err = authService.LoadOrGenerateSigningKey(c.config.StateDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load session signing key: %w", err)
		}
	}

	return authService.NewSessionTokenService(key, c.config.SessionTokenExpiration), nil
}

// initSessionUseCase creates the session use case with all its dependencies.
func (c *Container) initSessionUseCase() (authUseCase.SessionUseCase, error) {
	credentialService, err := c.CredentialService()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential service for session use case: %w", err)
	}

	tokenService, err := c.SessionTokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for session use case: %w", err)
	}

	recorder, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for session use case: %w", err)
	}

	baseUseCase := authUseCase.NewSessionUseCase(
		credentialService,
		tokenService,
		c.RateLimiter(),
		c.IPReputationTracker(),
		recorder,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		securityMetrics, err := c.SecurityMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get security metrics for session use case: %w", err)
		}
		return authUseCase.NewSessionUseCaseWithMetrics(baseUseCase, securityMetrics), nil
	}

	return baseUseCase, nil
}

// initSessionHandler creates the session HTTP handler.
func (c *Container) initSessionHandler() (*authHTTP.SessionHandler, error) {
	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for session handler: %w", err)
	}

	return authHTTP.NewSessionHandler(sessionUseCase, c.Logger()), nil
}
