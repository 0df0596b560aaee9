package usecase

import (
	"context"
	"errors"
	"time"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	authService "github.com/parsivoice/pasban/internal/auth/service"
)

// keyPrefixLength is how much of a presented key may appear in event details.
const keyPrefixLength = 8

// sessionUseCase implements SessionUseCase over the auth services.
type sessionUseCase struct {
	credentials authService.CredentialService
	tokens      authService.SessionTokenService
	limiter     authService.RateLimiter
	reputation  authService.IPReputationTracker
	recorder    EventRecorder
}

// IssueSession runs the authentication chain for one credential presentation.
func (s *sessionUseCase) IssueSession(
	ctx context.Context,
	key, sourceIP, requestID string,
) (Session, error) {
	if blocked, until := s.reputation.IsBlocked(sourceIP); blocked {
		s.recorder.Record(ctx, auditDomain.SecurityEvent{
			Type:      auditDomain.EventAuthFailure,
			SourceIP:  sourceIP,
			RequestID: requestID,
			Details: map[string]any{
				"reason":        "source address blocked",
				"blocked_until": until.UTC().Format(time.RFC3339),
			},
		})
		return Session{}, &authDomain.IPBlockedError{IP: sourceIP, Until: until}
	}

	identity, err := s.credentials.Validate(key)
	if err != nil {
		s.recorder.Record(ctx, auditDomain.SecurityEvent{
			Type:      auditDomain.EventAuthFailure,
			SourceIP:  sourceIP,
			RequestID: requestID,
			Details: map[string]any{
				"reason":     "invalid credential",
				"key_prefix": keyPrefix(key),
			},
		})

		if blockedNow, until := s.reputation.TrackFailure(sourceIP); blockedNow {
			s.recorder.Record(ctx, auditDomain.SecurityEvent{
				Type:      auditDomain.EventIPBlocked,
				SourceIP:  sourceIP,
				RequestID: requestID,
				Details: map[string]any{
					"blocked_until": until.UTC().Format(time.RFC3339),
				},
			})
			return Session{}, &authDomain.IPBlockedError{IP: sourceIP, Until: until}
		}

		return Session{}, err
	}

	token, claims, err := s.tokens.Issue(identity)
	if err != nil {
		return Session{}, err
	}

	s.recorder.Record(ctx, auditDomain.SecurityEvent{
		Type:      auditDomain.EventAuthSuccess,
		ClientID:  identity.CredentialID,
		SourceIP:  sourceIP,
		RequestID: requestID,
		Details: map[string]any{
			"tier":       string(identity.Tier),
			"key_prefix": keyPrefix(key),
		},
	})

	return Session{Token: token, Claims: claims}, nil
}

// Authenticate validates a bearer token. Tampered and malformed tokens feed
// the reputation tracker; expired tokens are a normal lifecycle outcome and
// do not.
func (s *sessionUseCase) Authenticate(
	ctx context.Context,
	token, sourceIP, requestID string,
) (authDomain.SessionClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err == nil {
		return claims, nil
	}

	s.recorder.Record(ctx, auditDomain.SecurityEvent{
		Type:      auditDomain.EventTokenRejected,
		SourceIP:  sourceIP,
		RequestID: requestID,
		Details: map[string]any{
			"reason": tokenRejectionReason(err),
		},
	})

	if !errors.Is(err, authDomain.ErrTokenExpired) {
		if blockedNow, until := s.reputation.TrackFailure(sourceIP); blockedNow {
			s.recorder.Record(ctx, auditDomain.SecurityEvent{
				Type:      auditDomain.EventIPBlocked,
				SourceIP:  sourceIP,
				RequestID: requestID,
				Details: map[string]any{
					"blocked_until": until.UTC().Format(time.RFC3339),
				},
			})
		}
	}

	return authDomain.SessionClaims{}, err
}

// CheckRate admits or rejects one authenticated call through the
// sliding-window limiter.
func (s *sessionUseCase) CheckRate(
	ctx context.Context,
	claims authDomain.SessionClaims,
	sourceIP, requestID string,
) (authDomain.RateLimitResult, error) {
	result := s.limiter.Check(claims.Subject, claims.Tier)
	if result.Allowed {
		return result, nil
	}

	s.recorder.Record(ctx, auditDomain.SecurityEvent{
		Type:      auditDomain.EventRateLimitExceeded,
		ClientID:  claims.Subject,
		SourceIP:  sourceIP,
		RequestID: requestID,
		Details: map[string]any{
			"tier":           string(claims.Tier),
			"limit":          result.Limit,
			"retry_after_ms": result.RetryAfter.Milliseconds(),
		},
	})

	return result, &authDomain.RateLimitExceededError{
		Limit:      result.Limit,
		Window:     result.Window,
		RetryAfter: result.RetryAfter,
	}
}

// keyPrefix truncates a presented key for event details. Raw credentials
// never reach the audit trail.
func keyPrefix(key string) string {
	if len(key) > keyPrefixLength {
		return key[:keyPrefixLength]
	}
	return key
}

// tokenRejectionReason classifies a token validation failure for the event
// trail.
func tokenRejectionReason(err error) string {
	switch {
	case errors.Is(err, authDomain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, authDomain.ErrInvalidSignature):
		return "invalid signature"
	default:
		return "malformed"
	}
}

// NewSessionUseCase creates a SessionUseCase over the auth services.
func NewSessionUseCase(
	credentials authService.CredentialService,
	tokens authService.SessionTokenService,
	limiter authService.RateLimiter,
	reputation authService.IPReputationTracker,
	recorder EventRecorder,
) SessionUseCase {
	return &sessionUseCase{
		credentials: credentials,
		tokens:      tokens,
		limiter:     limiter,
		reputation:  reputation,
		recorder:    recorder,
	}
}
