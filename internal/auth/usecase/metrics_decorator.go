package usecase

import (
	"context"
	"errors"

	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	"github.com/parsivoice/pasban/internal/metrics"
)

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics
// instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.SecurityMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with authentication and
// throttling metrics.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.SecurityMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// IssueSession records the attempt outcome and block rejections.
func (s *sessionUseCaseWithMetrics) IssueSession(
	ctx context.Context,
	key, sourceIP, requestID string,
) (Session, error) {
	session, err := s.next.IssueSession(ctx, key, sourceIP, requestID)

	s.metrics.RecordAuthAttempt(ctx, authStatus(err))
	var blocked *authDomain.IPBlockedError
	if errors.As(err, &blocked) {
		s.metrics.RecordIPBlock(ctx)
	}

	return session, err
}

// Authenticate delegates without instrumentation; token rejections are
// already counted through the recorded security events.
func (s *sessionUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	token, sourceIP, requestID string,
) (authDomain.SessionClaims, error) {
	return s.next.Authenticate(ctx, token, sourceIP, requestID)
}

// CheckRate records sliding-window rejections per tier.
func (s *sessionUseCaseWithMetrics) CheckRate(
	ctx context.Context,
	claims authDomain.SessionClaims,
	sourceIP, requestID string,
) (authDomain.RateLimitResult, error) {
	result, err := s.next.CheckRate(ctx, claims, sourceIP, requestID)
	if !result.Allowed {
		s.metrics.RecordRateLimitRejection(ctx, string(claims.Tier))
	}

	return result, err
}

// authStatus maps a session issuance outcome to the metric status label.
func authStatus(err error) string {
	var blocked *authDomain.IPBlockedError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &blocked):
		return "blocked"
	default:
		return "failure"
	}
}
