package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
)

// countingAuthMetrics captures auth, block and rate-limit metric calls.
type countingAuthMetrics struct {
	authStatuses   []string
	ipBlocks       int
	rateRejections []string
}

func (c *countingAuthMetrics) RecordAuthAttempt(_ context.Context, status string) {
	c.authStatuses = append(c.authStatuses, status)
}

func (c *countingAuthMetrics) RecordRateLimitRejection(_ context.Context, tier string) {
	c.rateRejections = append(c.rateRejections, tier)
}

func (c *countingAuthMetrics) RecordIPBlock(context.Context) { c.ipBlocks++ }

func (c *countingAuthMetrics) RecordCommandValidation(context.Context, string) {}

func (c *countingAuthMetrics) RecordSkillExecution(context.Context, string, string, time.Duration) {
}

func (c *countingAuthMetrics) RecordSecurityEvent(context.Context, string) {}

// stubSessionUseCase returns scripted results for decoration tests.
type stubSessionUseCase struct {
	session    Session
	sessionErr error
	claims     authDomain.SessionClaims
	claimsErr  error
	rateResult authDomain.RateLimitResult
	rateErr    error
}

func (s *stubSessionUseCase) IssueSession(context.Context, string, string, string) (Session, error) {
	return s.session, s.sessionErr
}

func (s *stubSessionUseCase) Authenticate(
	context.Context,
	string, string, string,
) (authDomain.SessionClaims, error) {
	return s.claims, s.claimsErr
}

func (s *stubSessionUseCase) CheckRate(
	context.Context,
	authDomain.SessionClaims,
	string, string,
) (authDomain.RateLimitResult, error) {
	return s.rateResult, s.rateErr
}

func TestSessionUseCaseWithMetrics_IssueSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CountsSuccess", func(t *testing.T) {
		m := &countingAuthMetrics{}
		useCase := NewSessionUseCaseWithMetrics(&stubSessionUseCase{session: Session{Token: "tok"}}, m)

		session, err := useCase.IssueSession(ctx, "key", "127.0.0.1", "req-1")

		require.NoError(t, err)
		assert.Equal(t, "tok", session.Token)
		assert.Equal(t, []string{"success"}, m.authStatuses)
		assert.Zero(t, m.ipBlocks)
	})

	t.Run("Error_CountsFailure", func(t *testing.T) {
		m := &countingAuthMetrics{}
		next := &stubSessionUseCase{sessionErr: authDomain.ErrInvalidCredential}
		useCase := NewSessionUseCaseWithMetrics(next, m)

		_, err := useCase.IssueSession(ctx, "key", "127.0.0.1", "req-2")

		require.Error(t, err)
		assert.Equal(t, []string{"failure"}, m.authStatuses)
		assert.Zero(t, m.ipBlocks)
	})

	t.Run("Error_CountsBlockRejection", func(t *testing.T) {
		m := &countingAuthMetrics{}
		next := &stubSessionUseCase{
			sessionErr: &authDomain.IPBlockedError{IP: "10.0.0.7", Until: time.Now().Add(time.Minute)},
		}
		useCase := NewSessionUseCaseWithMetrics(next, m)

		_, err := useCase.IssueSession(ctx, "key", "10.0.0.7", "req-3")

		require.Error(t, err)
		assert.Equal(t, []string{"blocked"}, m.authStatuses)
		assert.Equal(t, 1, m.ipBlocks)
	})
}

func TestSessionUseCaseWithMetrics_Authenticate(t *testing.T) {
	m := &countingAuthMetrics{}
	next := &stubSessionUseCase{claims: authDomain.SessionClaims{Subject: "assistant-ui"}}
	useCase := NewSessionUseCaseWithMetrics(next, m)

	claims, err := useCase.Authenticate(context.Background(), "tok", "127.0.0.1", "req-4")

	require.NoError(t, err)
	assert.Equal(t, "assistant-ui", claims.Subject)
	assert.Empty(t, m.authStatuses)
	assert.Empty(t, m.rateRejections)
}

func TestSessionUseCaseWithMetrics_CheckRate(t *testing.T) {
	claims := authDomain.SessionClaims{Subject: "assistant-ui", Tier: authDomain.TierUser}

	t.Run("Success_AllowedRecordsNothing", func(t *testing.T) {
		m := &countingAuthMetrics{}
		next := &stubSessionUseCase{rateResult: authDomain.RateLimitResult{Allowed: true}}
		useCase := NewSessionUseCaseWithMetrics(next, m)

		_, err := useCase.CheckRate(context.Background(), claims, "127.0.0.1", "req-5")

		require.NoError(t, err)
		assert.Empty(t, m.rateRejections)
	})

	t.Run("Error_RejectionCountsTier", func(t *testing.T) {
		m := &countingAuthMetrics{}
		next := &stubSessionUseCase{
			rateResult: authDomain.RateLimitResult{Allowed: false, Limit: 5, Window: time.Hour},
			rateErr:    &authDomain.RateLimitExceededError{Limit: 5, Window: time.Hour},
		}
		useCase := NewSessionUseCaseWithMetrics(next, m)

		_, err := useCase.CheckRate(context.Background(), claims, "127.0.0.1", "req-6")

		require.Error(t, err)
		assert.Equal(t, []string{"user"}, m.rateRejections)
	})
}
