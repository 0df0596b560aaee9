// Package usecase orchestrates the authentication chain: IP block
// enforcement, credential validation feeding the reputation tracker, session
// token issuance and the sliding-window rate check for authenticated calls.
// Every outcome is recorded as a security event.
package usecase

import (
	"context"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
)

// EventRecorder defines the interface for recording security events.
type EventRecorder interface {
	Record(ctx context.Context, event auditDomain.SecurityEvent)
}

// Session is an issued session token with its decoded claims.
type Session struct {
	Token  string
	Claims authDomain.SessionClaims
}

// SessionUseCase defines the interface for the authentication chain.
type SessionUseCase interface {
	// IssueSession authenticates a credential and issues a session token.
	// The source address is checked against the reputation tracker first;
	// credential failures feed it, and the failure that crosses a block
	// threshold returns the block instead of the credential error.
	IssueSession(ctx context.Context, key, sourceIP, requestID string) (Session, error)

	// Authenticate validates a bearer token into session claims. Tampered
	// tokens count as reputation failures for the source address; expired
	// tokens do not.
	Authenticate(ctx context.Context, token, sourceIP, requestID string) (authDomain.SessionClaims, error)

	// CheckRate runs the sliding-window limiter for an authenticated call.
	// The result carries limit metadata for response headers whether or not
	// the call was admitted.
	CheckRate(
		ctx context.Context,
		claims authDomain.SessionClaims,
		sourceIP, requestID string,
	) (authDomain.RateLimitResult, error)
}
