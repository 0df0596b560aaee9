// Package service provides technical services for the auth chain.
//
// This package implements credential generation and validation, session token
// signing, the sliding-window rate limiter, and the IP reputation tracker.
// All services are safe for concurrent use.
package service

import (
	"time"

	"github.com/parsivoice/pasban/internal/auth/domain"
)

// CredentialService defines credential generation and validation over the
// immutable credential table.
type CredentialService interface {
	// Validate checks a presented key against the credential table.
	// Keys below the minimum length or matching a weak-pattern blacklist are
	// rejected without a table scan. Table comparison is constant-time.
	// On failure the returned error unwraps to domain.ErrInvalidCredential.
	Validate(key string) (domain.Identity, error)

	// GenerateKey creates a new cryptographically secure random API key.
	// Returns both the plain key (to be shared with the caller once) and its
	// hex SHA-256 digest (to be stored in the credential file).
	GenerateKey() (plainKey string, keyDigest string, err error)

	// DigestKey computes the hex SHA-256 digest of a plain key.
	DigestKey(plainKey string) string

	// HashPassphrase hashes a user-chosen passphrase with argon2id.
	// Used for local-tier credentials where the secret is low entropy.
	HashPassphrase(passphrase string) (string, error)
}

// SessionTokenService signs and validates session tokens.
type SessionTokenService interface {
	// Issue produces a signed token for an authenticated identity with
	// issued_at = now and expiry = now + the configured TTL.
	Issue(identity domain.Identity) (token string, claims domain.SessionClaims, err error)

	// Validate verifies a token against the current time. Failures are
	// domain.ErrInvalidToken (malformed), domain.ErrInvalidSignature
	// (tampered) or domain.ErrTokenExpired (well signed, past expiry).
	Validate(token string) (domain.SessionClaims, error)

	// ValidateAt verifies a token against an explicit instant. Exists so
	// expiry behavior can be exercised deterministically.
	ValidateAt(token string, now time.Time) (domain.SessionClaims, error)
}

// RateLimiter is the sliding-window request counter keyed by client identity.
type RateLimiter interface {
	// Check prunes the client's window and admits or rejects the call.
	// Rejected calls are not recorded.
	Check(clientID string, tier domain.Tier) domain.RateLimitResult

	// ActiveBuckets reports how many clients currently hold at least one
	// in-window timestamp.
	ActiveBuckets() int
}

// IPReputationTracker records failed attempts per source address and issues
// temporary blocks.
type IPReputationTracker interface {
	// TrackFailure appends a failure for ip and applies the block thresholds.
	// Returns the resulting block state.
	TrackFailure(ip string) (blocked bool, until time.Time)

	// IsBlocked reports whether ip holds a non-expired block. Expired blocks
	// are removed by this check.
	IsBlocked(ip string) (bool, time.Time)

	// BlockedCount reports the number of currently blocked addresses.
	BlockedCount() int
}
