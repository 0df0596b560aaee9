package domain

import (
	"fmt"
	"time"

	"github.com/parsivoice/pasban/internal/errors"
)

// Authentication errors.
var (
	// ErrMissingCredential indicates the request carried no credential.
	ErrMissingCredential = errors.Wrap(errors.ErrUnauthorized, "missing credential")

	// ErrInvalidCredential indicates the presented credential did not match
	// the table. Returned for short, blacklisted and unknown keys alike so
	// responses cannot be used to probe the table.
	ErrInvalidCredential = errors.Wrap(errors.ErrUnauthorized, "invalid credential")

	// ErrInvalidToken indicates a session token that is structurally broken.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid session token")

	// ErrInvalidSignature indicates a session token whose signature does not
	// verify. Callers should treat this as a tampering attempt.
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid token signature")

	// ErrTokenExpired indicates a well-signed session token past its expiry.
	// Callers should re-authenticate rather than retry.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "session token expired")
)

// RateLimitExceededError is returned when a sliding-window check rejects a
// call. RetryAfter is the wait until the oldest in-window request leaves the
// window.
type RateLimitExceededError struct {
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf(
		"rate limit exceeded: %d requests per %s, retry after %s",
		e.Limit, e.Window, e.RetryAfter.Round(time.Second),
	)
}

// Unwrap links the error to the ErrRateLimited sentinel.
func (e *RateLimitExceededError) Unwrap() error {
	return errors.ErrRateLimited
}

// IPBlockedError is returned when the caller's source address holds an
// active reputation block.
type IPBlockedError struct {
	IP    string
	Until time.Time
}

func (e *IPBlockedError) Error() string {
	return fmt.Sprintf("ip %s blocked until %s", e.IP, e.Until.UTC().Format(time.RFC3339))
}

// Unwrap links the error to the ErrLocked sentinel.
func (e *IPBlockedError) Unwrap() error {
	return errors.ErrLocked
}
