package domain

import (
	"time"
)

// SessionClaims is the signed payload of a session token. Field order and
// names are part of the wire format; changing them invalidates every
// outstanding token.
type SessionClaims struct {
	// TokenID uniquely identifies the token (UUIDv7).
	TokenID string `cbor:"token_id"`

	// Subject is the credential ID the token was issued to.
	Subject string `cbor:"subject"`

	// Tier is the caller's tier at issue time.
	Tier Tier `cbor:"tier"`

	// Permissions is the caller's effective permission set at issue time.
	Permissions []string `cbor:"permissions"`

	// IssuedAt is the issue instant as a Unix timestamp in seconds.
	IssuedAt int64 `cbor:"issued_at"`

	// ExpiresAt is the expiry instant as a Unix timestamp in seconds.
	ExpiresAt int64 `cbor:"expires_at"`
}

// ExpiredAt reports whether the claims are expired at the given instant.
func (c SessionClaims) ExpiredAt(now time.Time) bool {
	return !now.Before(time.Unix(c.ExpiresAt, 0))
}

// HasPermission reports whether the claims' permission set contains name or
// the wildcard.
func (c SessionClaims) HasPermission(name string) bool {
	for _, p := range c.Permissions {
		if p == PermissionWildcard || p == name {
			return true
		}
	}
	return false
}

// Identity converts the claims back into an Identity for permission checks
// downstream of authentication.
func (c SessionClaims) Identity() Identity {
	return Identity{
		CredentialID: c.Subject,
		Tier:         c.Tier,
		Permissions:  append([]string(nil), c.Permissions...),
	}
}
