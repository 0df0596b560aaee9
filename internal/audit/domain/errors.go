package domain

import (
	"github.com/parsivoice/pasban/internal/errors"
)

// Audit archive errors.
var (
	// ErrSignatureInvalid indicates an archived event failed HMAC verification.
	ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidInput, "security event signature is invalid")

	// ErrSigningKeyMissing indicates archive signing was requested without a key.
	ErrSigningKeyMissing = errors.Wrap(errors.ErrInvalidInput, "audit signing key is not configured")
)
