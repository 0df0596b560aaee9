package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/allisson/go-pwdhash"

	"github.com/parsivoice/pasban/internal/auth/domain"
	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// weakPatterns are substrings that disqualify a key before any table lookup.
// Keys carrying them are either defaults that shipped in old builds or
// obvious guesses; rejecting them early keeps garbage out of the argon2 path.
var weakPatterns = []string{
	"password",
	"123456",
	"qwerty",
	"secret",
	"admin",
	"letmein",
	"pasban-demo",
}

// credentialService implements CredentialService over an immutable table.
type credentialService struct {
	table        *domain.CredentialTable
	hasher       *pwdhash.PasswordHasher
	minKeyLength int
}

// Validate checks a presented key against the credential table, fail-closed.
// Digest entries are scanned without early exit so the comparison time does
// not depend on which entry matched; passphrase entries go through argon2id
// verification only after no digest matched.
func (c *credentialService) Validate(key string) (domain.Identity, error) {
	if len(key) < c.minKeyLength {
		return domain.Identity{}, rejectedError("below_minimum_length")
	}

	lowered := strings.ToLower(key)
	for _, pattern := range weakPatterns {
		if strings.Contains(lowered, pattern) {
			return domain.Identity{}, rejectedError("blacklisted_pattern")
		}
	}

	digest := []byte(c.DigestKey(key))

	// Scan every digest entry; remember the first match without breaking out.
	match := -1
	for i, credential := range c.table.Credentials() {
		if credential.KeyDigest == "" {
			continue
		}
		if subtle.ConstantTimeCompare(digest, []byte(credential.KeyDigest)) == 1 && match == -1 {
			match = i
		}
	}

	if match == -1 {
		for i, credential := range c.table.Credentials() {
			if credential.KeyHash == "" {
				continue
			}
			if ok, err := c.hasher.Verify([]byte(key), credential.KeyHash); err == nil && ok {
				match = i
				break
			}
		}
	}

	if match == -1 {
		return domain.Identity{}, rejectedError("unknown_key")
	}

	credential := c.table.Credentials()[match]
	return domain.Identity{
		CredentialID: credential.ID,
		Tier:         credential.Tier,
		Permissions:  c.table.PermissionsFor(credential),
	}, nil
}

// GenerateKey creates a new cryptographically secure 32-byte random API key.
// The key is base64 URL-encoded; the digest is what goes into the table.
func (c *credentialService) GenerateKey() (plainKey string, keyDigest string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random key")
	}

	plainKey = base64.URLEncoding.EncodeToString(randomBytes)
	keyDigest = c.DigestKey(plainKey)

	return plainKey, keyDigest, nil
}

// DigestKey hashes a plain key using SHA-256.
// Returns the digest as a hexadecimal string.
func (c *credentialService) DigestKey(plainKey string) string {
	digest := sha256.Sum256([]byte(plainKey))
	return hex.EncodeToString(digest[:])
}

// HashPassphrase hashes a user-chosen passphrase using Argon2id.
func (c *credentialService) HashPassphrase(passphrase string) (string, error) {
	hash, err := c.hasher.Hash([]byte(passphrase))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash passphrase")
	}
	return hash, nil
}

// rejectedError builds the audit-friendly rejection error. The reason stays
// in logs and events; the caller-facing response is the same for every kind.
func rejectedError(reason string) error {
	return apperrors.Wrap(domain.ErrInvalidCredential, reason)
}

// NewCredentialService creates a CredentialService over the given table.
// Uses the Moderate argon2id policy for passphrase entries.
func NewCredentialService(table *domain.CredentialTable, minKeyLength int) CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &credentialService{
		table:        table,
		hasher:       hasher,
		minKeyLength: minKeyLength,
	}
}
