package service

import (
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/parsivoice/pasban/internal/auth/domain"
	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// sessionTokenService implements SessionTokenService with ed25519 signatures
// over CBOR-encoded claims. The wire form is base64url(payload || signature);
// the signature always occupies the final ed25519.SignatureSize bytes.
type sessionTokenService struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
	ttl     time.Duration
	now     func() time.Time
}

// Issue produces a signed token for an authenticated identity.
func (s *sessionTokenService) Issue(identity domain.Identity) (string, domain.SessionClaims, error) {
	now := s.now().UTC()
	claims := domain.SessionClaims{
		TokenID:     uuid.Must(uuid.NewV7()).String(),
		Subject:     identity.CredentialID,
		Tier:        identity.Tier,
		Permissions: identity.Permissions,
		IssuedAt:    now.Unix(),
		ExpiresAt:   now.Add(s.ttl).Unix(),
	}

	payload, err := cbor.Marshal(claims)
	if err != nil {
		return "", domain.SessionClaims{}, apperrors.Wrap(err, "failed to encode session claims")
	}

	signature := ed25519.Sign(s.private, payload)
	raw := make([]byte, 0, len(payload)+len(signature))
	raw = append(raw, payload...)
	raw = append(raw, signature...)

	return base64.RawURLEncoding.EncodeToString(raw), claims, nil
}

// Validate verifies a token against the current time.
func (s *sessionTokenService) Validate(token string) (domain.SessionClaims, error) {
	return s.ValidateAt(token, s.now())
}

// ValidateAt verifies a token against an explicit instant. The signature is
// checked before the claims are decoded so a tampered token is always
// reported as ErrInvalidSignature, never as expired.
func (s *sessionTokenService) ValidateAt(token string, now time.Time) (domain.SessionClaims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}
	if len(raw) <= ed25519.SignatureSize {
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}

	payload := raw[:len(raw)-ed25519.SignatureSize]
	signature := raw[len(raw)-ed25519.SignatureSize:]
	if !ed25519.Verify(s.public, payload, signature) {
		return domain.SessionClaims{}, domain.ErrInvalidSignature
	}

	var claims domain.SessionClaims
	if err := cbor.Unmarshal(payload, &claims); err != nil {
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}

	if claims.ExpiredAt(now) {
		return domain.SessionClaims{}, domain.ErrTokenExpired
	}

	return claims, nil
}

// NewSessionTokenService creates a SessionTokenService signing with the given
// ed25519 private key.
func NewSessionTokenService(private ed25519.PrivateKey, ttl time.Duration) SessionTokenService {
	return &sessionTokenService{
		private: private,
		public:  private.Public().(ed25519.PublicKey),
		ttl:     ttl,
		now:     time.Now,
	}
}
