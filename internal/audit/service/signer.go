package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/parsivoice/pasban/internal/audit/domain"
)

type eventSigner struct{}

// NewEventSigner creates an HMAC-based event signer using HKDF-SHA256 for
// key derivation and HMAC-SHA256 for signature generation.
func NewEventSigner() EventSigner {
	return &eventSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// configured master key, keeping the signing key separate from the key the
// operator actually holds.
// Info parameter: "security-event-signing-v1" (versioned for future algorithm changes).
func (s *eventSigner) deriveSigningKey(masterKey []byte) ([]byte, error) {
	info := []byte("security-event-signing-v1")
	hash := sha256.New
	hkdf := hkdf.New(hash, masterKey, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeEvent converts an event to its canonical byte representation.
// Format: id || type || client_id || source_ip || request_id || details || created_at
// Variable-length fields are length-prefixed so no two events share an encoding.
func (s *eventSigner) canonicalizeEvent(event *domain.SecurityEvent) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, event.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.Type))
	buf = appendLengthPrefixed(buf, []byte(event.ClientID))
	buf = appendLengthPrefixed(buf, []byte(event.SourceIP))
	buf = appendLengthPrefixed(buf, []byte(event.RequestID))

	if event.Details != nil {
		detailBytes, err := json.Marshal(event.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event details: %w", err)
		}
		buf = appendLengthPrefixed(buf, detailBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(event.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates the HMAC-SHA256 signature for the event.
// Returns a 32-byte signature or an error if signing fails.
func (s *eventSigner) Sign(key []byte, event *domain.SecurityEvent) ([]byte, error) {
	signingKey, err := s.deriveSigningKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer zero(signingKey)

	canonical, err := s.canonicalizeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	signature := mac.Sum(nil)

	return signature, nil
}

// Verify checks the stored signature against a fresh computation.
// Returns nil if valid, domain.ErrSignatureInvalid if tampered or invalid.
func (s *eventSigner) Verify(key []byte, event *domain.SecurityEvent) error {
	expectedSig, err := s.Sign(key, event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(event.Signature, expectedSig) {
		return domain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites sensitive data in memory with zeros so derived key material
// does not linger after use.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
