// Package service provides the in-memory event ring and the archive signer.
package service

import (
	"github.com/parsivoice/pasban/internal/audit/domain"
)

// EventLog is a bounded in-memory store of recent security events. Once full
// the oldest event is overwritten; per-type counters keep counting.
type EventLog interface {
	// Record appends an event, evicting the oldest when the ring is full.
	Record(event domain.SecurityEvent)

	// Recent returns up to limit events, newest first.
	Recent(limit int) []domain.SecurityEvent

	// CountsByType returns the number of events recorded per type since
	// startup, including events already evicted from the ring.
	CountsByType() map[domain.EventType]int64

	// TotalRecorded returns the number of events recorded since startup.
	TotalRecorded() int64

	// Capacity returns the ring size.
	Capacity() int
}

// EventSigner signs and verifies archived security events.
type EventSigner interface {
	// Sign computes the HMAC-SHA256 signature of the canonicalized event.
	Sign(key []byte, event *domain.SecurityEvent) ([]byte, error)

	// Verify recomputes the signature and compares it against the stored one.
	// Returns domain.ErrSignatureInvalid on mismatch.
	Verify(key []byte, event *domain.SecurityEvent) error
}
