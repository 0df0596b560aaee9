// Package domain defines the security event model shared by the in-memory
// ring, the SQL archive and the audit HTTP surface.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a security event.
type EventType string

const (
	EventAuthSuccess         EventType = "auth_success"
	EventAuthFailure         EventType = "auth_failure"
	EventTokenRejected       EventType = "token_rejected"
	EventRateLimitExceeded   EventType = "rate_limit_exceeded"
	EventIPBlocked           EventType = "ip_blocked"
	EventCommandRejected     EventType = "command_rejected"
	EventPermissionDenied    EventType = "permission_denied"
	EventPermissionRequested EventType = "permission_requested"
	EventPermissionGranted   EventType = "permission_granted"
	EventPermissionRevoked   EventType = "permission_revoked"
	EventSkillExecuted       EventType = "skill_executed"
	EventSkillFailed         EventType = "skill_failed"
	EventSandboxTimeout      EventType = "sandbox_timeout"
)

// SecurityEvent records one security-relevant decision: an authentication
// outcome, a rejected command, a permission change or a skill execution.
// ClientID identifies the credential when known; SourceIP the peer address.
// The details map must never carry raw credentials or tokens, only truncated
// prefixes and reason strings.
type SecurityEvent struct {
	ID        uuid.UUID
	Type      EventType
	ClientID  string
	SourceIP  string
	RequestID string
	Details   map[string]any
	Signature []byte
	CreatedAt time.Time
}

// Summary aggregates the audit state for the summary endpoint: per-type
// counts since startup plus the live blocked-IP and rate-bucket gauges.
type Summary struct {
	TotalRecorded int64
	RingCapacity  int
	CountsByType  map[EventType]int64
	BlockedIPs    int
	ActiveBuckets int
	GeneratedAt   time.Time
}
