// Package usecase orchestrates security event recording: every enforcement
// point funnels its outcome through the recorder, which feeds the in-memory
// ring, the structured log and the optional SQL archive.
package usecase

import (
	"context"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
)

// EventRepository defines the interface for archived security event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *auditDomain.SecurityEvent) error
	List(ctx context.Context, offset, limit int) ([]*auditDomain.SecurityEvent, error)
}

// RateLimitStats reports the live rate-limiter gauge for the audit summary.
type RateLimitStats interface {
	ActiveBuckets() int
}

// ReputationStats reports the live blocked-IP gauge for the audit summary.
type ReputationStats interface {
	BlockedCount() int
}

// AuditUseCase defines the interface for recording and querying security events.
type AuditUseCase interface {
	// Record ingests one security event: assigns ID and timestamp, appends it
	// to the ring, logs it, and archives it when the archive is configured.
	// Recording never fails the caller; archive errors are logged.
	Record(ctx context.Context, event auditDomain.SecurityEvent)

	// Recent returns up to limit ring events, newest first.
	Recent(limit int) []auditDomain.SecurityEvent

	// Summary aggregates event counts with the live auth-layer gauges.
	Summary(ctx context.Context) auditDomain.Summary

	// VerifyArchive re-verifies the signature of every archived event in
	// batches, returning the number of events that passed. Fails on the
	// first mismatch.
	VerifyArchive(ctx context.Context, batchSize int) (int, error)
}
