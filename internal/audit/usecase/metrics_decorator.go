package usecase

import (
	"context"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	"github.com/parsivoice/pasban/internal/metrics"
)

// auditUseCaseWithMetrics decorates AuditUseCase with metrics instrumentation.
type auditUseCaseWithMetrics struct {
	next    AuditUseCase
	metrics metrics.SecurityMetrics
}

// NewAuditUseCaseWithMetrics wraps an AuditUseCase with per-type event counting.
func NewAuditUseCaseWithMetrics(useCase AuditUseCase, m metrics.SecurityMetrics) AuditUseCase {
	return &auditUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Record counts the event by type and delegates.
func (a *auditUseCaseWithMetrics) Record(ctx context.Context, event auditDomain.SecurityEvent) {
	a.metrics.RecordSecurityEvent(ctx, string(event.Type))
	a.next.Record(ctx, event)
}

// Recent delegates without instrumentation.
func (a *auditUseCaseWithMetrics) Recent(limit int) []auditDomain.SecurityEvent {
	return a.next.Recent(limit)
}

// Summary delegates without instrumentation.
func (a *auditUseCaseWithMetrics) Summary(ctx context.Context) auditDomain.Summary {
	return a.next.Summary(ctx)
}

// VerifyArchive delegates without instrumentation.
func (a *auditUseCaseWithMetrics) VerifyArchive(ctx context.Context, batchSize int) (int, error) {
	return a.next.VerifyArchive(ctx, batchSize)
}
