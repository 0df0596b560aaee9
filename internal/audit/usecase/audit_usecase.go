package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	"github.com/parsivoice/pasban/internal/audit/service"
	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// warnEvents lists the event types logged at warn level; everything else is info.
var warnEvents = map[auditDomain.EventType]bool{
	auditDomain.EventAuthFailure:       true,
	auditDomain.EventTokenRejected:     true,
	auditDomain.EventRateLimitExceeded: true,
	auditDomain.EventIPBlocked:         true,
	auditDomain.EventCommandRejected:   true,
	auditDomain.EventPermissionDenied:  true,
	auditDomain.EventSkillFailed:       true,
	auditDomain.EventSandboxTimeout:    true,
}

// auditUseCase implements AuditUseCase over the ring, the logger and the
// optional signed SQL archive.
type auditUseCase struct {
	eventLog   service.EventLog
	signer     service.EventSigner
	signingKey []byte
	archive    EventRepository
	limiter    RateLimitStats
	reputation ReputationStats
	logger     *slog.Logger
}

// Record ingests one security event. The ring append cannot fail; a failing
// archive write is logged and swallowed so audit plumbing never breaks the
// serving path.
func (a *auditUseCase) Record(ctx context.Context, event auditDomain.SecurityEvent) {
	event.ID = uuid.Must(uuid.NewV7())
	// Microsecond truncation matches the archive column precision; a stored
	// event must re-canonicalize to exactly the signed bytes.
	event.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if a.archive != nil && len(a.signingKey) > 0 {
		signature, err := a.signer.Sign(a.signingKey, &event)
		if err != nil {
			a.logger.ErrorContext(ctx, "failed to sign security event",
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
		} else {
			event.Signature = signature
		}
	}

	a.eventLog.Record(event)

	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
	}
	if event.ClientID != "" {
		attrs = append(attrs, slog.String("client_id", event.ClientID))
	}
	if event.SourceIP != "" {
		attrs = append(attrs, slog.String("source_ip", event.SourceIP))
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		attrs = append(attrs, slog.Any("details", event.Details))
	}

	if warnEvents[event.Type] {
		a.logger.WarnContext(ctx, "security event", attrs...)
	} else {
		a.logger.InfoContext(ctx, "security event", attrs...)
	}

	if a.archive != nil {
		if err := a.archive.Create(ctx, &event); err != nil {
			a.logger.ErrorContext(ctx, "failed to archive security event",
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
		}
	}
}

// Recent returns up to limit ring events, newest first.
func (a *auditUseCase) Recent(limit int) []auditDomain.SecurityEvent {
	return a.eventLog.Recent(limit)
}

// Summary aggregates ring counters with the live auth-layer gauges.
func (a *auditUseCase) Summary(ctx context.Context) auditDomain.Summary {
	return auditDomain.Summary{
		TotalRecorded: a.eventLog.TotalRecorded(),
		RingCapacity:  a.eventLog.Capacity(),
		CountsByType:  a.eventLog.CountsByType(),
		BlockedIPs:    a.reputation.BlockedCount(),
		ActiveBuckets: a.limiter.ActiveBuckets(),
		GeneratedAt:   time.Now().UTC(),
	}
}

// VerifyArchive pages through the archive verifying every signature.
// Returns the number of verified events; the first mismatch aborts the walk.
func (a *auditUseCase) VerifyArchive(ctx context.Context, batchSize int) (int, error) {
	if a.archive == nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "audit archive is not configured")
	}
	if len(a.signingKey) == 0 {
		return 0, auditDomain.ErrSigningKeyMissing
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	verified := 0
	for offset := 0; ; offset += batchSize {
		events, err := a.archive.List(ctx, offset, batchSize)
		if err != nil {
			return verified, apperrors.Wrap(err, "failed to list archived events")
		}
		if len(events) == 0 {
			return verified, nil
		}

		for _, event := range events {
			if err := a.signer.Verify(a.signingKey, event); err != nil {
				return verified, apperrors.Wrapf(err, "event %s failed verification", event.ID)
			}
			verified++
		}

		if len(events) < batchSize {
			return verified, nil
		}
	}
}

// NewAuditUseCase creates an AuditUseCase. The archive repository may be nil,
// which disables archiving and makes VerifyArchive fail.
func NewAuditUseCase(
	eventLog service.EventLog,
	signer service.EventSigner,
	signingKey []byte,
	archive EventRepository,
	limiter RateLimitStats,
	reputation ReputationStats,
	logger *slog.Logger,
) AuditUseCase {
	return &auditUseCase{
		eventLog:   eventLog,
		signer:     signer,
		signingKey: signingKey,
		archive:    archive,
		limiter:    limiter,
		reputation: reputation,
		logger:     logger,
	}
}
