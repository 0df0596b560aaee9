package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SecurityMetrics defines the interface for recording security decisions.
// Implementations track authentication outcomes, throttling, command verdicts
// and skill executions for observability.
type SecurityMetrics interface {
	// RecordAuthAttempt records one authentication attempt.
	// Status examples: "success", "failure", "blocked"
	RecordAuthAttempt(ctx context.Context, status string)

	// RecordRateLimitRejection records a sliding-window rejection for a tier.
	RecordRateLimitRejection(ctx context.Context, tier string)

	// RecordIPBlock records a rejection caused by a blocked source address.
	RecordIPBlock(ctx context.Context)

	// RecordCommandValidation records a sandbox command verdict.
	// Status examples: "accepted", "rejected"
	RecordCommandValidation(ctx context.Context, status string)

	// RecordSkillExecution records a skill run with its final status and
	// duration. Status examples: "completed", "failed", "timeout"
	RecordSkillExecution(ctx context.Context, skill, status string, duration time.Duration)

	// RecordSecurityEvent counts recorded audit events by type.
	RecordSecurityEvent(ctx context.Context, eventType string)
}

// securityMetrics implements SecurityMetrics using OpenTelemetry metrics.
type securityMetrics struct {
	authCounter      metric.Int64Counter
	rateLimitCounter metric.Int64Counter
	ipBlockCounter   metric.Int64Counter
	commandCounter   metric.Int64Counter
	skillCounter     metric.Int64Counter
	skillDuration    metric.Float64Histogram
	eventCounter     metric.Int64Counter
}

// NewSecurityMetrics creates a SecurityMetrics implementation using the provided
// meter provider. The namespace parameter is used as a prefix for all metric
// names (e.g., "pasban"). Returns error if meters cannot be initialized.
func NewSecurityMetrics(meterProvider metric.MeterProvider, namespace string) (SecurityMetrics, error) {
	meter := meterProvider.Meter(namespace)

	authCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_auth_attempts_total", namespace),
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth counter: %w", err)
	}

	rateLimitCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_rate_limit_rejections_total", namespace),
		metric.WithDescription("Total number of sliding-window rejections"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit counter: %w", err)
	}

	ipBlockCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_ip_blocks_total", namespace),
		metric.WithDescription("Total number of rejections caused by blocked addresses"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ip block counter: %w", err)
	}

	commandCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_command_validations_total", namespace),
		metric.WithDescription("Total number of sandbox command verdicts"),
		metric.WithUnit("{verdict}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create command counter: %w", err)
	}

	skillCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_skill_executions_total", namespace),
		metric.WithDescription("Total number of skill executions"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create skill counter: %w", err)
	}

	skillDuration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_skill_duration_seconds", namespace),
		metric.WithDescription("Duration of skill executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create skill duration histogram: %w", err)
	}

	eventCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_security_events_total", namespace),
		metric.WithDescription("Total number of recorded security events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event counter: %w", err)
	}

	return &securityMetrics{
		authCounter:      authCounter,
		rateLimitCounter: rateLimitCounter,
		ipBlockCounter:   ipBlockCounter,
		commandCounter:   commandCounter,
		skillCounter:     skillCounter,
		skillDuration:    skillDuration,
		eventCounter:     eventCounter,
	}, nil
}

// RecordAuthAttempt increments the auth counter with a status label.
func (s *securityMetrics) RecordAuthAttempt(ctx context.Context, status string) {
	s.authCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordRateLimitRejection increments the rejection counter with a tier label.
func (s *securityMetrics) RecordRateLimitRejection(ctx context.Context, tier string) {
	s.rateLimitCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("tier", tier)),
	)
}

// RecordIPBlock increments the block counter.
func (s *securityMetrics) RecordIPBlock(ctx context.Context) {
	s.ipBlockCounter.Add(ctx, 1)
}

// RecordCommandValidation increments the verdict counter with a status label.
func (s *securityMetrics) RecordCommandValidation(ctx context.Context, status string) {
	s.commandCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordSkillExecution increments the execution counter and records the
// duration histogram with skill and status labels.
func (s *securityMetrics) RecordSkillExecution(
	ctx context.Context,
	skill, status string,
	duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("skill", skill),
		attribute.String("status", status),
	)
	s.skillCounter.Add(ctx, 1, attrs)
	s.skillDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordSecurityEvent increments the event counter with a type label.
func (s *securityMetrics) RecordSecurityEvent(ctx context.Context, eventType string) {
	s.eventCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("type", eventType)),
	)
}

// NoOpSecurityMetrics is a no-op implementation of SecurityMetrics for when
// metrics are disabled.
type NoOpSecurityMetrics struct{}

// NewNoOpSecurityMetrics creates a no-op SecurityMetrics implementation.
func NewNoOpSecurityMetrics() SecurityMetrics {
	return &NoOpSecurityMetrics{}
}

// RecordAuthAttempt does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordAuthAttempt(ctx context.Context, status string) {
	// No-op
}

// RecordRateLimitRejection does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordRateLimitRejection(ctx context.Context, tier string) {
	// No-op
}

// RecordIPBlock does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordIPBlock(ctx context.Context) {
	// No-op
}

// RecordCommandValidation does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordCommandValidation(ctx context.Context, status string) {
	// No-op
}

// RecordSkillExecution does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordSkillExecution(
	ctx context.Context,
	skill, status string,
	duration time.Duration,
) {
	// No-op
}

// RecordSecurityEvent does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordSecurityEvent(ctx context.Context, eventType string) {
	// No-op
}
