package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/parsivoice/pasban/internal/metrics"
	sandboxDomain "github.com/parsivoice/pasban/internal/sandbox/domain"
	"github.com/parsivoice/pasban/internal/skills/domain"
)

// skillUseCaseWithMetrics decorates SkillUseCase with metrics instrumentation.
type skillUseCaseWithMetrics struct {
	next    SkillUseCase
	metrics metrics.SecurityMetrics
}

// NewSkillUseCaseWithMetrics wraps a SkillUseCase with execution and command
// validation metrics.
func NewSkillUseCaseWithMetrics(useCase SkillUseCase, m metrics.SecurityMetrics) SkillUseCase {
	return &skillUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Route records metrics for the matched skill; unmatched text records nothing.
func (s *skillUseCaseWithMetrics) Route(
	ctx context.Context,
	caller Caller,
	text string,
) (domain.RouteResult, error) {
	start := time.Now()
	result, err := s.next.Route(ctx, caller, text)
	if result.Matched {
		s.observe(ctx, result.Skill, err, time.Since(start))
	}

	return result, err
}

// Execute records metrics for one skill execution.
func (s *skillUseCaseWithMetrics) Execute(
	ctx context.Context,
	caller Caller,
	name string,
	args map[string]any,
	timeout time.Duration,
) (domain.Response, error) {
	start := time.Now()
	response, err := s.next.Execute(ctx, caller, name, args, timeout)
	s.observe(ctx, name, err, time.Since(start))

	return response, err
}

// ExecutePlan records metrics per step, using each step's sandbox duration.
func (s *skillUseCaseWithMetrics) ExecutePlan(
	ctx context.Context,
	caller Caller,
	steps []domain.PlanStep,
) []domain.StepResult {
	results := s.next.ExecutePlan(ctx, caller, steps)
	for _, step := range results {
		s.observe(ctx, step.Skill, step.Err, step.Response.Invocation.Duration)
	}

	return results
}

// List delegates without instrumentation.
func (s *skillUseCaseWithMetrics) List() []domain.Manifest {
	return s.next.List()
}

func (s *skillUseCaseWithMetrics) observe(
	ctx context.Context,
	skill string,
	err error,
	duration time.Duration,
) {
	s.metrics.RecordSkillExecution(ctx, skill, executionStatus(err), duration)
	if verdict, counted := validationVerdict(err); counted {
		s.metrics.RecordCommandValidation(ctx, verdict)
	}
}

// executionStatus maps an execution outcome to the metric status label.
func executionStatus(err error) string {
	var denied *domain.PermissionDeniedError
	var violation *sandboxDomain.SecurityViolationError
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, sandboxDomain.ErrSandboxTimeout):
		return "timeout"
	case errors.As(err, &violation):
		return "rejected"
	case errors.As(err, &denied):
		return "denied"
	default:
		return "failed"
	}
}

// validationVerdict reports the command validator's verdict implied by the
// outcome. Outcomes that never reached the validator (unknown skill,
// permission denied) count nothing.
func validationVerdict(err error) (string, bool) {
	var denied *domain.PermissionDeniedError
	var violation *sandboxDomain.SecurityViolationError
	switch {
	case errors.As(err, &violation):
		return "rejected", true
	case errors.As(err, &denied), errors.Is(err, domain.ErrSkillNotFound):
		return "", false
	default:
		return "accepted", true
	}
}
