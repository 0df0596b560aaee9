package usecase

import (
	"context"
	"errors"
	"slices"
	"time"
	"unicode/utf8"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	apperrors "github.com/parsivoice/pasban/internal/errors"
	sandboxDomain "github.com/parsivoice/pasban/internal/sandbox/domain"
	"github.com/parsivoice/pasban/internal/skills/domain"
	"github.com/parsivoice/pasban/internal/skills/service"
)

// maxDetailLength caps free-text fields (stderr, error strings) copied into
// audit event details.
const maxDetailLength = 256

// skillUseCase implements the SkillUseCase interface over the intent router.
type skillUseCase struct {
	router     service.IntentRouter
	manifests  []domain.Manifest
	recorder   EventRecorder
	maxTimeout time.Duration
}

// Route dispatches text through the router and records an event for the
// matched skill's outcome. An unmatched utterance records nothing.
func (s *skillUseCase) Route(
	ctx context.Context,
	caller Caller,
	text string,
) (domain.RouteResult, error) {
	result, err := s.router.Route(ctx, text, caller.Permissions)
	if result.Matched {
		s.record(ctx, caller, result.Skill, result.Response, err)
	}

	return result, err
}

// Execute runs one skill by name with the caller's permissions.
func (s *skillUseCase) Execute(
	ctx context.Context,
	caller Caller,
	name string,
	args map[string]any,
	timeout time.Duration,
) (domain.Response, error) {
	skill, found := s.router.Find(name)
	if !found {
		err := apperrors.Wrapf(domain.ErrSkillNotFound, "skill %q", name)
		s.record(ctx, caller, name, domain.Response{}, err)
		return domain.Response{}, err
	}

	request := domain.Request{
		Args:        args,
		Timeout:     s.clampTimeout(timeout),
		Permissions: caller.Permissions,
	}
	response, err := skill.Handle(ctx, request)
	s.record(ctx, caller, name, response, err)

	return response, err
}

// ExecutePlan runs the plan through the router and records one event per step.
func (s *skillUseCase) ExecutePlan(
	ctx context.Context,
	caller Caller,
	steps []domain.PlanStep,
) []domain.StepResult {
	results := s.router.ExecutePlan(ctx, steps, caller.Permissions)
	for _, step := range results {
		s.record(ctx, caller, step.Skill, step.Response, step.Err)
	}

	return results
}

// List returns a copy of the loaded manifests in routing order.
func (s *skillUseCase) List() []domain.Manifest {
	return slices.Clone(s.manifests)
}

// clampTimeout bounds a caller-supplied timeout to the configured maximum.
// Zero and negative values mean "use the manifest default" and pass through.
func (s *skillUseCase) clampTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if s.maxTimeout > 0 && timeout > s.maxTimeout {
		return s.maxTimeout
	}

	return timeout
}

// record classifies one execution outcome into a security event. Stderr and
// error strings are truncated so the audit ring never carries bulk output.
func (s *skillUseCase) record(
	ctx context.Context,
	caller Caller,
	skill string,
	response domain.Response,
	err error,
) {
	event := auditDomain.SecurityEvent{
		ClientID:  caller.ClientID,
		SourceIP:  caller.SourceIP,
		RequestID: caller.RequestID,
		Details:   map[string]any{"skill": skill},
	}

	var denied *domain.PermissionDeniedError
	var violation *sandboxDomain.SecurityViolationError
	var execErr *sandboxDomain.SandboxExecutionError
	switch {
	case err == nil:
		event.Type = auditDomain.EventSkillExecuted
		event.Details["exit_code"] = response.Invocation.ExitCode
		event.Details["duration_ms"] = response.Invocation.Duration.Milliseconds()
	case errors.As(err, &denied):
		event.Type = auditDomain.EventPermissionDenied
		event.Details["permission"] = denied.Permission
	case errors.As(err, &violation):
		event.Type = auditDomain.EventCommandRejected
		event.Details["reason"] = violation.Reason
	case errors.Is(err, sandboxDomain.ErrSandboxTimeout):
		event.Type = auditDomain.EventSandboxTimeout
		event.Details["duration_ms"] = response.Invocation.Duration.Milliseconds()
	case errors.As(err, &execErr):
		event.Type = auditDomain.EventSkillFailed
		event.Details["exit_code"] = execErr.ExitCode
		event.Details["stderr"] = truncateDetail(execErr.Stderr)
	default:
		event.Type = auditDomain.EventSkillFailed
		event.Details["error"] = truncateDetail(err.Error())
	}

	s.recorder.Record(ctx, event)
}

// truncateDetail cuts s to maxDetailLength bytes without splitting a rune,
// so Persian output stays valid UTF-8 after the cut.
func truncateDetail(s string) string {
	if len(s) <= maxDetailLength {
		return s
	}

	cut := maxDetailLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut]
}

// NewSkillUseCase creates a SkillUseCase over a router and its manifests.
// maxTimeout bounds caller-supplied execution timeouts; zero disables the
// bound.
func NewSkillUseCase(
	router service.IntentRouter,
	manifests []domain.Manifest,
	recorder EventRecorder,
	maxTimeout time.Duration,
) SkillUseCase {
	return &skillUseCase{
		router:     router,
		manifests:  manifests,
		recorder:   recorder,
		maxTimeout: maxTimeout,
	}
}
