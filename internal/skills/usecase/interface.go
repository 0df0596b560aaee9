// Package usecase orchestrates skill execution: it resolves skills through
// the router, clamps caller-supplied timeouts and records a security event
// for every execution outcome.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	"github.com/parsivoice/pasban/internal/skills/domain"
)

// Caller identifies the authenticated principal driving a skill operation.
// Permissions come from the session claims; RequestID from the HTTP layer.
type Caller struct {
	ClientID    string
	SourceIP    string
	RequestID   string
	Permissions []string
}

// EventRecorder defines the interface for recording security events.
type EventRecorder interface {
	Record(ctx context.Context, event auditDomain.SecurityEvent)
}

// SkillUseCase defines the interface for routing and executing skills.
type SkillUseCase interface {
	// Route dispatches text to the first skill whose triggers match. An
	// unmatched utterance returns a zero RouteResult and no error.
	Route(ctx context.Context, caller Caller, text string) (domain.RouteResult, error)

	// Execute runs one skill by name. A zero timeout keeps the manifest
	// default; anything above the configured maximum is clamped down to it.
	Execute(
		ctx context.Context,
		caller Caller,
		name string,
		args map[string]any,
		timeout time.Duration,
	) (domain.Response, error)

	// ExecutePlan runs steps in order. Failing or panicking steps are
	// captured in their own result and never abort the remaining steps.
	ExecutePlan(ctx context.Context, caller Caller, steps []domain.PlanStep) []domain.StepResult

	// List returns the loaded skill manifests in routing order.
	List() []domain.Manifest
}
