// Package service implements the skill registry and the intent router.
//
// The registry loads manifests from the skills directory and wraps each one
// as a sandbox-backed Skill. The router walks the priority-ordered skill list
// for free-text routing and runs ordered plans with per-step isolation.
package service

import (
	"context"

	"github.com/parsivoice/pasban/internal/skills/domain"
)

// PermissionChecker is the runtime grant lookup every skill consults before
// spawning. Implemented by the permission store.
type PermissionChecker interface {
	IsGranted(name string) bool
}

// IntentRouter maps utterances and execution plans onto registered skills.
type IntentRouter interface {
	// Route hands text to the first skill claiming it. An unmatched
	// utterance returns an unmatched result and no error.
	Route(ctx context.Context, text string, permissions []string) (domain.RouteResult, error)

	// ExecutePlan runs the steps in order. A failing or panicking step is
	// captured in its own result and the remaining steps still run; the
	// returned slice always has exactly len(steps) entries.
	ExecutePlan(ctx context.Context, steps []domain.PlanStep, permissions []string) []domain.StepResult

	// Find returns the named skill.
	Find(name string) (domain.Skill, bool)

	// Names lists the registered skills in routing order.
	Names() []string
}
