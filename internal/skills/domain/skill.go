// Package domain defines the skill model: the routable Skill capability,
// manifests, and the routing and plan result types.
package domain

import (
	"context"
	"time"

	sandboxDomain "github.com/parsivoice/pasban/internal/sandbox/domain"
)

// Request carries one skill call from transport to skill.
type Request struct {
	// Text is the utterance that triggered the call. Empty for direct
	// invocations and plan steps.
	Text string

	// Args are structured arguments. String values expand ${var}
	// placeholders in the manifest command.
	Args map[string]any

	// Timeout overrides the manifest timeout when positive. Clamping to the
	// configured maximum happens before the request reaches the skill.
	Timeout time.Duration

	// Permissions is the authenticated caller's permission set. A nil slice
	// means a trusted in-process caller and skips the caller-side check;
	// the grant-store check always applies.
	Permissions []string
}

// Allows reports whether the request's permission set contains name or the
// "*" wildcard. A nil set is a trusted in-process caller and allows all.
func (r Request) Allows(name string) bool {
	if r.Permissions == nil {
		return true
	}
	for _, p := range r.Permissions {
		if p == "*" || p == name {
			return true
		}
	}
	return false
}

// Response is a skill's answer to one request.
type Response struct {
	// Skill is the responding skill's name.
	Skill string

	// Reply is the spoken-reply text extracted from the skill's output.
	Reply string

	// Invocation is the underlying sandbox outcome.
	Invocation sandboxDomain.InvocationResult
}

// Skill is the capability every routable skill implements. Manifest-loaded
// sandbox skills are the main variant; anything satisfying the three methods
// can join the routing list.
type Skill interface {
	// Name identifies the skill for direct invocation and plan steps.
	Name() string

	// CanHandle reports whether the skill claims the given utterance.
	CanHandle(text string) bool

	// Handle runs the skill to completion.
	Handle(ctx context.Context, req Request) (Response, error)
}

// RouteResult is the outcome of routing one utterance.
type RouteResult struct {
	// Matched reports whether any skill claimed the utterance. An
	// unmatched utterance is a valid outcome, not an error.
	Matched bool

	// Skill is the matched skill's name. Empty when unmatched.
	Skill string

	// Response is the matched skill's answer. Zero when unmatched.
	Response Response
}

// PlanStep is one entry of an ordered execution plan.
type PlanStep struct {
	Skill string
	Args  map[string]any
}

// StepResult is the captured outcome of one plan step. Err holds the step's
// failure without aborting sibling steps; a plan's result list always has
// exactly as many entries as the plan has steps.
type StepResult struct {
	Skill    string
	Args     map[string]any
	Response Response
	Err      error
}
