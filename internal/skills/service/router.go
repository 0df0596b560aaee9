package service

import (
	"context"
	"fmt"

	apperrors "github.com/parsivoice/pasban/internal/errors"
	"github.com/parsivoice/pasban/internal/skills/domain"
)

type intentRouter struct {
	skills []domain.Skill
	byName map[string]domain.Skill
}

// NewIntentRouter builds a router over a priority-ordered skill list. The
// list order is the routing order.
func NewIntentRouter(skills []domain.Skill) IntentRouter {
	byName := make(map[string]domain.Skill, len(skills))
	for _, skill := range skills {
		byName[skill.Name()] = skill
	}
	return &intentRouter{skills: skills, byName: byName}
}

func (r *intentRouter) Route(ctx context.Context, text string, permissions []string) (domain.RouteResult, error) {
	for _, skill := range r.skills {
		if !skill.CanHandle(text) {
			continue
		}

		response, err := skill.Handle(ctx, domain.Request{
			Text:        text,
			Permissions: permissions,
		})
		return domain.RouteResult{
			Matched:  true,
			Skill:    skill.Name(),
			Response: response,
		}, err
	}

	return domain.RouteResult{}, nil
}

func (r *intentRouter) ExecutePlan(ctx context.Context, steps []domain.PlanStep, permissions []string) []domain.StepResult {
	results := make([]domain.StepResult, len(steps))
	for i, step := range steps {
		results[i] = r.runStep(ctx, step, permissions)
	}
	return results
}

// runStep captures the step outcome, converting a panicking skill into an
// error result so the remaining steps still run.
func (r *intentRouter) runStep(ctx context.Context, step domain.PlanStep, permissions []string) (result domain.StepResult) {
	result = domain.StepResult{Skill: step.Skill, Args: step.Args}
	defer func() {
		if rec := recover(); rec != nil {
			result.Err = fmt.Errorf("skill %q panicked: %v", step.Skill, rec)
		}
	}()

	skill, ok := r.byName[step.Skill]
	if !ok {
		result.Err = apperrors.Wrapf(domain.ErrSkillNotFound, "step skill %q", step.Skill)
		return result
	}

	response, err := skill.Handle(ctx, domain.Request{
		Args:        step.Args,
		Permissions: permissions,
	})
	result.Response = response
	result.Err = err
	return result
}

func (r *intentRouter) Find(name string) (domain.Skill, bool) {
	skill, ok := r.byName[name]
	return skill, ok
}

func (r *intentRouter) Names() []string {
	names := make([]string, len(r.skills))
	for i, skill := range r.skills {
		names[i] = skill.Name()
	}
	return names
}
